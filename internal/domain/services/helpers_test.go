package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chewing-love-service/internal/domain/models"
	"chewing-love-service/internal/infrastructure/config"
)

var ctxBg = context.Background()

// newTestDB 每个测试独立的内存数据库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		DBDriver:             "sqlite",
		CacheBackend:         "memory",
		JWTSecretKey:         "test-secret",
		DefaultAdminPassword: "admin123",
		MQTTTopicPrefix:      "test",
	}
}

type publishedEvent struct {
	Topic   string
	Type    string
	Payload map[string]interface{}
}

// recordingEvents 记录发布的事件
type recordingEvents struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (r *recordingEvents) Connect() error    { return nil }
func (r *recordingEvents) Disconnect()       {}
func (r *recordingEvents) IsConnected() bool { return true }

func (r *recordingEvents) Publish(topic, eventType string, payload interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, _ := payload.(map[string]interface{})
	r.events = append(r.events, publishedEvent{Topic: topic, Type: eventType, Payload: p})
	return nil
}

func (r *recordingEvents) Events() []publishedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]publishedEvent(nil), r.events...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustCreateMember(t *testing.T, svc InterfaceFamilyMemberService, name, relationship string) *models.FamilyMember {
	t.Helper()
	m, err := svc.CreateFamilyMember(ctxBg, FamilyMemberInput{Name: name, Relationship: relationship})
	require.NoError(t, err)
	return m
}
