package container

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/infrastructure/config"
)

func openDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestServiceContainerWiring(t *testing.T) {
	cfg := &config.Config{CacheBackend: "memory", JWTSecretKey: "x"}
	c, err := NewServiceContainer(context.Background(), openDB(t), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	for _, name := range []string{"config", "db", "cache", "events", "admin", "jwt", "family_member", "device", "assignment", "chewing_data", "export", "demo"} {
		assert.NotNil(t, c.GetService(name), name)
	}
	assert.Nil(t, c.GetService("weather"))
	assert.Equal(t, "memory", c.GetService("cache").(services.InterfaceCacheService).Backend())
	assert.NotNil(t, c.DemoSessions())
	c.ConnectEvents()
}

func TestServiceContainerRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{CacheBackend: "redis", JWTSecretKey: "x"}

	c, err := NewServiceContainer(context.Background(), openDB(t), cfg, redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "redis", c.GetService("cache").(services.InterfaceCacheService).Backend())
}

func TestServiceContainerFallsBackWhenRedisIsDown(t *testing.T) {
	cfg := &config.Config{CacheBackend: "redis", JWTSecretKey: "x"}

	c, err := NewServiceContainer(context.Background(), openDB(t), cfg, redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, "memory", c.GetService("cache").(services.InterfaceCacheService).Backend())
}
