package container

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"chewing-love-service/internal/demo"
	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/infrastructure/config"
	"chewing-love-service/pkg/logger"
)

// ServiceContainer 管理所有服务的依赖注入
type ServiceContainer struct {
	db     *gorm.DB
	config *config.Config
	redis  *redis.Client

	// 基础服务
	cacheService services.InterfaceCacheService
	eventService services.InterfaceMQTTEventService
	adminService services.InterfaceAdminService
	jwtService   services.InterfaceJWTService

	// 业务服务
	familyMemberService services.InterfaceFamilyMemberService
	deviceService       services.InterfaceDeviceService
	assignmentService   services.InterfaceAssignmentService
	chewingDataService  services.InterfaceChewingDataService
	exportService       services.InterfaceExportService

	// 演示会话
	demoSessions *demo.SessionManager

	mu sync.RWMutex
}

// NewServiceContainer 创建新的服务容器；ctx 取消时演示会话一并停止
func NewServiceContainer(ctx context.Context, db *gorm.DB, cfg *config.Config, redisClient *redis.Client) (*ServiceContainer, error) {
	if db == nil {
		panic("数据库连接为空")
	}
	if cfg == nil {
		panic("配置为空")
	}

	// 测试Redis连接，失败时退回内存缓存
	if redisClient != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warning("Redis连接测试失败: %v，将使用内存缓存", err)
			redisClient.Close()
			redisClient = nil
		}
	}

	c := &ServiceContainer{
		db:     db,
		config: cfg,
		redis:  redisClient,
	}
	if err := c.initializeServices(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// initializeServices 初始化所有服务
func (c *ServiceContainer) initializeServices(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cacheService = services.NewCacheService(c.config, c.redis)
	c.eventService = services.NewMQTTEventService(c.config)

	c.adminService = services.NewAdminService(c.db, c.config)
	c.jwtService = services.NewJWTService(c.config, c.adminService)

	c.familyMemberService = services.NewFamilyMemberService(c.db, c.config, c.cacheService)
	c.deviceService = services.NewDeviceService(c.db, c.config, c.cacheService, c.eventService)
	c.assignmentService = services.NewAssignmentService(c.db, c.config, c.cacheService, c.eventService)
	c.chewingDataService = services.NewChewingDataService(c.db, c.config, c.cacheService, c.eventService)
	c.exportService = services.NewExportService(c.chewingDataService)

	sessions, err := services.NewDemoSessionManager(ctx, c.config, c.eventService)
	if err != nil {
		return err
	}
	c.demoSessions = sessions
	return nil
}

// ConnectEvents 连接MQTT，失败只记录日志，事件会被丢弃
func (c *ServiceContainer) ConnectEvents() {
	if err := c.eventService.Connect(); err != nil {
		logger.Error("MQTT服务连接失败: %v", err)
	}
}

// GetService 获取指定名称的服务
func (c *ServiceContainer) GetService(name string) interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch name {
	case "config":
		return c.config
	case "db":
		return c.db
	case "cache":
		return c.cacheService
	case "events":
		return c.eventService
	case "admin":
		return c.adminService
	case "jwt":
		return c.jwtService
	case "family_member":
		return c.familyMemberService
	case "device":
		return c.deviceService
	case "assignment":
		return c.assignmentService
	case "chewing_data":
		return c.chewingDataService
	case "export":
		return c.exportService
	case "demo":
		return c.demoSessions
	default:
		return nil
	}
}

// GetDB 获取数据库连接
func (c *ServiceContainer) GetDB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// DemoSessions 获取演示会话管理器
func (c *ServiceContainer) DemoSessions() *demo.SessionManager {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.demoSessions
}

// Close 停止演示会话并断开外部连接
func (c *ServiceContainer) Close() {
	c.mu.RLock()
	defer c.mu.RUnlock()

	c.demoSessions.CloseAll()
	c.eventService.Disconnect()
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			logger.Warning("关闭Redis连接失败: %v", err)
		}
	}
}
