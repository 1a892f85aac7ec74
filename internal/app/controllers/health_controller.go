package controllers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
)

// HealthCheckController 健康检查控制器
type HealthCheckController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewHealthCheckController 创建健康检查控制器实例
func NewHealthCheckController(ctx *gin.Context, container *container.ServiceContainer) *HealthCheckController {
	return &HealthCheckController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleHealthFunc 返回一个处理健康检查请求的Gin处理函数
func HandleHealthFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewHealthCheckController(ctx, container)

		switch method {
		case "ping":
			controller.Ping()
		case "status":
			controller.Status()
		default:
			invalidMethod(ctx)
		}
	}
}

// Ping 健康检查端点
func (h *HealthCheckController) Ping() {
	response.Success(h.Ctx, gin.H{
		"status":  "healthy",
		"message": "pong",
	})
}

// Status 数据库、缓存、事件和演示会话的状态
func (h *HealthCheckController) Status() {
	ctx, cancel := context.WithTimeout(h.Ctx.Request.Context(), 3*time.Second)
	defer cancel()

	dbStatus := "up"
	sqlDB, err := h.Container.GetDB().DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		dbStatus = "down: " + err.Error()
	}

	cache := h.Container.GetService("cache").(services.InterfaceCacheService)
	events := h.Container.GetService("events").(services.InterfaceMQTTEventService)

	data := gin.H{
		"database":      dbStatus,
		"cache_backend": cache.Backend(),
		"mqtt":          events.IsConnected(),
		"demo_sessions": h.Container.DemoSessions().Count(),
		"time":          time.Now().UTC(),
	}
	if dbStatus != "up" {
		response.FailWithMessage(h.Ctx, code.ErrDatabase, "database unavailable", data)
		return
	}
	response.Success(h.Ctx, data)
}
