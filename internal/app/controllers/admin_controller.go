package controllers

import (
	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
	"chewing-love-service/pkg/logger"
)

// InterfaceAdminController 定义管理员控制器接口
type InterfaceAdminController interface {
	GetProfile()
	RefreshData()
	GetCacheStats()
	SaveChewingData()
}

// AdminController 管理员控制器
type AdminController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminController 创建一个新的管理员控制器
func NewAdminController(ctx *gin.Context, container *container.ServiceContainer) *AdminController {
	return &AdminController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAdminFunc 返回一个处理管理员请求的Gin处理函数
func HandleAdminFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminController(ctx, container)

		switch method {
		case "getProfile":
			controller.GetProfile()
		case "refreshData":
			controller.RefreshData()
		case "getCacheStats":
			controller.GetCacheStats()
		case "saveChewingData":
			controller.SaveChewingData()
		default:
			invalidMethod(ctx)
		}
	}
}

// 1. GetProfile 获取当前登录管理员
// @Summary      Current admin
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/me [get]
// @Security     BearerAuth
func (c *AdminController) GetProfile() {
	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	admin, err := adminService.GetAdminByID(c.Ctx.Request.Context(), c.Ctx.GetString("userID"))
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrAdminNotFound, err.Error(), nil)
		return
	}
	response.Success(c.Ctx, admin)
}

// 2. RefreshData 清空所有查询缓存，下次请求重新读库
// @Summary      Refresh cached data
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /admin/refresh [post]
// @Security     BearerAuth
func (c *AdminController) RefreshData() {
	cache := c.Container.GetService("cache").(services.InterfaceCacheService)
	removed, err := cache.PurgeAll(c.Ctx.Request.Context())
	if err != nil {
		logger.Error("清空缓存失败: %v", err)
		response.FailWithMessage(c.Ctx, code.ErrUnknown, err.Error(), nil)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Data refreshed", gin.H{
		"removed": removed,
		"backend": cache.Backend(),
	})
}

// 3. GetCacheStats 查询缓存统计
func (c *AdminController) GetCacheStats() {
	cache := c.Container.GetService("cache").(services.InterfaceCacheService)
	stats, err := cache.Stats(c.Ctx.Request.Context())
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrUnknown, err.Error(), nil)
		return
	}
	response.Success(c.Ctx, stats)
}

// 4. SaveChewingData 写入一天的咀嚼次数
// @Summary      Upsert a daily chewing count
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body services.ChewingDataInput true "Chewing data"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/chewing-data [post]
// @Security     BearerAuth
func (c *AdminController) SaveChewingData() {
	var req services.ChewingDataInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	chewing := c.Container.GetService("chewing_data").(services.InterfaceChewingDataService)
	row, err := chewing.UpsertChewingData(c.Ctx.Request.Context(), req)
	if err != nil {
		failWithError(c.Ctx, err, code.ErrChewingDataSaveFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Chewing data saved", row)
}
