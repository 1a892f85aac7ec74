package routes

import (
	"time"

	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/app/controllers"
	"chewing-love-service/internal/app/middleware"
	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/infrastructure/config"
)

// APIPrefix 所有 JSON 接口的根路径
const APIPrefix = "/api"

// SetupRouter 初始化并返回配置好的路由
func SetupRouter(container *container.ServiceContainer, cfg *config.Config) (*gin.Engine, error) {
	// 初始化 Gin
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// 添加 CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Accept, Origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	pages, err := controllers.NewPageController(APIPrefix)
	if err != nil {
		return nil, err
	}
	registerPageRoutes(r, pages)

	// 注册路由
	registerRoutes(r, container)
	return r, nil
}

// registerPageRoutes 注册首页、看板和管理页面
func registerPageRoutes(r *gin.Engine, pages *controllers.PageController) {
	r.GET("/", pages.Handle("index"))
	r.GET("/dashboard", pages.Handle("dashboard"))
	r.GET("/admin", pages.Handle("admin"))
}

// registerRoutes 配置所有API路由
func registerRoutes(
	r *gin.Engine,
	container *container.ServiceContainer,
) {
	// API 路由根路径
	api := r.Group(APIPrefix)
	// 注册公共路由
	registerPublicRoutes(api, container)
	// 注册需要认证的路由
	registerAuthenticatedRoutes(api, container)
}

// registerPublicRoutes 注册公共路由
func registerPublicRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	// 添加IP限流中间件 - 每秒允许10个请求，最多突发20个请求
	public := api.Group("")
	public.Use(middleware.IPRateLimiter(10, 20))

	// 健康检查路由
	public.GET("/ping", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(container, "ping"))
	public.GET("/health/status", controllers.HandleHealthFunc(container, "status"))

	// 认证路由
	public.POST("/auth/login", middleware.CombinedRateLimiter(1, 5), controllers.HandleJWTFunc(container, "login"))

	// 演示会话路由
	demoGroup := public.Group("/demo/sessions")
	demoGroup.POST("", middleware.CombinedRateLimiter(1, 5), controllers.HandleDemoFunc(container, "createSession"))
	demoGroup.GET("/:id", controllers.HandleDemoFunc(container, "getSession"))
	demoGroup.POST("/:id/toggle", controllers.HandleDemoFunc(container, "toggleConnection"))
	demoGroup.PUT("/:id/connection", controllers.HandleDemoFunc(container, "setConnection"))
	demoGroup.DELETE("/:id", controllers.HandleDemoFunc(container, "deleteSession"))
	demoGroup.GET("/:id/stream", controllers.HandleDemoFunc(container, "streamSession"))
}

// registerAuthenticatedRoutes 注册需要认证的路由
func registerAuthenticatedRoutes(
	api *gin.RouterGroup,
	container *container.ServiceContainer,
) {
	jwtService := container.GetService("jwt").(services.InterfaceJWTService)
	cache := container.GetService("cache").(services.InterfaceCacheService)
	cached := func(group string, expiration time.Duration) gin.HandlerFunc {
		return middleware.Cache(cache, middleware.CacheConfig{Group: group, Expiration: expiration})
	}

	// 添加认证中间件
	auth := api.Group("")
	auth.Use(middleware.AuthenticateAdmin(jwtService))

	// 添加通用限流中间件 - 每秒30个请求，最多突发50个请求
	auth.Use(middleware.IPRateLimiter(30, 50))

	// 管理员路由
	adminGroup := auth.Group("/admin")
	adminGroup.GET("/me", controllers.HandleAdminFunc(container, "getProfile"))
	adminGroup.POST("/refresh", controllers.HandleAdminFunc(container, "refreshData"))
	adminGroup.GET("/cache-stats", controllers.HandleAdminFunc(container, "getCacheStats"))
	adminGroup.POST("/chewing-data", controllers.HandleAdminFunc(container, "saveChewingData"))

	// 家庭成员路由
	memberGroup := adminGroup.Group("/family-members")
	{
		memberGroup.GET("", cached(services.CacheGroupFamilyMembers, 1*time.Minute), controllers.HandleFamilyMemberFunc(container, "getFamilyMembers"))
		memberGroup.GET("/:id", cached(services.CacheGroupFamilyMembers, 1*time.Minute), controllers.HandleFamilyMemberFunc(container, "getFamilyMember"))
		memberGroup.POST("", controllers.HandleFamilyMemberFunc(container, "createFamilyMember"))
		memberGroup.PUT("/:id", controllers.HandleFamilyMemberFunc(container, "updateFamilyMember"))
		memberGroup.DELETE("/:id", controllers.HandleFamilyMemberFunc(container, "deleteFamilyMember"))
	}

	// 设备路由
	devicesGroup := adminGroup.Group("/devices")
	{
		devicesGroup.GET("", cached(services.CacheGroupDevices, 30*time.Second), controllers.HandleDeviceFunc(container, "getDevices"))
		devicesGroup.GET("/:id", cached(services.CacheGroupDevices, 30*time.Second), controllers.HandleDeviceFunc(container, "getDevice"))
		devicesGroup.POST("", controllers.HandleDeviceFunc(container, "createDevice"))
		devicesGroup.PUT("/:id", controllers.HandleDeviceFunc(container, "updateDevice"))
		devicesGroup.DELETE("/:id", controllers.HandleDeviceFunc(container, "deleteDevice"))
		devicesGroup.POST("/:id/toggle-status", controllers.HandleDeviceFunc(container, "toggleDeviceStatus"))
	}

	// 设备分配路由
	assignmentGroup := adminGroup.Group("/assignments")
	{
		assignmentGroup.GET("", cached(services.CacheGroupAssignments, 30*time.Second), controllers.HandleAssignmentFunc(container, "getAssignments"))
		assignmentGroup.GET("/:id", cached(services.CacheGroupAssignments, 30*time.Second), controllers.HandleAssignmentFunc(container, "getAssignment"))
		assignmentGroup.POST("", controllers.HandleAssignmentFunc(container, "createAssignment"))
		assignmentGroup.DELETE("/:id", controllers.HandleAssignmentFunc(container, "deleteAssignment"))
	}

	// 看板路由
	dashboardGroup := auth.Group("/dashboard")
	// 看板数据按“今天”回溯，缓存键按日期区分
	dashboardCache := middleware.Cache(cache, middleware.CacheConfig{Group: services.CacheGroupDashboard, DayKeyed: true})
	{
		dashboardGroup.GET("/members", dashboardCache, controllers.HandleDashboardFunc(container, "getMembers"))
		dashboardGroup.GET("/elders", dashboardCache, controllers.HandleDashboardFunc(container, "getElders"))
		dashboardGroup.GET("/family-filters", dashboardCache, controllers.HandleDashboardFunc(container, "getFamilyFilters"))
		dashboardGroup.GET("/chewing", dashboardCache, controllers.HandleDashboardFunc(container, "getChewingData"))
		// 导出文件不进缓存
		dashboardGroup.GET("/chewing/export", controllers.HandleDashboardFunc(container, "exportChewingData"))
	}
}
