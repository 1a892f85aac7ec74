package controllers

import (
	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InterfaceDashboardController 定义看板控制器接口
type InterfaceDashboardController interface {
	GetMembers()
	GetElders()
	GetFamilyFilters()
	GetChewingData()
	ExportChewingData()
}

// DashboardController 看板控制器
type DashboardController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDashboardController 创建看板控制器
func NewDashboardController(ctx *gin.Context, container *container.ServiceContainer) *DashboardController {
	return &DashboardController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDashboardFunc 返回一个处理看板请求的Gin处理函数
func HandleDashboardFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDashboardController(ctx, container)

		switch method {
		case "getMembers":
			controller.GetMembers()
		case "getElders":
			controller.GetElders()
		case "getFamilyFilters":
			controller.GetFamilyFilters()
		case "getChewingData":
			controller.GetChewingData()
		case "exportChewingData":
			controller.ExportChewingData()
		default:
			invalidMethod(ctx)
		}
	}
}

func (c *DashboardController) service() services.InterfaceChewingDataService {
	return c.Container.GetService("chewing_data").(services.InterfaceChewingDataService)
}

func (c *DashboardController) query() services.ChewingQuery {
	return services.ChewingQuery{
		MemberID: c.Ctx.Query("member_id"),
		Range:    c.Ctx.Query("range"),
		With:     c.Ctx.Query("with"),
	}
}

// 1. GetMembers 成员列表，按关系倒序、姓名升序
func (c *DashboardController) GetMembers() {
	members, err := c.service().GetDashboardMembers(c.Ctx.Request.Context())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, members)
}

// 2. GetElders 长辈卡片
func (c *DashboardController) GetElders() {
	elders, err := c.service().GetElders(c.Ctx.Request.Context())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, elders)
}

// 3. GetFamilyFilters 互动筛选候选成员
func (c *DashboardController) GetFamilyFilters() {
	filters, err := c.service().GetFamilyFilters(c.Ctx.Request.Context())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, filters)
}

// 4. GetChewingData 咀嚼次数图表数据
// @Summary      Daily chewing counts for a member
// @Tags         Dashboard
// @Produce      json
// @Param        member_id query string false "Family member ID, defaults to the first elder"
// @Param        range query string false "daily | weekly | monthly"
// @Param        with query string false "Interaction filter (non-elder member ID)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /dashboard/chewing [get]
// @Security     BearerAuth
func (c *DashboardController) GetChewingData() {
	result, err := c.service().GetChewingData(c.Ctx.Request.Context(), c.query())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrChewingDataQueryFailed)
		return
	}
	response.Success(c.Ctx, result)
}

// 5. ExportChewingData 导出咀嚼数据为 Excel
// @Summary      Export chewing counts as xlsx
// @Tags         Dashboard
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        member_id query string false "Family member ID"
// @Param        range query string false "daily | weekly | monthly"
// @Router       /dashboard/chewing/export [get]
// @Security     BearerAuth
func (c *DashboardController) ExportChewingData() {
	exporter := c.Container.GetService("export").(services.InterfaceExportService)
	content, filename, err := exporter.ExportChewingData(c.Ctx.Request.Context(), c.query())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrExportFailed)
		return
	}
	c.Ctx.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Ctx.Data(200, xlsxContentType, content)
}
