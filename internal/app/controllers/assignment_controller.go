package controllers

import (
	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
)

// InterfaceAssignmentController 定义设备分配控制器接口
type InterfaceAssignmentController interface {
	GetAssignments()
	GetAssignment()
	CreateAssignment()
	DeleteAssignment()
}

// AssignmentController 设备分配控制器
type AssignmentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAssignmentController 创建一个新的设备分配控制器
func NewAssignmentController(ctx *gin.Context, container *container.ServiceContainer) *AssignmentController {
	return &AssignmentController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleAssignmentFunc 返回一个处理设备分配请求的Gin处理函数
func HandleAssignmentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAssignmentController(ctx, container)

		switch method {
		case "getAssignments":
			controller.GetAssignments()
		case "getAssignment":
			controller.GetAssignment()
		case "createAssignment":
			controller.CreateAssignment()
		case "deleteAssignment":
			controller.DeleteAssignment()
		default:
			invalidMethod(ctx)
		}
	}
}

func (c *AssignmentController) service() services.InterfaceAssignmentService {
	return c.Container.GetService("assignment").(services.InterfaceAssignmentService)
}

// 1. GetAssignments 获取分配列表，包含设备和成员信息
// @Summary      List device assignments
// @Tags         Assignments
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /admin/assignments [get]
// @Security     BearerAuth
func (c *AssignmentController) GetAssignments() {
	assignments, err := c.service().GetAllAssignments(c.Ctx.Request.Context())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, assignments)
}

// 2. GetAssignment 获取分配详情
func (c *AssignmentController) GetAssignment() {
	assignment, err := c.service().GetAssignmentByID(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, assignment)
}

// 3. CreateAssignment 分配设备
// @Summary      Assign a device to a family member
// @Tags         Assignments
// @Accept       json
// @Produce      json
// @Param        request body services.AssignmentInput true "Assignment"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/assignments [post]
// @Security     BearerAuth
func (c *AssignmentController) CreateAssignment() {
	var req services.AssignmentInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	assignment, err := c.service().CreateAssignment(c.Ctx.Request.Context(), req)
	if err != nil {
		failWithError(c.Ctx, err, code.ErrAssignmentCreateFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Device assigned successfully", assignment)
}

// 4. DeleteAssignment 取消分配
// @Summary      Remove a device assignment
// @Tags         Assignments
// @Param        id path string true "Assignment ID"
// @Success      200  {object}  response.Response
// @Router       /admin/assignments/{id} [delete]
// @Security     BearerAuth
func (c *AssignmentController) DeleteAssignment() {
	if err := c.service().DeleteAssignment(c.Ctx.Request.Context(), c.Ctx.Param("id")); err != nil {
		failWithError(c.Ctx, err, code.ErrAssignmentDeleteFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Assignment removed successfully", nil)
}
