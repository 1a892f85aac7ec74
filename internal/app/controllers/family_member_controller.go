package controllers

import (
	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
)

// InterfaceFamilyMemberController 定义家庭成员控制器接口
type InterfaceFamilyMemberController interface {
	GetFamilyMembers()
	GetFamilyMember()
	CreateFamilyMember()
	UpdateFamilyMember()
	DeleteFamilyMember()
}

// FamilyMemberController 家庭成员控制器
type FamilyMemberController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewFamilyMemberController 创建一个新的家庭成员控制器
func NewFamilyMemberController(ctx *gin.Context, container *container.ServiceContainer) *FamilyMemberController {
	return &FamilyMemberController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleFamilyMemberFunc 返回一个处理家庭成员请求的Gin处理函数
func HandleFamilyMemberFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewFamilyMemberController(ctx, container)

		switch method {
		case "getFamilyMembers":
			controller.GetFamilyMembers()
		case "getFamilyMember":
			controller.GetFamilyMember()
		case "createFamilyMember":
			controller.CreateFamilyMember()
		case "updateFamilyMember":
			controller.UpdateFamilyMember()
		case "deleteFamilyMember":
			controller.DeleteFamilyMember()
		default:
			invalidMethod(ctx)
		}
	}
}

func (c *FamilyMemberController) service() services.InterfaceFamilyMemberService {
	return c.Container.GetService("family_member").(services.InterfaceFamilyMemberService)
}

// 1. GetFamilyMembers 获取家庭成员列表
// @Summary      List family members
// @Tags         FamilyMembers
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /admin/family-members [get]
// @Security     BearerAuth
func (c *FamilyMemberController) GetFamilyMembers() {
	members, err := c.service().GetAllFamilyMembers(c.Ctx.Request.Context())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, members)
}

// 2. GetFamilyMember 获取家庭成员详情
// @Summary      Get a family member
// @Tags         FamilyMembers
// @Produce      json
// @Param        id path string true "Family member ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/family-members/{id} [get]
// @Security     BearerAuth
func (c *FamilyMemberController) GetFamilyMember() {
	member, err := c.service().GetFamilyMemberByID(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, member)
}

// 3. CreateFamilyMember 创建家庭成员
// @Summary      Add a family member
// @Tags         FamilyMembers
// @Accept       json
// @Produce      json
// @Param        request body services.FamilyMemberInput true "Family member"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/family-members [post]
// @Security     BearerAuth
func (c *FamilyMemberController) CreateFamilyMember() {
	var req services.FamilyMemberInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	member, err := c.service().CreateFamilyMember(c.Ctx.Request.Context(), req)
	if err != nil {
		failWithError(c.Ctx, err, code.ErrFamilyMemberCreateFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Family member added successfully", member)
}

// 4. UpdateFamilyMember 更新家庭成员
// @Summary      Update a family member
// @Tags         FamilyMembers
// @Accept       json
// @Produce      json
// @Param        id path string true "Family member ID"
// @Param        request body services.FamilyMemberUpdate true "Fields to change"
// @Success      200  {object}  response.Response
// @Router       /admin/family-members/{id} [put]
// @Security     BearerAuth
func (c *FamilyMemberController) UpdateFamilyMember() {
	var req services.FamilyMemberUpdate
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	member, err := c.service().UpdateFamilyMember(c.Ctx.Request.Context(), c.Ctx.Param("id"), req)
	if err != nil {
		failWithError(c.Ctx, err, code.ErrFamilyMemberUpdateFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Family member updated successfully", member)
}

// 5. DeleteFamilyMember 删除家庭成员
// @Summary      Delete a family member and their assignments
// @Tags         FamilyMembers
// @Param        id path string true "Family member ID"
// @Success      200  {object}  response.Response
// @Router       /admin/family-members/{id} [delete]
// @Security     BearerAuth
func (c *FamilyMemberController) DeleteFamilyMember() {
	if err := c.service().DeleteFamilyMember(c.Ctx.Request.Context(), c.Ctx.Param("id")); err != nil {
		failWithError(c.Ctx, err, code.ErrFamilyMemberDeleteFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Family member deleted successfully", nil)
}
