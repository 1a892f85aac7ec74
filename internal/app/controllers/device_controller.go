package controllers

import (
	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
)

// InterfaceDeviceController 定义设备控制器接口
type InterfaceDeviceController interface {
	GetDevices()
	GetDevice()
	CreateDevice()
	UpdateDevice()
	DeleteDevice()
	ToggleDeviceStatus()
}

// DeviceController 设备控制器
type DeviceController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDeviceController 创建一个新的设备控制器
func NewDeviceController(ctx *gin.Context, container *container.ServiceContainer) *DeviceController {
	return &DeviceController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDeviceFunc 返回一个处理设备请求的Gin处理函数
func HandleDeviceFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDeviceController(ctx, container)

		switch method {
		case "getDevices":
			controller.GetDevices()
		case "getDevice":
			controller.GetDevice()
		case "createDevice":
			controller.CreateDevice()
		case "updateDevice":
			controller.UpdateDevice()
		case "deleteDevice":
			controller.DeleteDevice()
		case "toggleDeviceStatus":
			controller.ToggleDeviceStatus()
		default:
			invalidMethod(ctx)
		}
	}
}

func (c *DeviceController) service() services.InterfaceDeviceService {
	return c.Container.GetService("device").(services.InterfaceDeviceService)
}

// 1. GetDevices 获取设备列表
// @Summary      List devices
// @Tags         Devices
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /admin/devices [get]
// @Security     BearerAuth
func (c *DeviceController) GetDevices() {
	devices, err := c.service().GetAllDevices(c.Ctx.Request.Context())
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, devices)
}

// 2. GetDevice 获取设备详情
// @Summary      Get a device
// @Tags         Devices
// @Produce      json
// @Param        id path string true "Device ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /admin/devices/{id} [get]
// @Security     BearerAuth
func (c *DeviceController) GetDevice() {
	device, err := c.service().GetDeviceByID(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDatabase)
		return
	}
	response.Success(c.Ctx, device)
}

// 3. CreateDevice 创建设备
// @Summary      Add a device
// @Tags         Devices
// @Accept       json
// @Produce      json
// @Param        request body services.DeviceInput true "Device"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  ErrorResponse
// @Router       /admin/devices [post]
// @Security     BearerAuth
func (c *DeviceController) CreateDevice() {
	var req services.DeviceInput
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	device, err := c.service().CreateDevice(c.Ctx.Request.Context(), req)
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDeviceCreateFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Device added successfully", device)
}

// 4. UpdateDevice 更新设备
// @Summary      Update a device
// @Tags         Devices
// @Accept       json
// @Produce      json
// @Param        id path string true "Device ID"
// @Param        request body services.DeviceUpdate true "Fields to change"
// @Success      200  {object}  response.Response
// @Router       /admin/devices/{id} [put]
// @Security     BearerAuth
func (c *DeviceController) UpdateDevice() {
	var req services.DeviceUpdate
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	device, err := c.service().UpdateDevice(c.Ctx.Request.Context(), c.Ctx.Param("id"), req)
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDeviceUpdateFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Device updated successfully", device)
}

// 5. DeleteDevice 删除设备
// @Summary      Delete a device and its assignments
// @Tags         Devices
// @Param        id path string true "Device ID"
// @Success      200  {object}  response.Response
// @Router       /admin/devices/{id} [delete]
// @Security     BearerAuth
func (c *DeviceController) DeleteDevice() {
	if err := c.service().DeleteDevice(c.Ctx.Request.Context(), c.Ctx.Param("id")); err != nil {
		failWithError(c.Ctx, err, code.ErrDeviceDeleteFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Device deleted successfully", nil)
}

// 6. ToggleDeviceStatus 切换设备在线状态
// @Summary      Toggle a device between online and offline
// @Tags         Devices
// @Param        id path string true "Device ID"
// @Success      200  {object}  response.Response
// @Router       /admin/devices/{id}/toggle-status [post]
// @Security     BearerAuth
func (c *DeviceController) ToggleDeviceStatus() {
	device, err := c.service().ToggleDeviceStatus(c.Ctx.Request.Context(), c.Ctx.Param("id"))
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDeviceUpdateFailed)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Device is now "+string(device.Status), device)
}
