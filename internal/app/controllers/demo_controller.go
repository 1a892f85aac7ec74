package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"chewing-love-service/internal/demo"
	"chewing-love-service/internal/domain/services/container"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
	"chewing-love-service/pkg/logger"
)

// 演示页面与 API 同源部署，跨域来源由 CORS 中间件控制
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// InterfaceDemoController 定义演示控制器接口
type InterfaceDemoController interface {
	CreateSession()
	GetSession()
	ToggleConnection()
	SetConnection()
	DeleteSession()
	StreamSession()
}

// DemoController 咀嚼共鸣演示控制器
type DemoController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// SetConnectionRequest 设置连接状态请求
type SetConnectionRequest struct {
	Connected *bool `json:"connected" binding:"required" example:"true"`
}

// SessionResponse 演示会话响应
type SessionResponse struct {
	ID string `json:"id"`
	demo.Frame
}

// NewDemoController 创建演示控制器
func NewDemoController(ctx *gin.Context, container *container.ServiceContainer) *DemoController {
	return &DemoController{
		Ctx:       ctx,
		Container: container,
	}
}

// HandleDemoFunc 返回一个处理演示请求的Gin处理函数
func HandleDemoFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDemoController(ctx, container)

		switch method {
		case "createSession":
			controller.CreateSession()
		case "getSession":
			controller.GetSession()
		case "toggleConnection":
			controller.ToggleConnection()
		case "setConnection":
			controller.SetConnection()
		case "deleteSession":
			controller.DeleteSession()
		case "streamSession":
			controller.StreamSession()
		default:
			invalidMethod(ctx)
		}
	}
}

func (c *DemoController) session() (*demo.Simulator, bool) {
	sim, err := c.Container.DemoSessions().Get(c.Ctx.Param("id"))
	if err != nil {
		failWithError(c.Ctx, err, code.ErrDemoSessionNotFound)
		return nil, false
	}
	return sim, true
}

func (c *DemoController) reply(snap demo.Snapshot) {
	response.Success(c.Ctx, SessionResponse{ID: c.Ctx.Param("id"), Frame: demo.FrameFor(snap)})
}

// 1. CreateSession 创建并激活一个演示会话
// @Summary      Start a chewing demo session
// @Tags         Demo
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /demo/sessions [post]
func (c *DemoController) CreateSession() {
	id, snap, err := c.Container.DemoSessions().Create()
	if err != nil {
		logger.Error("创建演示会话失败: %v", err)
		response.FailWithMessage(c.Ctx, code.ErrDemoSessionCreateFailed, err.Error(), nil)
		return
	}
	response.Success(c.Ctx, SessionResponse{ID: id, Frame: demo.FrameFor(snap)})
}

// 2. GetSession 获取会话当前状态和展示提示
// @Summary      Current demo state
// @Tags         Demo
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  ErrorResponse
// @Router       /demo/sessions/{id} [get]
func (c *DemoController) GetSession() {
	sim, ok := c.session()
	if !ok {
		return
	}
	c.reply(sim.Snapshot())
}

// 3. ToggleConnection 切换连接
// @Summary      Toggle the family connection
// @Tags         Demo
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response
// @Router       /demo/sessions/{id}/toggle [post]
func (c *DemoController) ToggleConnection() {
	sim, ok := c.session()
	if !ok {
		return
	}
	c.reply(sim.Toggle())
}

// 4. SetConnection 设置连接状态
// @Summary      Set the family connection
// @Tags         Demo
// @Accept       json
// @Param        id path string true "Session ID"
// @Param        request body SetConnectionRequest true "Connection state"
// @Success      200  {object}  response.Response
// @Router       /demo/sessions/{id}/connection [put]
func (c *DemoController) SetConnection() {
	var req SetConnectionRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}
	sim, ok := c.session()
	if !ok {
		return
	}
	c.reply(sim.SetConnected(*req.Connected))
}

// 5. DeleteSession 停止会话，取消所有待执行的转换
// @Summary      Stop a demo session
// @Tags         Demo
// @Param        id path string true "Session ID"
// @Success      200  {object}  response.Response
// @Router       /demo/sessions/{id} [delete]
func (c *DemoController) DeleteSession() {
	if err := c.Container.DemoSessions().Close(c.Ctx.Param("id")); err != nil {
		failWithError(c.Ctx, err, code.ErrDemoSessionNotFound)
		return
	}
	response.SuccessWithMessage(c.Ctx, "Demo session closed", nil)
}

// 6. StreamSession 升级为 websocket，每次状态转换推送一帧
func (c *DemoController) StreamSession() {
	sim, ok := c.session()
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Ctx.Writer, c.Ctx.Request, nil)
	if err != nil {
		logger.Warning("演示流升级失败: %v", err)
		return
	}
	demo.NewStream(sim, conn, logger.L()).Serve()
}
