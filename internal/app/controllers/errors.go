package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/demo"
	"chewing-love-service/internal/domain/services"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
	"chewing-love-service/pkg/logger"
)

// ErrorResponse 表示错误响应
type ErrorResponse struct {
	Code    int         `json:"code" example:"100003"`
	Message string      `json:"message" example:"Please fill in all required fields"`
	Data    interface{} `json:"data"`
}

// serviceErrorCodes 业务错误到错误码的映射
var serviceErrorCodes = []struct {
	err  error
	code int
}{
	{services.ErrValidation, code.ErrValidation},
	{services.ErrAssignmentValidation, code.ErrValidation},
	{services.ErrInvalidDeviceStatus, code.ErrValidation},
	{services.ErrFamilyMemberNotFound, code.ErrFamilyMemberNotFound},
	{services.ErrDeviceNotFound, code.ErrDeviceNotFound},
	{services.ErrAssignmentNotFound, code.ErrAssignmentNotFound},
	{services.ErrInvalidTimeRange, code.ErrInvalidTimeRange},
	{services.ErrInvalidInteractionFilter, code.ErrInvalidInteractionFilter},
	{services.ErrInvalidCredentials, code.ErrAdminPasswordIncorrect},
	{demo.ErrSessionNotFound, code.ErrDemoSessionNotFound},
}

// failWithError 已知业务错误使用对应错误码，其他错误使用 fallback 并带上底层信息
func failWithError(ctx *gin.Context, err error, fallback int) {
	for _, m := range serviceErrorCodes {
		if errors.Is(err, m.err) {
			response.FailWithMessage(ctx, m.code, err.Error(), nil)
			return
		}
	}
	logger.Error("%s %s 失败: %v", ctx.Request.Method, ctx.FullPath(), err)
	response.FailWithMessage(ctx, fallback, err.Error(), nil)
}

// invalidMethod 未知的处理方法
func invalidMethod(ctx *gin.Context) {
	response.FailWithMessage(ctx, code.ErrBind, "invalid method", nil)
}
