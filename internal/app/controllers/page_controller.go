package controllers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"chewing-love-service/internal/app/web"
	"chewing-love-service/internal/error/code"
	"chewing-love-service/internal/error/response"
)

// PageController 渲染内嵌页面
type PageController struct {
	templates *template.Template
	apiPrefix string
}

// NewPageController 解析内嵌模板
func NewPageController(apiPrefix string) (*PageController, error) {
	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	return &PageController{templates: tmpl, apiPrefix: apiPrefix}, nil
}

var pages = map[string]web.Page{
	"index":     {Title: "Chewing Love", Active: "home"},
	"dashboard": {Title: "Dashboard", Active: "dashboard"},
	"admin":     {Title: "Admin", Active: "admin"},
}

// Handle 返回渲染指定页面的处理函数
func (p *PageController) Handle(name string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		page, ok := pages[name]
		if !ok {
			response.Fail(ctx, code.ErrRecordNotFound, nil)
			return
		}
		page.APIPrefix = p.apiPrefix
		page.SuccessCode = code.ErrSuccess

		ctx.Header("Content-Type", "text/html; charset=utf-8")
		ctx.Status(http.StatusOK)
		if err := p.templates.ExecuteTemplate(ctx.Writer, name+".html", page); err != nil {
			_ = ctx.Error(err)
		}
	}
}
