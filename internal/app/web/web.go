// Package web 内嵌首页、看板和管理页面的模板
package web

import (
	"embed"
	"html/template"
)

//go:embed templates/*.html
var files embed.FS

// Page 渲染页面时传入的数据
type Page struct {
	Title       string
	Active      string
	APIPrefix   string
	SuccessCode int
}

// Templates 解析内嵌模板，layout.html 提供公共页头页脚
func Templates() (*template.Template, error) {
	return template.ParseFS(files, "templates/*.html")
}
