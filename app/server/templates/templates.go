// Package templates 渲染内嵌的 HTML 模板。
//
// 每个页面模板都和 layout.html 组合，页面通过 {{ define "content" }} 填充内容。
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/i18n"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed html
var htmlFS embed.FS

const (
	layoutName = "layout.html"
	rootDir    = "html"
)

var funcs = template.FuncMap{
	"join": strings.Join,
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
}

type Renderer struct {
	cfg       *config.Config
	t         *i18n.I18n
	templates map[string]*template.Template
}

func New(cfg *config.Config, t *i18n.I18n) (*Renderer, error) {
	base, err := template.New(layoutName).Funcs(funcs).ParseFS(htmlFS, rootDir+"/"+layoutName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	r := &Renderer{
		cfg:       cfg,
		t:         t,
		templates: map[string]*template.Template{},
	}
	err = fs.WalkDir(htmlFS, rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(path, rootDir+"/")
		if d.IsDir() || name == layoutName || !strings.HasSuffix(name, ".html") {
			return nil
		}

		tmpl, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := tmpl.ParseFS(htmlFS, path); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.templates[name] = tmpl
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r, nil
}

// Has 返回模板是否存在
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

func (r *Renderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return tmpl.ExecuteTemplate(w, layoutName, r.Context(c, data))
}

// Context 是所有页面模板共享的数据， Data 为页面自己的数据
type Context struct {
	Site      *config.HostConfig
	User      *models.User
	Language  string
	Languages []string
	Menu      []models.MenuLink
	Messages  []middlewares.Message
	OS        string
	OSMobile  bool
	Path      string
	Route     string
	CSRFToken string
	Data      any

	localizer *goi18n.Localizer
}

// Context 从请求中收集模板需要的数据。
// 没有匹配到路由的请求（例如 404 ）没有经过站点中间件，这里使用默认值。
func (r *Renderer) Context(c echo.Context, data any) *Context {
	ctx := &Context{
		Site:      middlewares.GetSite(c),
		User:      middlewares.GetUser(c),
		Language:  middlewares.GetLanguage(c),
		Languages: r.t.Languages(),
		Messages:  middlewares.GetMessages(c),
		Path:      c.Request().URL.RequestURI(),
		Data:      data,
		localizer: middlewares.GetLocalizer(c),
	}
	if ctx.Site == nil {
		ctx.Site = r.cfg.DefaultHostConfig()
	}
	if ctx.Language == "" {
		ctx.Language = r.t.Default()
	}
	if ctx.localizer == nil {
		ctx.localizer = r.t.Localizer(ctx.Language)
	}
	ctx.OS, ctx.OSMobile = middlewares.GetOS(c)
	ctx.Route, _ = c.Get(constants.ContextKeyRouteName).(string)
	ctx.CSRFToken, _ = c.Get(constants.ContextKeyCSRF).(string)

	for _, entry := range middlewares.GetRequestContext(c).Menu {
		ctx.Menu = append(ctx.Menu, entry.Link(ctx.Language, r.t.Default()))
	}

	return ctx
}

// T 翻译消息，参数为成对的键与值
func (ctx *Context) T(messageID string, args ...any) string {
	var data map[string]any
	if len(args) > 0 {
		data = make(map[string]any, len(args)/2)
		for i := 0; i+1 < len(args); i += 2 {
			data[fmt.Sprint(args[i])] = args[i+1]
		}
	}
	return i18n.T(ctx.localizer, messageID, data)
}

// URL 返回具名路由在当前语言下的地址
func (ctx *Context) URL(name string, args ...any) string {
	strArgs := make([]string, len(args))
	for i, arg := range args {
		strArgs[i] = fmt.Sprint(arg)
	}
	return constants.Routes.Path(name, ctx.Language, constants.RouteFallbackLanguage, strArgs...)
}

// LanguageURL 切换语言后回到当前页面
func (ctx *Context) LanguageURL(lang string) string {
	return constants.Routes.Path(constants.RouteSetLanguage, ctx.Language, constants.RouteFallbackLanguage) +
		"?lang=" + lang + "&next=" + template.URLQueryEscaper(ctx.Path)
}

func (ctx *Context) IsActive(route string) bool {
	return ctx.Route == route
}

// TMap 使用已有的参数表翻译，用于保存在数据库中的消息
func (ctx *Context) TMap(messageID string, data map[string]any) string {
	return i18n.T(ctx.localizer, messageID, data)
}
