// Package apidocs 提供管理接口的在线文档页面。
package apidocs

import (
	"bytes"
	"html/template"
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
)

type Opts func(*docConfig)

type docConfig struct {
	Title   string
	SpecURL string

	// 返回 false 时拒绝访问
	authorizer func(*http.Request) bool
}

func WithTitle(title string) Opts {
	return func(cfg *docConfig) {
		cfg.Title = title
	}
}

func WithAuthorizer(authorizer func(*http.Request) bool) Opts {
	return func(cfg *docConfig) {
		cfg.authorizer = authorizer
	}
}

var pageTmpl = template.Must(template.New("apidocs").Parse(pageTemplate))

// Doc 在 basePath/apidocs 提供文档页面，在 basePath/apispec.json 提供 JSON 格式的文档。
// 需要用 e.Pre 注册，这样不会经过管理接口的令牌校验。
func Doc(basePath string, specJSON []byte, opts ...Opts) echo.MiddlewareFunc {
	cfg := &docConfig{
		Title:   "API documentation",
		SpecURL: path.Join(basePath, "apispec.json"),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	docPath := path.Join(basePath, "apidocs")
	buf := bytes.NewBuffer(nil)
	if err := pageTmpl.Execute(buf, cfg); err != nil {
		panic(err)
	}
	pageHTML := buf.String()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqPath := c.Request().URL.Path
			if reqPath != basePath && reqPath != docPath && reqPath != cfg.SpecURL {
				return next(c)
			}
			if cfg.authorizer != nil && !cfg.authorizer(c.Request()) {
				return c.String(http.StatusForbidden, http.StatusText(http.StatusForbidden))
			}

			switch reqPath {
			case docPath:
				return c.HTML(http.StatusOK, pageHTML)
			case cfg.SpecURL:
				return c.JSONBlob(http.StatusOK, specJSON)
			default:
				return c.Redirect(http.StatusFound, docPath)
			}
		}
	}
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
  <head>
    <title>{{ .Title }}</title>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1" />
  </head>
  <body>
    <script id="api-reference" data-url="{{ .SpecURL }}"></script>
    <script src="https://cdnjs.cloudflare.com/ajax/libs/scalar-api-reference/1.25.99/standalone.min.js" integrity="sha512-ai3lOYZ5efNXMYwnqhz0mnCaImbqfwLE1VCx9Y9nhB3OJX4/uegjIAoQtJHy3SILHp/gS1OlPCIeNFPZT5i2WQ==" crossorigin="anonymous" referrerpolicy="no-referrer"></script>
  </body>
</html>`
