package middlewares

import (
	"net/http"
	"xmpp-homepage/app/server/constants"

	"github.com/labstack/echo/v4"
)

// TranslatedRoute 标记当前的具名路由。
// GET 请求使用了其他语言的路径时，重定向到当前语言的路径。
func TranslatedRoute(name string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(constants.ContextKeyRouteName, name)

			method := c.Request().Method
			if method == http.MethodGet || method == http.MethodHead {
				expected := URL(c, name)
				if expected != "/" && c.Path() != expected {
					target := URL(c, name, c.ParamValues()...)
					if q := c.Request().URL.RawQuery; q != "" {
						target += "?" + q
					}
					return Redirect(c, target)
				}
			}

			return next(c)
		}
	}
}

// URL 返回具名路由在当前语言下的地址
func URL(c echo.Context, name string, args ...string) string {
	return constants.Routes.Path(name, GetLanguage(c), constants.RouteFallbackLanguage, args...)
}
