package middlewares

import (
	"net/http"
	"net/url"
	"xmpp-homepage/app/server/constants"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders 在调试模式下添加通常由前端服务器设置的安全响应头，只作用于 200 响应
func SecurityHeaders(debug bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if !debug {
			return next
		}
		return func(c echo.Context) error {
			res := c.Response()
			res.Before(func() {
				if res.Status != http.StatusOK {
					return
				}

				csp := "default-src 'self';"
				if route, _ := c.Get(constants.ContextKeyRouteName).(string); route == constants.RouteChat {
					csp += " img-src data: 'self';"
					if site := GetSite(c); site != nil {
						if origin := boshOrigin(site.BoshServiceURL); origin != "" {
							csp += " connect-src 'self' " + origin + ";"
						}
					}
				}

				h := res.Header()
				h.Set("Content-Security-Policy", csp)
				h.Set("Referrer-Policy", "strict-origin")
				h.Set("X-Frame-Options", "deny")
				h.Set("X-XSS-Protection", "1; mode=block")
				h.Set("X-Content-Type-Options", "nosniff")
			})
			return next(c)
		}
	}
}

// boshOrigin 去掉 BOSH 地址中的路径
func boshOrigin(boshURL string) string {
	if boshURL == "" {
		return ""
	}
	u, err := url.Parse(boshURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
