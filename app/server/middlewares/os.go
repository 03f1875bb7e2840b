package middlewares

import (
	"strings"
	"xmpp-homepage/app/server/constants"

	"github.com/labstack/echo/v4"
	"github.com/mssola/useragent"
)

// KnownOS 是允许通过 ?os= 指定的值，其他值会被忽略
var KnownOS = []string{"osx", "ios", "android", "linux", "win", "windows", "any", "browser", "console"}

// DetectOS 优先使用查询参数，否则从 User-Agent 推断
func DetectOS(query, userAgent string) string {
	if query != "" {
		for _, os := range KnownOS {
			if os == query {
				return query
			}
		}
	}

	ua := useragent.New(userAgent)
	name := strings.ToLower(strings.TrimSpace(ua.OSInfo().Name))
	switch {
	case name == "mac os x":
		return "osx"
	case name == "ios" || name == "iphone os":
		return "ios"
	case name == "android":
		return "android"
	case name == "linux":
		return "linux"
	case strings.HasPrefix(name, "windows"):
		return "win"
	}
	return "any"
}

func IsMobileOS(os string) bool {
	return os == "android" || os == "ios" || os == "any"
}

func OS() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			os := DetectOS(c.QueryParam("os"), c.Request().UserAgent())
			c.Set(constants.ContextKeyOS, os)
			c.Set(constants.ContextKeyOSMobile, IsMobileOS(os))
			return next(c)
		}
	}
}

func GetOS(c echo.Context) (string, bool) {
	os, _ := c.Get(constants.ContextKeyOS).(string)
	mobile, _ := c.Get(constants.ContextKeyOSMobile).(bool)
	return os, mobile
}
