package middlewares

import (
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/i18n"

	"github.com/labstack/echo/v4"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
)

// Language 选择当前语言：先看 Cookie ，其次 Accept-Language ，最后使用默认语言
func Language(t *i18n.I18n) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var lang string
			if cookie, err := c.Cookie(constants.LanguageCookieName); err == nil && t.Supported(cookie.Value) {
				lang = cookie.Value
			} else {
				lang = t.Match(c.Request().Header.Get("Accept-Language"))
			}

			c.Set(constants.ContextKeyLanguage, lang)
			c.Set(constants.ContextKeyLocalizer, t.Localizer(lang))
			c.Response().Header().Set("Content-Language", lang)
			return next(c)
		}
	}
}

func GetLanguage(c echo.Context) string {
	lang, _ := c.Get(constants.ContextKeyLanguage).(string)
	return lang
}

func GetLocalizer(c echo.Context) *goi18n.Localizer {
	loc, _ := c.Get(constants.ContextKeyLocalizer).(*goi18n.Localizer)
	return loc
}

// T 使用当前请求的语言翻译
func T(c echo.Context, messageID string, data map[string]any) string {
	return i18n.T(GetLocalizer(c), messageID, data)
}
