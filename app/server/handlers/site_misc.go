package handlers

import (
	"net/http"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/middlewares"

	"github.com/labstack/echo/v4"
)

// SetLanguageView 只接受配置中的语言，缺少参数时只做重定向
func (a *App) SetLanguageView(c echo.Context) error {
	if lang := c.QueryParam("lang"); lang != "" && a.i18n.Supported(lang) {
		c.SetCookie(&http.Cookie{
			Name:     constants.LanguageCookieName,
			Value:    lang,
			Path:     "/",
			MaxAge:   int(constants.LanguageCookieAge.Seconds()),
			SameSite: http.SameSiteLaxMode,
		})
	}

	target := middlewares.SafeRedirectURL(c.QueryParam("next"), c.Request().Host, "/")
	return c.Redirect(http.StatusFound, target)
}

func (a *App) ChatView(c echo.Context) error {
	site := middlewares.GetSite(c)
	return c.Render(http.StatusOK, "core/chat.html", map[string]any{
		"BoshServiceURL": site.BoshServiceURL,
	})
}
