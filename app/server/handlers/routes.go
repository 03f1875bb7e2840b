package handlers

import (
	"net/http"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/middlewares"

	"github.com/labstack/echo/v4"
)

var (
	methodsGet     = []string{http.MethodGet, http.MethodHead}
	methodsGetPost = []string{http.MethodGet, http.MethodHead, http.MethodPost}
	methodsPost    = []string{http.MethodPost}
)

// route 为具名路由的每个语言路径注册同一个 handler
func route(g *echo.Group, name string, methods []string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	mws := append([]echo.MiddlewareFunc{middlewares.TranslatedRoute(name)}, m...)
	for _, path := range constants.Routes.Patterns(name) {
		g.Match(methods, path, h, mws...)
	}
}

// SiteMiddlewares 是网站页面共用的中间件，顺序有依赖关系
func (a *App) SiteMiddlewares() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middlewares.Site(a.cfg),
		middlewares.OS(),
		middlewares.Language(a.i18n),
		middlewares.Messages(),
		middlewares.Session(a.db, a.jwt, a.l),
		middlewares.CachedMessages(a.db, a.l),
		middlewares.RequestContextMiddleware(a.db, a.rdb, a.l, a.i18n.Languages()),
		middlewares.SecurityHeaders(a.cfg.System.Debug),
	}
}

// RegisterSite 注册网站页面， extra 中间件（例如 CSRF ）加在站点中间件之后
func (a *App) RegisterSite(e *echo.Echo, extra ...echo.MiddlewareFunc) {
	g := e.Group("", append(a.SiteMiddlewares(), extra...)...)
	guards := a.guards
	anonymous := middlewares.AnonymousRequired()
	login := middlewares.LoginRequired()

	// 内容
	route(g, constants.RouteBlogHome, methodsGet, a.BlogPostListView)
	route(g, constants.RouteBlogList, methodsGet, a.BlogPostListView)
	route(g, constants.RouteBlogPost, methodsGet, a.BlogPostView)
	route(g, constants.RoutePage, methodsGet, a.PageView)
	route(g, constants.RouteContact, methodsGetPost, a.ContactView,
		guards.Blacklist(), guards.DNSBL(), guards.RateLimit(constants.ActivityContact))
	route(g, constants.RouteSetLanguage, methodsGet, a.SetLanguageView)
	route(g, constants.RouteChat, methodsGet, a.ChatView)
	route(g, constants.RouteCertList, methodsGet, a.CertListView)
	route(g, constants.RouteCertDetail, methodsGet, a.CertDetailView)

	// 账户
	route(g, constants.RouteRegister, methodsGetPost, a.RegisterView,
		anonymous, guards.Blacklist(), guards.DNSBL(), guards.RateLimit(constants.ActivityRegister))
	route(g, constants.RouteRegisterKey, methodsGetPost, a.ConfirmRegistrationView, anonymous)
	route(g, constants.RouteLogin, methodsGetPost, a.LoginView, anonymous)
	route(g, constants.RouteLogout, methodsPost, a.LogoutView)
	route(g, constants.RouteAccountDetail, methodsGet, a.AccountDetailView, login)
	route(g, constants.RouteAccountLog, methodsGet, a.AccountLogView, login)
	route(g, constants.RouteSetPassword, methodsGetPost, a.SetPasswordView, login)
	route(g, constants.RouteResetPassword, methodsGetPost, a.ResetPasswordView,
		anonymous, guards.Blacklist(), guards.DNSBL(), guards.RateLimit(constants.ActivityResetPassword))
	route(g, constants.RouteResetKey, methodsGetPost, a.ConfirmResetPasswordView)
	route(g, constants.RouteSetEmail, methodsGetPost, a.SetEmailView,
		login, guards.RateLimit(constants.ActivitySetEmail))
	route(g, constants.RouteSetEmailKey, methodsGet, a.ConfirmSetEmailView)
	route(g, constants.RouteGpg, methodsGetPost, a.AddGpgKeyView, login)
	route(g, constants.RouteGpgDelete, methodsPost, a.DeleteGpgKeyView, login)
	route(g, constants.RouteDeleteAccount, methodsGetPost, a.DeleteAccountView, login)
	route(g, constants.RouteDeleteKey, methodsGetPost, a.ConfirmDeleteAccountView)
	route(g, constants.RouteUsernameExists, methodsGet, a.UsernameExistsView)
}
