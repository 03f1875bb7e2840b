package constants

import "xmpp-homepage/app/server/i18n"

// RouteFallbackLanguage 是路由表中一定存在的语言
const RouteFallbackLanguage = "en"

// 具名路由在各个语言下的路径
const (
	RouteBlogHome       = "blog:home"
	RouteBlogList       = "blog:list"
	RouteBlogPost       = "blog:post"
	RoutePage           = "page"
	RouteContact        = "contact"
	RouteSetLanguage    = "setlang"
	RouteChat           = "chat"
	RouteCertList       = "certs:list"
	RouteCertDetail     = "certs:detail"
	RouteRegister       = "account:register"
	RouteRegisterKey    = "account:register_confirm"
	RouteLogin          = "account:login"
	RouteLogout         = "account:logout"
	RouteAccountDetail  = "account:detail"
	RouteAccountLog     = "account:log"
	RouteSetPassword    = "account:set_password"
	RouteResetPassword  = "account:reset_password"
	RouteResetKey       = "account:reset_password_confirm"
	RouteSetEmail       = "account:set_email"
	RouteSetEmailKey    = "account:set_email_confirm"
	RouteGpg            = "account:gpg"
	RouteGpgDelete      = "account:gpg_delete"
	RouteDeleteAccount  = "account:delete"
	RouteDeleteKey      = "account:delete_confirm"
	RouteUsernameExists = "account:exists"
)

var Routes = i18n.Routes{
	RouteBlogHome:       {"en": "/", "de": "/"},
	RouteBlogList:       {"en": "/b/", "de": "/b/"},
	RouteBlogPost:       {"en": "/b/:slug/", "de": "/b/:slug/"},
	RoutePage:           {"en": "/p/:slug/", "de": "/p/:slug/"},
	RouteContact:        {"en": "/contact/", "de": "/kontakt/"},
	RouteSetLanguage:    {"en": "/i18n/setlang/", "de": "/i18n/setlang/"},
	RouteChat:           {"en": "/chat/", "de": "/chat/"},
	RouteCertList:       {"en": "/certs/", "de": "/zertifikate/"},
	RouteCertDetail:     {"en": "/certs/:id/", "de": "/zertifikate/:id/"},
	RouteRegister:       {"en": "/account/register/", "de": "/konto/registrieren/"},
	RouteRegisterKey:    {"en": "/account/register/:key/", "de": "/konto/registrieren/:key/"},
	RouteLogin:          {"en": "/account/login/", "de": "/konto/anmelden/"},
	RouteLogout:         {"en": "/account/logout/", "de": "/konto/abmelden/"},
	RouteAccountDetail:  {"en": "/account/", "de": "/konto/"},
	RouteAccountLog:     {"en": "/account/log/", "de": "/konto/protokoll/"},
	RouteSetPassword:    {"en": "/account/password/", "de": "/konto/passwort/"},
	RouteResetPassword:  {"en": "/account/password/reset/", "de": "/konto/passwort/zuruecksetzen/"},
	RouteResetKey:       {"en": "/account/password/reset/:key/", "de": "/konto/passwort/zuruecksetzen/:key/"},
	RouteSetEmail:       {"en": "/account/email/", "de": "/konto/email/"},
	RouteSetEmailKey:    {"en": "/account/email/:key/", "de": "/konto/email/:key/"},
	RouteGpg:            {"en": "/account/gpg/", "de": "/konto/gpg/"},
	RouteGpgDelete:      {"en": "/account/gpg/:id/delete/", "de": "/konto/gpg/:id/loeschen/"},
	RouteDeleteAccount:  {"en": "/account/delete/", "de": "/konto/loeschen/"},
	RouteDeleteKey:      {"en": "/account/delete/:key/", "de": "/konto/loeschen/:key/"},
	RouteUsernameExists: {"en": "/account/exists/", "de": "/account/exists/"},
}
