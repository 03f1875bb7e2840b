package constants

// echo.Context 中保存的键
const (
	ContextKeySite           = "site"
	ContextKeyOS             = "os"
	ContextKeyOSMobile       = "os_mobile"
	ContextKeyUser           = "user"
	ContextKeyLanguage       = "language"
	ContextKeyLocalizer      = "localizer"
	ContextKeyMessages       = "messages"
	ContextKeyRequestContext = "hp_request_context"
	ContextKeyRouteName      = "route_name"
	ContextKeyAdminToken     = "admin_token"
	ContextKeyCSRF           = "csrf"
)
