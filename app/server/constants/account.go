package constants

import "time"

// 确认记录的用途
const (
	PurposeRegistration  = "register"
	PurposeResetPassword = "reset_password"
	PurposeSetEmail      = "set_email"
	PurposeDeleteAccount = "delete_account"
)

// 限流的行为
const (
	ActivityRegister      = "register"
	ActivityResetPassword = "reset_password"
	ActivitySetEmail      = "set_email"
	ActivityContact       = "contact"
)

const (
	SessionCookieName  = "hp_session"
	LanguageCookieName = "lang"
	LanguageCookieAge  = 365 * 24 * time.Hour
	CSRFCookieName     = "hp_csrf"
)

const BlogPostsPerPage = 10
