package middlewares

import (
	"errors"
	"net/http"
	"time"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/jwt"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Session 从会话 Cookie 中恢复登录的用户，被封禁或已删除的用户会被登出
func Session(db *gorm.DB, j *jwt.JWT, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(constants.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			jwtUser, err := j.ParseUser(cookie.Value, jwt.AudienceSession)
			if err != nil {
				ClearSession(c)
				return next(c)
			}

			var user models.User
			if err := db.WithContext(c.Request().Context()).First(&user, "id = ?", jwtUser.ID).Error; err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					l.Error("failed to get session user", zap.Uint("id", jwtUser.ID), zap.Error(err))
					return err
				}
				ClearSession(c)
				return next(c)
			}
			if user.Blocked {
				ClearSession(c)
				return next(c)
			}

			c.Set(constants.ContextKeyUser, &user)
			return next(c)
		}
	}
}

// Login 签发会话 Cookie
func Login(c echo.Context, j *jwt.JWT, user *models.User, duration time.Duration) error {
	expires := time.Now().Add(duration)
	token, err := j.SignToken(&jwt.User{
		ID:       user.ID,
		IsAdmin:  user.IsAdmin,
		Audience: jwt.AudienceSession,
		Expires:  expires.Unix(),
	})
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   c.Scheme() == "https",
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(constants.ContextKeyUser, user)
	return nil
}

func ClearSession(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	c.Set(constants.ContextKeyUser, nil)
}

// GetUser 返回登录的用户，匿名时为 nil
func GetUser(c echo.Context) *models.User {
	user, _ := c.Get(constants.ContextKeyUser).(*models.User)
	return user
}
