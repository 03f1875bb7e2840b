package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/jwt"
	"xmpp-homepage/app/server/models"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const adminLoginPath = "/api/admin/auth/login"

// AdminJWT 校验管理接口的 Bearer 令牌，登录接口除外
func (a *App) AdminJWT() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey: constants.ContextKeyAdminToken,
		Skipper: func(c echo.Context) bool {
			return c.Path() == adminLoginPath
		},
		ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
			return a.jwt.ParseUser(auth, jwt.AudienceAdmin)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			a.l.Debug("admin token rejected", zap.Error(err))
			return a.er(c, http.StatusUnauthorized)
		},
	})
}

func (a *App) getJwtUser(c echo.Context) (*jwt.User, error) {
	jwtUser, ok := c.Get(constants.ContextKeyAdminToken).(*jwt.User)
	if !ok || jwtUser == nil {
		return nil, fmt.Errorf("missing auth token")
	}
	return jwtUser, nil
}

// authAdmin 确认令牌对应的用户仍然是未被封禁的管理员
func (a *App) authAdmin(c echo.Context) (error, int) {
	jwtUser, err := a.getJwtUser(c)
	if err != nil {
		return err, http.StatusUnauthorized
	}
	if !jwtUser.IsAdmin {
		return fmt.Errorf("requires admin role"), http.StatusForbidden
	}

	var user models.User
	if err := a.db.WithContext(c.Request().Context()).First(&user, "id = ?", jwtUser.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d no longer exists", jwtUser.ID), http.StatusUnauthorized
		}
		return fmt.Errorf("failed to get user: %w", err), http.StatusInternalServerError
	}
	if !user.IsAdmin || user.Blocked {
		return fmt.Errorf("user %d is not an admin", user.ID), http.StatusForbidden
	}

	return nil, http.StatusOK
}
