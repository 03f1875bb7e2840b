package handlers

import (
	"errors"
	"net/http"
	"strings"
	"xmpp-homepage/app/server/jwt"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *App) AuthLogin(c echo.Context) error {
	rctx := c.Request().Context()

	// 绑定请求体
	var req AuthLoginRequest
	if err := c.Bind(&req); err != nil {
		a.l.Error("failed to bind json body", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}

	// 没有写用户名或密码
	if req.Username == nil || req.Password == nil {
		return a.er(c, http.StatusBadRequest)
	}

	username := strings.ToLower(strings.TrimSpace(*req.Username))
	var user models.User
	if err := a.db.WithContext(rctx).Scopes(models.NotBlocked).First(&user, "username = ?", username).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusUnauthorized)
		} else {
			a.l.Error("failed to find user", zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}
	// 不是管理员时与用户不存在的结果相同
	if !user.IsAdmin {
		return a.er(c, http.StatusUnauthorized)
	}

	// 密码保存在 XMPP 服务器上
	if match, err := a.backend.CheckPassword(rctx, user.Node(), user.Domain(), *req.Password); err != nil {
		a.l.Error("failed to check password", zap.Error(err))
		return a.er(c, http.StatusServiceUnavailable)
	} else if !match {
		// 密码不一致
		return a.er(c, http.StatusUnauthorized)
	}

	// 签出 JWT
	expires := a.now().Add(a.cfg.Security.AdminTokenDuration)
	token, err := a.jwt.SignToken(&jwt.User{
		ID:       user.ID,
		IsAdmin:  user.IsAdmin,
		Audience: jwt.AudienceAdmin,
		Expires:  expires.Unix(),
	})
	if err != nil {
		a.l.Error("failed to sign token", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	// 返回
	exp := expires.Unix()
	return c.JSON(http.StatusOK, &LoginToken{
		Token:   &token,
		Expires: &exp,
	})
}
