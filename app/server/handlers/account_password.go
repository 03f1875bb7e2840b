package handlers

import (
	"errors"
	"net/http"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/forms"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *App) SetPasswordView(c echo.Context) error {
	user := middlewares.GetUser(c)
	form := forms.SetPassword(middlewares.GetLocalizer(c))

	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return c.Render(http.StatusOK, "account/set_password.html", map[string]any{"Form": form})
	}

	rctx := c.Request().Context()
	if err := a.backend.SetPassword(rctx, user.Node(), user.Domain(), form.Cleaned("password")); err != nil {
		return err
	}
	if err := a.logEntry(a.db.WithContext(rctx), user.ID, a.address(c), "log.password_set", nil); err != nil {
		a.l.Error("failed to log password change", zap.Error(err))
	}

	a.message(c, models.MessageLevelSuccess, "messages.password.set", nil)
	return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
}

// ResetPasswordView 无论用户是否存在都显示相同的结果
func (a *App) ResetPasswordView(c echo.Context) error {
	form := forms.ResetPassword(middlewares.GetLocalizer(c), a.formOptions(c, false))

	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return c.Render(http.StatusOK, "account/reset_password.html", map[string]any{"Form": form})
	}

	rctx := c.Request().Context()
	username := form.Cleaned("username")
	var user models.User
	err = a.db.WithContext(rctx).
		Scopes(models.NotBlocked).
		Where("confirmed IS NOT NULL").
		First(&user, "username = ?", username).Error
	switch {
	case err == nil && user.Email != "":
		addressID := a.address(c)
		conf := a.newConfirmation(c, &user, constants.PurposeResetPassword, user.Email, addressID, nil)
		if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(conf).Error; err != nil {
				return err
			}
			return a.logEntry(tx, user.ID, addressID, "log.reset_requested", nil)
		}); err != nil {
			a.l.Error("failed to create reset confirmation", zap.Error(err))
			return err
		}
		if err := a.sendConfirmation(c, &user, conf, constants.RouteResetKey,
			"mail.reset_password.subject", "mail.reset_password.body", ""); err != nil {
			a.l.Error("failed to send reset mail", zap.Error(err))
			return err
		}
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		a.l.Error("failed to get user", zap.String("username", username), zap.Error(err))
		return err
	}

	if err := a.limiter.Record(rctx, constants.ActivityResetPassword, middlewares.RemoteAddr(c)); err != nil {
		a.l.Error("failed to record rate limit", zap.Error(err))
	}
	a.message(c, models.MessageLevelSuccess, "messages.password.reset_sent", nil)
	return middlewares.Redirect(c, a.home(c))
}

func (a *App) ConfirmResetPasswordView(c echo.Context) error {
	rctx := c.Request().Context()
	conf, err := a.getConfirmation(rctx, c.Param("key"), constants.PurposeResetPassword)
	if err != nil {
		return err
	}
	user := conf.User

	form := forms.SetPassword(middlewares.GetLocalizer(c))
	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return c.Render(http.StatusOK, "account/reset_password_confirm.html", map[string]any{
			"Form":     form,
			"Username": user.Username,
		})
	}

	if err := a.backend.SetPassword(rctx, user.Node(), user.Domain(), form.Cleaned("password")); err != nil {
		return err
	}
	addressID := a.address(c)
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(conf).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.password_reset", nil)
	}); err != nil {
		a.l.Error("failed to finish password reset", zap.Uint("user", user.ID), zap.Error(err))
		return err
	}

	if err := a.login(c, user); err != nil {
		return err
	}
	a.message(c, models.MessageLevelSuccess, "messages.password.set", nil)
	return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
}
