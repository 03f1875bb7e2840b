package handlers

import (
	"net/http"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/forms"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DeleteAccountView 校验密码后发送确认邮件，账户在确认后才会删除
func (a *App) DeleteAccountView(c echo.Context) error {
	user := middlewares.GetUser(c)
	form := forms.DeleteAccount(middlewares.GetLocalizer(c))
	render := func() error {
		return c.Render(http.StatusOK, "account/delete.html", map[string]any{"Form": form})
	}

	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return render()
	}

	rctx := c.Request().Context()
	ok, err := a.backend.CheckPassword(rctx, user.Node(), user.Domain(), form.Cleaned("password"))
	if err != nil {
		return err
	}
	if !ok {
		form.AddError("password", CodeInvalidLogin, "account.delete.wrong_password", nil)
		return render()
	}
	if user.Email == "" {
		a.message(c, models.MessageLevelError, "messages.delete.no_email", nil)
		return render()
	}

	addressID := a.address(c)
	conf := a.newConfirmation(c, user, constants.PurposeDeleteAccount, user.Email, addressID, nil)
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conf).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.delete_requested", nil)
	}); err != nil {
		a.l.Error("failed to create delete confirmation", zap.Error(err))
		return err
	}
	if err := a.sendConfirmation(c, user, conf, constants.RouteDeleteKey,
		"mail.delete_account.subject", "mail.delete_account.body", ""); err != nil {
		a.l.Error("failed to send delete confirmation", zap.Error(err))
		return err
	}

	a.message(c, models.MessageLevelSuccess, "messages.delete.sent", map[string]any{"Email": user.Email})
	return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
}

// ConfirmDeleteAccountView 在 GET 时显示确认页面， POST 时删除 XMPP 账户与网站账户
func (a *App) ConfirmDeleteAccountView(c echo.Context) error {
	rctx := c.Request().Context()
	conf, err := a.getConfirmation(rctx, c.Param("key"), constants.PurposeDeleteAccount)
	if err != nil {
		return err
	}
	user := conf.User

	if c.Request().Method != http.MethodPost {
		return c.Render(http.StatusOK, "account/delete_confirm.html", map[string]any{
			"Username": user.Username,
		})
	}

	if err := a.backend.RemoveUser(rctx, user.Node(), user.Domain()); err != nil {
		return err
	}
	if err := a.deleteUser(a.db.WithContext(rctx), user.ID); err != nil {
		a.l.Error("failed to delete user", zap.Uint("id", user.ID), zap.Error(err))
		return err
	}

	if current := middlewares.GetUser(c); current != nil && current.ID == user.ID {
		middlewares.ClearSession(c)
	}
	a.message(c, models.MessageLevelSuccess, "messages.delete.done", map[string]any{"Username": user.Username})
	return middlewares.Redirect(c, a.home(c))
}

// deleteUser 删除用户及其所有数据
func (a *App) deleteUser(db *gorm.DB, userID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Confirmation{}, &models.GpgKey{}, &models.UserLogEntry{}, &models.CachedMessage{}} {
			if err := tx.Unscoped().Where("user_id = ?", userID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Unscoped().Delete(&models.User{}, userID).Error
	})
}
