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

const payloadKeyEmail = "email"

// SetEmailView 新地址在确认之后才会生效
func (a *App) SetEmailView(c echo.Context) error {
	user := middlewares.GetUser(c)
	form := forms.SetEmail(middlewares.GetLocalizer(c))
	form.SetInitial("email", user.Email)

	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return c.Render(http.StatusOK, "account/set_email.html", map[string]any{"Form": form})
	}

	rctx := c.Request().Context()
	email := form.Cleaned("email")
	addressID := a.address(c)
	conf := a.newConfirmation(c, user, constants.PurposeSetEmail, email, addressID, map[string]string{payloadKeyEmail: email})
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conf).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.email_requested", map[string]any{"Email": email})
	}); err != nil {
		a.l.Error("failed to create email confirmation", zap.Error(err))
		return err
	}
	if err := a.sendConfirmation(c, user, conf, constants.RouteSetEmailKey,
		"mail.set_email.subject", "mail.set_email.body", "messages.email.mail_sent"); err != nil {
		a.l.Error("failed to send email confirmation", zap.Error(err))
		return err
	}
	if err := a.limiter.Record(rctx, constants.ActivitySetEmail, middlewares.RemoteAddr(c)); err != nil {
		a.l.Error("failed to record rate limit", zap.Error(err))
	}

	a.message(c, models.MessageLevelSuccess, "messages.email.sent", map[string]any{"Email": email})
	return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
}

func (a *App) ConfirmSetEmailView(c echo.Context) error {
	rctx := c.Request().Context()
	conf, err := a.getConfirmation(rctx, c.Param("key"), constants.PurposeSetEmail)
	if err != nil {
		return err
	}
	user := conf.User
	email := conf.Payload[payloadKeyEmail]
	if email == "" {
		email = conf.Recipient
	}

	addressID := a.address(c)
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("email", email).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(conf).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.email_set", map[string]any{"Email": email})
	}); err != nil {
		a.l.Error("failed to set email", zap.Uint("user", user.ID), zap.Error(err))
		return err
	}

	a.message(c, models.MessageLevelSuccess, "messages.email.set", map[string]any{"Email": email})
	if middlewares.GetUser(c) != nil {
		return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
	}
	return middlewares.Redirect(c, a.home(c))
}
