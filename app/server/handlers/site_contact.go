package handlers

import (
	"net/http"
	"xmpp-homepage/app/server/bootstrap"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/forms"
	"xmpp-homepage/app/server/mailqueue"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ContactView 登录用户的回复地址为账户邮箱，匿名用户需要填写邮箱
func (a *App) ContactView(c echo.Context) error {
	user := middlewares.GetUser(c)
	site := middlewares.GetSite(c)
	loc := middlewares.GetLocalizer(c)

	var form *bootstrap.Form
	if user != nil {
		form = forms.Contact(loc)
	} else {
		form = forms.AnonymousContact(loc)
	}

	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return c.Render(http.StatusOK, "core/contact.html", map[string]any{"Form": form})
	}

	if site.ContactAddress == "" {
		a.l.Error("no contact address configured", zap.String("site", site.Name))
		return echo.NewHTTPError(http.StatusInternalServerError, "no contact address configured")
	}

	addr := middlewares.RemoteAddr(c)
	data := map[string]any{
		"Domain":  site.Domain,
		"Subject": form.Cleaned("subject"),
		"Message": form.Cleaned("text"),
		"Address": addr,
	}
	mail := &mailqueue.Mail{
		To:      []string{site.ContactAddress},
		Subject: middlewares.T(c, "mail.contact.subject", data),
	}
	if user != nil {
		data["From"] = user.Username
		mail.ReplyTo = user.Email
		mail.UserID = user.ID
		mail.NotifyMessage = "messages.contact.delivered"
	} else {
		data["From"] = form.Cleaned("email")
		mail.ReplyTo = form.Cleaned("email")
	}
	mail.Body = middlewares.T(c, "mail.contact.body", data)

	rctx := c.Request().Context()
	if err := a.mails.Enqueue(rctx, mail); err != nil {
		a.l.Error("failed to enqueue contact mail", zap.Error(err))
		return err
	}
	if err := a.limiter.Record(rctx, constants.ActivityContact, addr); err != nil {
		a.l.Error("failed to record rate limit", zap.Error(err))
	}

	a.message(c, models.MessageLevelSuccess, "messages.contact.sent", nil)
	return c.Render(http.StatusOK, "core/contact.html", map[string]any{"Form": form, "Sent": true})
}
