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

const CodeInvalidLogin = "invalid_login"

func (a *App) LoginView(c echo.Context) error {
	form := forms.Login(middlewares.GetLocalizer(c), a.formOptions(c, false))
	next := c.QueryParam("next")
	render := func() error {
		return c.Render(http.StatusOK, "account/login.html", map[string]any{
			"Form": form,
			"Next": next,
		})
	}

	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return render()
	}

	rctx := c.Request().Context()
	username := form.Cleaned("username")
	var user models.User
	if err := a.db.WithContext(rctx).
		Scopes(models.NotBlocked).
		Where("confirmed IS NOT NULL").
		First(&user, "username = ?", username).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			a.l.Error("failed to get user", zap.String("username", username), zap.Error(err))
			return err
		}
		form.AddError("", CodeInvalidLogin, "account.login.invalid", nil)
		return render()
	}

	ok, err := a.backend.CheckPassword(rctx, user.Node(), user.Domain(), form.Cleaned("password"))
	if err != nil {
		return err
	}
	if !ok {
		form.AddError("", CodeInvalidLogin, "account.login.invalid", nil)
		return render()
	}

	if err := a.logEntry(a.db.WithContext(rctx), user.ID, a.address(c), "log.login", nil); err != nil {
		a.l.Error("failed to log login", zap.Error(err))
	}
	if err := a.login(c, &user); err != nil {
		return err
	}
	return middlewares.Redirect(c, middlewares.SafeRedirectURL(next, c.Request().Host, middlewares.URL(c, constants.RouteAccountDetail)))
}

func (a *App) LogoutView(c echo.Context) error {
	middlewares.ClearSession(c)
	a.message(c, models.MessageLevelInfo, "messages.logout", nil)
	return middlewares.Redirect(c, a.home(c))
}
