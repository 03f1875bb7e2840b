package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"xmpp-homepage/app/server/bootstrap"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/forms"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"
	"xmpp-homepage/app/server/utils"
	"xmpp-homepage/app/server/xmpp"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// usernameTaken 检查网站数据库与 XMPP 服务器
func (a *App) usernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := a.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	node, domain, _ := strings.Cut(username, "@")
	return a.backend.UserExists(ctx, node, domain)
}

func (a *App) RegisterView(c echo.Context) error {
	site := middlewares.GetSite(c)
	form := forms.Registration(middlewares.GetLocalizer(c), a.formOptions(c, true))
	render := func() error {
		return c.Render(http.StatusOK, "account/register.html", map[string]any{
			"Form":         form,
			"Registration": site.Registration,
		})
	}
	if !site.Registration {
		return render()
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
	taken, err := a.usernameTaken(rctx, username)
	if err != nil {
		return err
	}
	if taken {
		form.AddError("username", bootstrap.CodeUnique, "", nil)
		return render()
	}

	user := models.User{
		Username:        username,
		Email:           form.Cleaned("email"),
		DefaultLanguage: middlewares.GetLanguage(c),
	}
	addressID := a.address(c)
	var conf *models.Confirmation
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		conf = a.newConfirmation(c, &user, constants.PurposeRegistration, user.Email, addressID, nil)
		if err := tx.Create(conf).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.registered", nil)
	}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			form.AddError("username", bootstrap.CodeUnique, "", nil)
			return render()
		}
		a.l.Error("failed to register user", zap.String("username", username), zap.Error(err))
		return err
	}

	if err := a.sendConfirmation(c, &user, conf, constants.RouteRegisterKey,
		"mail.register.subject", "mail.register.body", "messages.register.mail_sent"); err != nil {
		a.l.Error("failed to send registration mail", zap.Error(err))
		return err
	}
	if err := a.limiter.Record(rctx, constants.ActivityRegister, middlewares.RemoteAddr(c)); err != nil {
		a.l.Error("failed to record rate limit", zap.Error(err))
	}

	a.message(c, models.MessageLevelSuccess, "messages.register.sent", map[string]any{"Email": user.Email})
	return middlewares.Redirect(c, a.home(c))
}

// ConfirmRegistrationView 设置密码并在 XMPP 服务器上创建账户
func (a *App) ConfirmRegistrationView(c echo.Context) error {
	rctx := c.Request().Context()
	conf, err := a.getConfirmation(rctx, c.Param("key"), constants.PurposeRegistration)
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
		return c.Render(http.StatusOK, "account/register_confirm.html", map[string]any{
			"Form":     form,
			"Username": user.Username,
		})
	}

	if err := a.backend.CreateUser(rctx, user.Node(), user.Domain(), form.Cleaned("password"), user.Email); err != nil {
		if errors.Is(err, xmpp.ErrUserExists) {
			a.message(c, models.MessageLevelError, "messages.register.exists", map[string]any{"Username": user.Username})
			return middlewares.Redirect(c, middlewares.URL(c, constants.RouteRegister))
		}
		return err
	}

	addressID := a.address(c)
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(user).Update("confirmed", utils.P(a.now())).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(conf).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.confirmed", nil)
	}); err != nil {
		a.l.Error("failed to confirm user", zap.Uint("id", user.ID), zap.Error(err))
		return err
	}

	if err := a.login(c, user); err != nil {
		return err
	}
	a.message(c, models.MessageLevelSuccess, "messages.register.confirmed", map[string]any{"Username": user.Username})
	return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
}

func (a *App) login(c echo.Context, user *models.User) error {
	if err := middlewares.Login(c, a.jwt, user, a.cfg.Security.SessionDuration); err != nil {
		a.l.Error("failed to sign session", zap.Uint("id", user.ID), zap.Error(err))
		return err
	}
	if err := a.db.WithContext(c.Request().Context()).Model(user).Update("last_activity", utils.P(a.now())).Error; err != nil {
		a.l.Error("failed to update last activity", zap.Uint("id", user.ID), zap.Error(err))
	}
	return nil
}

// UsernameExistsView 给注册表单的输入框实时检查用户名
func (a *App) UsernameExistsView(c echo.Context) error {
	username := strings.ToLower(strings.TrimSpace(c.QueryParam("username")))
	node, domain, ok := strings.Cut(username, "@")
	if !ok || node == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid username"})
	}
	if _, known := a.cfg.HostByDomain(domain); !known {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "unknown domain"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	taken, err := a.usernameTaken(ctx, username)
	if err != nil {
		a.l.Error("failed to check username", zap.String("username", username), zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, map[string]any{"error": "backend unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]any{"exists": taken})
}
