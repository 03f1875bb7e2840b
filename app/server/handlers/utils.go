package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"xmpp-homepage/app/server/bootstrap"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/forms"
	"xmpp-homepage/app/server/mailqueue"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const TemplateConfirmationInvalid = "account/confirmation_invalid.html"

// bindForm 在提交时绑定表单，返回是否为提交请求
func (a *App) bindForm(c echo.Context, form *bootstrap.Form) (bool, error) {
	if c.Request().Method != http.MethodPost {
		return false, nil
	}

	values, err := c.FormParams()
	if err != nil {
		return true, echo.NewHTTPError(http.StatusBadRequest, "invalid form data").SetInternal(err)
	}
	var files map[string][]*multipart.FileHeader
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if mf, err := c.MultipartForm(); err == nil {
			files = mf.File
		}
	}
	form.Bind(values, files)
	return true, nil
}

func (a *App) formOptions(c echo.Context, registration bool) forms.Options {
	return forms.OptionsFor(a.cfg, middlewares.GetSite(c), registration)
}

// address 返回请求来源地址的记录，失败时只记录日志
func (a *App) address(c echo.Context) *uint {
	addr, err := models.GetOrCreateAddress(a.db.WithContext(c.Request().Context()), middlewares.RemoteAddr(c))
	if err != nil {
		a.l.Error("failed to get address", zap.Error(err))
		return nil
	}
	return &addr.ID
}

func (a *App) logEntry(tx *gorm.DB, userID uint, addressID *uint, message string, payload map[string]any) error {
	entry := models.UserLogEntry{
		UserID:    userID,
		AddressID: addressID,
		Message:   message,
		Payload:   payload,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create log entry: %w", err)
	}
	return nil
}

func (a *App) absoluteURL(c echo.Context, path string) string {
	return c.Scheme() + "://" + c.Request().Host + path
}

func (a *App) newConfirmation(c echo.Context, user *models.User, purpose, recipient string, addressID *uint, payload map[string]string) *models.Confirmation {
	return &models.Confirmation{
		UserID:    user.ID,
		Key:       uuid.NewString(),
		Purpose:   purpose,
		Language:  middlewares.GetLanguage(c),
		Recipient: recipient,
		Expires:   a.now().Add(a.cfg.Accounts.ConfirmationExpires),
		Payload:   payload,
		AddressID: addressID,
	}
}

// sendConfirmation 把确认邮件放入队列，邮件发出后用户会收到 notify 消息
func (a *App) sendConfirmation(c echo.Context, user *models.User, conf *models.Confirmation, route, subjectID, bodyID, notifyID string) error {
	site := middlewares.GetSite(c)
	data := map[string]any{
		"Username": user.Username,
		"Brand":    site.Brand,
		"URL":      a.absoluteURL(c, middlewares.URL(c, route, conf.Key)),
		"Expires":  conf.Expires.Format("2006-01-02 15:04 MST"),
	}
	mail := &mailqueue.Mail{
		To:            []string{conf.Recipient},
		Subject:       middlewares.T(c, subjectID, data),
		Body:          middlewares.T(c, bodyID, data),
		UserID:        user.ID,
		NotifyMessage: notifyID,
		NotifyPayload: map[string]any{"Email": conf.Recipient},
	}
	if err := a.mails.Enqueue(c.Request().Context(), mail); err != nil {
		return fmt.Errorf("failed to enqueue confirmation mail: %w", err)
	}
	return nil
}

// getConfirmation 读取地址中 key 对应的有效确认记录
func (a *App) getConfirmation(ctx context.Context, key, purpose string) (*models.Confirmation, error) {
	var conf models.Confirmation
	if err := a.db.WithContext(ctx).
		Scopes(models.ConfirmationPurpose(purpose), models.ConfirmationValid(a.now())).
		Preload("User").
		First(&conf, "confirmation_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ResponseError{Status: http.StatusNotFound, Template: TemplateConfirmationInvalid}
		}
		return nil, fmt.Errorf("failed to get confirmation: %w", err)
	}
	if conf.User == nil || conf.User.Blocked {
		return nil, &ResponseError{Status: http.StatusNotFound, Template: TemplateConfirmationInvalid}
	}
	return &conf, nil
}

// parsePage 读取 ?page= ，缺省为 1 ，无效的页码返回 404
func parsePage(c echo.Context) (int, error) {
	raw := c.QueryParam("page")
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, notFound()
	}
	return page, nil
}

func maxPage(count int64, perPage int) int {
	pages := int(count / int64(perPage))
	if count%int64(perPage) != 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (a *App) message(c echo.Context, level int, messageID string, data map[string]any) {
	middlewares.AddMessage(c, level, middlewares.T(c, messageID, data))
}

func (a *App) home(c echo.Context) string {
	return middlewares.URL(c, constants.RouteBlogHome)
}
