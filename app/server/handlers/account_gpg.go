package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/forms"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	maxGpgKeySize = 1 << 20

	CodeGpgInvalidKey = "invalid_key"
	CodeGpgMismatch   = "fingerprint_mismatch"
	CodeGpgKeyExists  = "key_exists"
)

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxGpgKeySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxGpgKeySize {
		return nil, errors.New("upload too large")
	}
	return data, nil
}

// AddGpgKeyView 可以只提交指纹，也可以上传公钥；两者都提交时必须一致
func (a *App) AddGpgKeyView(c echo.Context) error {
	user := middlewares.GetUser(c)
	form := forms.AddGpgKey(middlewares.GetLocalizer(c))
	render := func() error {
		return c.Render(http.StatusOK, "account/gpg.html", map[string]any{"Form": form})
	}

	posted, err := a.bindForm(c, form)
	if err != nil {
		return err
	}
	if !posted || !form.IsValid() {
		return render()
	}

	key := models.GpgKey{
		UserID:      user.ID,
		Fingerprint: forms.NormalizeFingerprint(form.Cleaned("fingerprint")),
	}
	if upload := form.CleanedFile("key"); upload != nil {
		data, err := readUpload(upload)
		if err != nil {
			a.l.Info("failed to read gpg key upload", zap.Error(err))
			form.AddError("key", CodeGpgInvalidKey, "forms.gpg.key_invalid", nil)
			return render()
		}
		info, err := forms.ParseGpgKey(data)
		if err != nil {
			a.l.Info("failed to parse gpg key", zap.Error(err))
			form.AddError("key", CodeGpgInvalidKey, "forms.gpg.key_invalid", nil)
			return render()
		}
		if key.Fingerprint != "" && key.Fingerprint != info.Fingerprint {
			form.AddError("fingerprint", CodeGpgMismatch, "forms.gpg.fingerprint_mismatch", nil)
			return render()
		}
		key.Fingerprint = info.Fingerprint
		key.Expires = info.Expires
		key.Key = info.Armored
	}
	if key.Expires != nil && key.Expires.Before(a.now()) {
		form.AddError("key", CodeGpgInvalidKey, "forms.gpg.key_expired", nil)
		return render()
	}

	rctx := c.Request().Context()
	var count int64
	if err := a.db.WithContext(rctx).Model(&models.GpgKey{}).
		Where("user_id = ? AND fingerprint = ?", user.ID, key.Fingerprint).
		Count(&count).Error; err != nil {
		a.l.Error("failed to count gpg keys", zap.Error(err))
		return err
	}
	if count > 0 {
		form.AddError("fingerprint", CodeGpgKeyExists, "forms.gpg.exists", nil)
		return render()
	}

	addressID := a.address(c)
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&key).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.gpg_added", map[string]any{"Fingerprint": key.Fingerprint})
	}); err != nil {
		a.l.Error("failed to add gpg key", zap.Error(err))
		return err
	}

	a.message(c, models.MessageLevelSuccess, "messages.gpg.added", map[string]any{"Fingerprint": key.Fingerprint})
	return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
}

func (a *App) DeleteGpgKeyView(c echo.Context) error {
	user := middlewares.GetUser(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return notFound()
	}

	rctx := c.Request().Context()
	var key models.GpgKey
	if err := a.db.WithContext(rctx).First(&key, "id = ? AND user_id = ?", id, user.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound()
		}
		a.l.Error("failed to get gpg key", zap.Uint64("id", id), zap.Error(err))
		return err
	}

	addressID := a.address(c)
	if err := a.db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&key).Error; err != nil {
			return err
		}
		return a.logEntry(tx, user.ID, addressID, "log.gpg_removed", map[string]any{"Fingerprint": key.Fingerprint})
	}); err != nil {
		a.l.Error("failed to delete gpg key", zap.Uint64("id", id), zap.Error(err))
		return err
	}

	a.message(c, models.MessageLevelSuccess, "messages.gpg.removed", map[string]any{"Fingerprint": key.Fingerprint})
	return middlewares.Redirect(c, middlewares.URL(c, constants.RouteAccountDetail))
}
