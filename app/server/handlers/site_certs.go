package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CertListView 列出当前主机启用的证书，最新的在前
func (a *App) CertListView(c echo.Context) error {
	site := middlewares.GetSite(c)

	var certs []models.Certificate
	if err := a.db.WithContext(c.Request().Context()).
		Scopes(models.CertificateEnabled).
		Where("hostname = ?", site.Domain).
		Order("valid_from DESC").
		Find(&certs).Error; err != nil {
		a.l.Error("failed to get certificates", zap.Error(err))
		return err
	}

	return c.Render(http.StatusOK, "certs/list.html", map[string]any{
		"Certificates": certs,
		"Now":          a.now(),
	})
}

func (a *App) CertDetailView(c echo.Context) error {
	site := middlewares.GetSite(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return notFound()
	}

	var cert models.Certificate
	if err := a.db.WithContext(c.Request().Context()).
		Scopes(models.CertificateEnabled).
		Where("hostname = ?", site.Domain).
		First(&cert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound()
		}
		a.l.Error("failed to get certificate", zap.Uint64("id", id), zap.Error(err))
		return err
	}

	return c.Render(http.StatusOK, "certs/detail.html", map[string]any{
		"Certificate": cert,
		"Now":         a.now(),
	})
}
