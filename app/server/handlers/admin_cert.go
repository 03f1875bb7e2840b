package handlers

import (
	"errors"
	"net/http"
	"strings"
	"xmpp-homepage/app/server/models"
	"xmpp-homepage/app/server/utils"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func certInfo(cert *models.Certificate, withPEM bool) *CertInfoWithID {
	info := &CertInfoWithID{
		Id:         &cert.ID,
		Hostname:   &cert.Hostname,
		ValidFrom:  utils.P(cert.ValidFrom.Unix()),
		ValidUntil: utils.P(cert.ValidUntil.Unix()),
		Serial:     &cert.Serial,
		KeySize:    &cert.KeySize,
		DNSNames:   (*[]string)(&cert.DNSNames),
		Enabled:    &cert.Enabled,
		SHA1:       &cert.SHA1,
		SHA256:     &cert.SHA256,
		SHA512:     &cert.SHA512,
	}
	if withPEM {
		info.PEM = &cert.PEM
	}
	return info
}

func (a *App) CertCreate(c echo.Context) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req CertCreateRequest
	if err = c.Bind(&req); err != nil || req.Certificate == nil {
		return a.er(c, http.StatusBadRequest)
	}

	cert := models.Certificate{Enabled: true}
	if req.Hostname != nil {
		cert.Hostname = strings.TrimSpace(*req.Hostname)
	}
	if req.Enabled != nil {
		cert.Enabled = *req.Enabled
	}
	if err := cert.ParseCertificatePEM(strings.TrimSpace(*req.Certificate)); err != nil {
		a.l.Info("invalid certificate", zap.Error(err))
		return a.er(c, http.StatusBadRequest)
	}
	if cert.Hostname == "" {
		return a.er(c, http.StatusBadRequest)
	}

	if err := a.db.WithContext(rctx).Create(&cert).Error; err != nil {
		a.l.Error("failed to create certificate", zap.String("hostname", cert.Hostname), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusCreated, certInfo(&cert, false))
}

func (a *App) CertList(c echo.Context) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	var params PaginationParams
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &params); err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	rctx := c.Request().Context()

	var (
		certs      []models.Certificate
		certsCount int64
	)

	showAll, page, limit := a.parsePagination(params)
	queryBase := a.db.WithContext(rctx).Model(&models.Certificate{}).Order("valid_until DESC").Order("id DESC")
	if !showAll {
		queryBase = queryBase.Limit(limit).Offset(page * limit)
	}

	if err := queryBase.Find(&certs).Error; err != nil {
		a.l.Error("failed to get certificate list", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}
	if err := a.db.WithContext(rctx).Model(&models.Certificate{}).Count(&certsCount).Error; err != nil {
		a.l.Error("failed to count certificate", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resCerts := []CertInfoWithID{}
	for i := range certs {
		resCerts = append(resCerts, *certInfo(&certs[i], false))
	}

	return c.JSON(http.StatusOK, &CertListResponse{
		Limit:   &limit,
		PageMax: utils.P(a.calcMaxPage(certsCount, showAll, limit)),
		List:    &resCerts,
	})
}

func (a *App) CertInfoGet(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	var cert models.Certificate
	if err := a.db.WithContext(c.Request().Context()).First(&cert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get certificate", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, certInfo(&cert, true))
}

// CertInfoUpdate 只允许启用或禁用，证书本体不可修改
func (a *App) CertInfoUpdate(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	rctx := c.Request().Context()

	// 绑定请求体
	var req CertUpdateRequest
	if err = c.Bind(&req); err != nil {
		return a.er(c, http.StatusBadRequest)
	}

	var cert models.Certificate
	if err := a.db.WithContext(rctx).First(&cert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return a.er(c, http.StatusNotFound)
		}
		a.l.Error("failed to get certificate", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if req.Enabled != nil {
		if err := a.db.WithContext(rctx).Model(&cert).Update("enabled", *req.Enabled).Error; err != nil {
			a.l.Error("failed to update certificate", zap.Uint("id", id), zap.Error(err))
			return a.er(c, http.StatusInternalServerError)
		}
	}

	return c.JSON(http.StatusOK, certInfo(&cert, false))
}

func (a *App) CertDelete(c echo.Context, id uint) error {
	// 抓取 user 信息（认证）
	err, statusCode := a.authAdmin(c)
	if err != nil {
		a.l.Error("failed to auth", zap.Error(err))
		return a.er(c, statusCode)
	}

	if err := a.db.WithContext(c.Request().Context()).Delete(&models.Certificate{}, id).Error; err != nil {
		a.l.Error("failed to delete certificate", zap.Uint("id", id), zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.NoContent(http.StatusOK)
}
