package handlers

import (
	"net/http"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const recentLogEntries = 10

func (a *App) AccountDetailView(c echo.Context) error {
	rctx := c.Request().Context()
	user := middlewares.GetUser(c)

	now := a.now()

	// 过期的公钥单独列出，用户可以删除
	var keys, expired []models.GpgKey
	if err := a.db.WithContext(rctx).Scopes(models.GpgKeyValid(now)).
		Where("user_id = ?", user.ID).Order("id ASC").Find(&keys).Error; err != nil {
		a.l.Error("failed to get gpg keys", zap.Uint("user", user.ID), zap.Error(err))
		return err
	}
	if err := a.db.WithContext(rctx).Scopes(models.GpgKeyInvalid(now)).
		Where("user_id = ?", user.ID).Order("id ASC").Find(&expired).Error; err != nil {
		a.l.Error("failed to get expired gpg keys", zap.Uint("user", user.ID), zap.Error(err))
		return err
	}

	var entries []models.UserLogEntry
	if err := a.db.WithContext(rctx).
		Preload("Address").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(recentLogEntries).
		Find(&entries).Error; err != nil {
		a.l.Error("failed to get log entries", zap.Uint("user", user.ID), zap.Error(err))
		return err
	}

	return c.Render(http.StatusOK, "account/detail.html", map[string]any{
		"GpgKeys":        keys,
		"ExpiredGpgKeys": expired,
		"LogEntries":     entries,
		"Now":            now,
	})
}

func (a *App) AccountLogView(c echo.Context) error {
	rctx := c.Request().Context()
	user := middlewares.GetUser(c)
	perPage := a.cfg.Accounts.LogEntriesPerPage
	if perPage <= 0 {
		perPage = 20
	}

	page, err := parsePage(c)
	if err != nil {
		return err
	}

	var count int64
	if err := a.db.WithContext(rctx).Model(&models.UserLogEntry{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		a.l.Error("failed to count log entries", zap.Uint("user", user.ID), zap.Error(err))
		return err
	}
	pageMax := maxPage(count, perPage)
	if page > pageMax {
		return notFound()
	}

	var entries []models.UserLogEntry
	if err := a.db.WithContext(rctx).
		Preload("Address").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&entries).Error; err != nil {
		a.l.Error("failed to get log entries", zap.Uint("user", user.ID), zap.Error(err))
		return err
	}

	return c.Render(http.StatusOK, "account/log.html", map[string]any{
		"LogEntries": entries,
		"Page":       page,
		"PageMax":    pageMax,
		"HasPrev":    page > 1,
		"HasNext":    page < pageMax,
	})
}
