package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// HealthCheck 检查数据库与 Redis 是否可用
func (a *App) HealthCheck(c echo.Context) error {
	rctx := c.Request().Context()

	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(rctx)
	}
	if err != nil {
		a.l.Error("database health check failed", zap.Error(err))
		return c.NoContent(http.StatusServiceUnavailable)
	}
	if err := a.rdb.Ping(rctx).Err(); err != nil {
		a.l.Error("redis health check failed", zap.Error(err))
		return c.NoContent(http.StatusServiceUnavailable)
	}

	return c.NoContent(http.StatusOK)
}
