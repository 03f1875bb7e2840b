package middlewares

import (
	"xmpp-homepage/app/server/models"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CachedMessages 把后台任务留给用户的消息加入本次请求，然后删除。
// 需要在 Session 、 Language 与 Messages 之后使用。
func CachedMessages(db *gorm.DB, l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := GetUser(c)
			if user == nil {
				return next(c)
			}

			rctx := c.Request().Context()
			if err := db.WithContext(rctx).Transaction(func(tx *gorm.DB) error {
				var stored []models.CachedMessage
				if err := tx.Where("user_id = ?", user.ID).Order("id ASC").Find(&stored).Error; err != nil {
					return err
				}
				if len(stored) == 0 {
					return nil
				}
				for _, msg := range stored {
					AddMessage(c, msg.Level, T(c, msg.Message, msg.Payload))
				}
				return tx.Unscoped().Where("user_id = ?", user.ID).Delete(&models.CachedMessage{}).Error
			}); err != nil {
				l.Error("failed to load cached messages", zap.Uint("user", user.ID), zap.Error(err))
			}

			return next(c)
		}
	}
}
