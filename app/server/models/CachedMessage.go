package models

import "gorm.io/gorm"

// 消息级别，与页面上的 alert 样式对应
const (
	MessageLevelInfo    = 20
	MessageLevelSuccess = 25
	MessageLevelWarning = 30
	MessageLevelError   = 40
)

// CachedMessage 保存后台任务产生的消息，在用户下一次请求时展示
type CachedMessage struct {
	gorm.Model

	UserID  uint           `gorm:"column:user_id;index"`
	Level   int            `gorm:"column:level"`
	Message string         `gorm:"column:message"`
	Payload map[string]any `gorm:"column:payload;serializer:json"`
}
