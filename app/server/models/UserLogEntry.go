package models

import (
	"time"

	"gorm.io/gorm"
)

type UserLogEntry struct {
	gorm.Model

	UserID    uint           `gorm:"column:user_id;index"`
	AddressID *uint          `gorm:"column:address_id"`
	Message   string         `gorm:"column:message"`                 // 消息模板（翻译的 message id）
	Payload   map[string]any `gorm:"column:payload;serializer:json"` // 模板参数

	Address *Address `gorm:"foreignKey:AddressID"`
}

func (e *UserLogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.Payload == nil {
		e.Payload = map[string]any{}
	}
	return nil
}

// LogEntryExpired 返回创建时间早于 now - delta 的日志
func LogEntryExpired(now time.Time, delta time.Duration) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_log_entries.created_at < ?", now.Add(-delta))
	}
}
