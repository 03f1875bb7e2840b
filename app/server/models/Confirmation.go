package models

import (
	"time"

	"gorm.io/gorm"
)

type Confirmation struct {
	gorm.Model

	UserID    uint              `gorm:"column:user_id;index"`
	Key       string            `gorm:"column:confirmation_key;uniqueIndex"` // 发送给用户的确认密钥
	Purpose   string            `gorm:"column:purpose;index"`                // 用途，见 constants.Purpose*
	Language  string            `gorm:"column:language"`                     // 发送邮件时的语言
	Recipient string            `gorm:"column:recipient"`                    // 收件地址
	Expires   time.Time         `gorm:"column:expires;index"`                // 过期时间
	Payload   map[string]string `gorm:"column:payload;serializer:json"`      // 附加数据，例如新的邮箱地址
	AddressID *uint             `gorm:"column:address_id"`                   // 发起请求的地址

	User    *User    `gorm:"foreignKey:UserID"`
	Address *Address `gorm:"foreignKey:AddressID;constraint:OnDelete:RESTRICT"`
}

func (c *Confirmation) IsExpired(now time.Time) bool {
	return c.Expires.Before(now)
}

func ConfirmationPurpose(purpose string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("confirmations.purpose = ?", purpose)
	}
}

func ConfirmationValid(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("confirmations.expires >= ?", now)
	}
}

func ConfirmationExpired(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("confirmations.expires < ?", now)
	}
}
