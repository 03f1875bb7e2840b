package models

import (
	"time"

	"gorm.io/gorm"
)

type GpgKey struct {
	gorm.Model

	UserID      uint       `gorm:"column:user_id;index"`
	Fingerprint string     `gorm:"column:fingerprint;index"` // 大写十六进制，不含空格
	Key         string     `gorm:"column:armored"`           // ASCII armored 公钥，只提交指纹时为空
	Expires     *time.Time `gorm:"column:expires"`           // 公钥的过期时间， NULL 表示不过期
}

// GpgKeyValid 返回未过期的公钥。不过期的公钥也算有效。
func GpgKeyValid(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("gpg_keys.expires IS NULL OR gpg_keys.expires >= ?", now)
	}
}

func GpgKeyInvalid(now time.Time) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("gpg_keys.expires < ?", now)
	}
}
