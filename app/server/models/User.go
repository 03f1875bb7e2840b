package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	// 基础信息
	Username        string     `gorm:"column:username;uniqueIndex"` // 完整的 JID （node@domain），全局唯一，小写
	Email           string     `gorm:"column:email"`                // 邮箱地址，用于确认与找回
	Confirmed       *time.Time `gorm:"column:confirmed"`            // 完成注册的时间， NULL 表示尚未确认
	Blocked         bool       `gorm:"column:blocked;index"`        // 被封禁的用户不能登录
	IsAdmin         bool       `gorm:"column:is_admin"`             // 是否为管理员：可以使用管理接口
	LastActivity    *time.Time `gorm:"column:last_activity"`        // 最后一次在网站上的活动
	DefaultLanguage string     `gorm:"column:default_language"`     // 发送邮件时使用的语言

	// 关联
	Confirmations []Confirmation `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	GpgKeys       []GpgKey       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	LogEntries    []UserLogEntry `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	// 只在 WithConfirmationCount 查询时填充
	ConfirmationCount int64 `gorm:"->;-:migration;column:confirmation_count"`
}

// Node 返回 @ 之前的部分
func (u *User) Node() string {
	node, _, _ := strings.Cut(u.Username, "@")
	return node
}

// Domain 返回 @ 之后的部分
func (u *User) Domain() string {
	_, domain, _ := strings.Cut(u.Username, "@")
	return domain
}

func (u *User) IsConfirmed() bool {
	return u.Confirmed != nil
}

// WithConfirmationCount 附加每个用户的确认记录数量
func WithConfirmationCount(db *gorm.DB) *gorm.DB {
	return db.
		Select("users.*, (SELECT COUNT(DISTINCT confirmations.id) FROM confirmations WHERE confirmations.user_id = users.id AND confirmations.deleted_at IS NULL) AS confirmation_count")
}

func HasConfirmations(db *gorm.DB) *gorm.DB {
	return db.Where("EXISTS (SELECT 1 FROM confirmations WHERE confirmations.user_id = users.id AND confirmations.deleted_at IS NULL)")
}

func HasNoConfirmations(db *gorm.DB) *gorm.DB {
	return db.Where("NOT EXISTS (SELECT 1 FROM confirmations WHERE confirmations.user_id = users.id AND confirmations.deleted_at IS NULL)")
}

func Blocked(db *gorm.DB) *gorm.DB {
	return db.Where("users.blocked = ?", true)
}

func NotBlocked(db *gorm.DB) *gorm.DB {
	return db.Where("users.blocked = ?", false)
}

// OnHost 过滤属于指定 XMPP 域名的用户
func OnHost(hostname string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.username LIKE ?", "%@"+hostname)
	}
}
