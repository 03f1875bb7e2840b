package handlers

import (
	"context"
	"fmt"
	"time"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CleanupResult struct {
	Confirmations int64 // 过期的确认
	LogEntries    int64 // 过期的用户日志
	Users         int64 // 没有完成注册的用户
}

// Cleanup 删除过期数据。先删除过期的确认，这样没有完成注册的用户会在同一轮被删除。
func Cleanup(ctx context.Context, db *gorm.DB, cfg *config.Config, now time.Time) (*CleanupResult, error) {
	res := &CleanupResult{}
	db = db.WithContext(ctx)

	// 过期的确认
	tx := db.Unscoped().Scopes(models.ConfirmationExpired(now)).Delete(&models.Confirmation{})
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to delete expired confirmations: %w", tx.Error)
	}
	res.Confirmations = tx.RowsAffected

	// 过期的日志
	tx = db.Unscoped().Scopes(models.LogEntryExpired(now, cfg.Accounts.UserLogEntryExpires)).Delete(&models.UserLogEntry{})
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to delete expired log entries: %w", tx.Error)
	}
	res.LogEntries = tx.RowsAffected

	// 没有确认记录也没有完成注册的用户
	var userIDs []uint
	if err := db.Model(&models.User{}).
		Scopes(models.HasNoConfirmations).
		Where("users.confirmed IS NULL").
		Pluck("users.id", &userIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to list unconfirmed users: %w", err)
	}
	if len(userIDs) == 0 {
		return res, nil
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.GpgKey{}, &models.UserLogEntry{}, &models.CachedMessage{}} {
			if err := tx.Unscoped().Where("user_id IN ?", userIDs).Delete(model).Error; err != nil {
				return err
			}
		}
		del := tx.Unscoped().Where("id IN ?", userIDs).Delete(&models.User{})
		res.Users = del.RowsAffected
		return del.Error
	}); err != nil {
		return nil, fmt.Errorf("failed to delete unconfirmed users: %w", err)
	}

	return res, nil
}

// Cleaner 定时执行 Cleanup
type Cleaner struct {
	l        *zap.Logger
	db       *gorm.DB
	cfg      *config.Config
	interval time.Duration
	now      func() time.Time
}

func NewCleaner(l *zap.Logger, db *gorm.DB, cfg *config.Config) *Cleaner {
	return &Cleaner{
		l:        l.Named("cleanup"),
		db:       db,
		cfg:      cfg,
		interval: cfg.Worker.CleanupInterval,
		now:      time.Now,
	}
}

func (c *Cleaner) String() string {
	return "cleaner"
}

func (c *Cleaner) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// 启动时先执行一次
	c.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.run(ctx)
		}
	}
}

func (c *Cleaner) run(ctx context.Context) {
	res, err := Cleanup(ctx, c.db, c.cfg, c.now())
	if err != nil {
		if ctx.Err() == nil {
			c.l.Error("cleanup failed", zap.Error(err))
		}
		return
	}
	c.l.Info("cleanup finished",
		zap.Int64("confirmations", res.Confirmations),
		zap.Int64("log_entries", res.LogEntries),
		zap.Int64("users", res.Users),
	)
}
