package handlers

import (
	"context"
	"time"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/mailqueue"

	"github.com/thejerf/suture/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	cfg    *config.Config
	l      *zap.Logger
	db     *gorm.DB
	queue  *mailqueue.Queue
	sender Sender
}

func NewApp(cfg *config.Config, l *zap.Logger, db *gorm.DB, queue *mailqueue.Queue, sender Sender) *App {
	return &App{
		cfg:    cfg,
		l:      l,
		db:     db,
		queue:  queue,
		sender: sender,
	}
}

// Supervisor 组装 worker 的所有服务，出错的服务会被重启
func (a *App) Supervisor() *suture.Supervisor {
	sup := suture.New("worker", suture.Spec{
		EventHook: func(e suture.Event) {
			a.l.Warn("supervisor event", zap.String("event", e.String()))
		},
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		Timeout:          10 * time.Second,
	})

	sup.Add(NewMailSender(a.l, a.db, a.queue, a.sender))
	sup.Add(NewCleaner(a.l, a.db, a.cfg))
	return sup
}

// Serve 阻塞运行，直到 ctx 结束
func (a *App) Serve(ctx context.Context) error {
	a.l.Info("worker started",
		zap.Duration("cleanup_interval", a.cfg.Worker.CleanupInterval),
		zap.String("smtp_host", a.cfg.Mail.SMTPHost),
	)
	return a.Supervisor().Serve(ctx)
}
