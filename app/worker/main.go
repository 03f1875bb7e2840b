package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"xmpp-homepage/app/server/inits"
	"xmpp-homepage/app/server/mailqueue"
	"xmpp-homepage/app/worker/handlers"

	"go.uber.org/zap"
)

func main() {
	// 初始化配置，与网站共用同一份
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	l = l.Named("worker")
	l.Debug("logger initialized")

	// 初始化数据库
	db, err := inits.DB(cfg.System.DBConnectionString)
	if err != nil {
		l.Fatal("failed to init database", zap.Error(err))
	}

	// 初始化 Redis
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("failed to init redis", zap.Error(err))
	}
	defer rdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动邮件发送与定时清理
	handlerApp := handlers.NewApp(cfg, l, db, mailqueue.New(rdb), handlers.NewSMTPSender(&cfg.Mail))
	if err = handlerApp.Serve(ctx); err != nil && ctx.Err() == nil {
		l.Fatal("worker stopped", zap.Error(err))
	}
	l.Info("worker stopped")
}
