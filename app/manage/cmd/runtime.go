package cmd

import (
	"fmt"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/dnsbl"
	"xmpp-homepage/app/server/inits"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Runtime 按需初始化命令用到的依赖，只打开真正需要的连接
type Runtime struct {
	cfg      *config.Config
	l        *zap.Logger
	db       *gorm.DB
	rdb      *redis.Client
	resolver dnsbl.Resolver

	loadConfig func() (*config.Config, error)
	openDB     func(conn string) (*gorm.DB, error)
	openRedis  func(conn string) (*redis.Client, error)
}

func NewRuntime() *Runtime {
	return &Runtime{
		loadConfig: inits.Config,
		openDB:     inits.DB,
		openRedis:  inits.Redis,
	}
}

func (r *Runtime) Config() (*config.Config, error) {
	if r.cfg == nil {
		cfg, err := r.loadConfig()
		if err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
		r.cfg = cfg
	}
	return r.cfg, nil
}

func (r *Runtime) Logger() (*zap.Logger, error) {
	if r.l == nil {
		cfg, err := r.Config()
		if err != nil {
			return nil, err
		}
		l, err := inits.Logger(!cfg.System.IsProd)
		if err != nil {
			return nil, err
		}
		r.l = l.Named("manage")
	}
	return r.l, nil
}

func (r *Runtime) DB() (*gorm.DB, error) {
	if r.db == nil {
		cfg, err := r.Config()
		if err != nil {
			return nil, err
		}
		db, err := r.openDB(cfg.System.DBConnectionString)
		if err != nil {
			return nil, err
		}
		r.db = db
	}
	return r.db, nil
}

func (r *Runtime) Redis() (*redis.Client, error) {
	if r.rdb == nil {
		cfg, err := r.Config()
		if err != nil {
			return nil, err
		}
		rdb, err := r.openRedis(cfg.System.RedisConnectionString)
		if err != nil {
			return nil, err
		}
		r.rdb = rdb
	}
	return r.rdb, nil
}

// Close 关闭已经打开的连接
func (r *Runtime) Close() {
	if r.rdb != nil {
		_ = r.rdb.Close()
	}
	if r.db != nil {
		if sqlDB, err := r.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if r.l != nil {
		_ = r.l.Sync()
	}
}
