// Package xmpp 管理 XMPP 服务器上的账户。
package xmpp

import (
	"context"
	"errors"
	"fmt"
	"xmpp-homepage/app/server/config"

	"go.uber.org/zap"
)

// ErrUserExists 表示注册的用户名已被占用，这不是后端故障
var ErrUserExists = errors.New("user already exists")

// Backend 是 XMPP 服务器账户操作的抽象
type Backend interface {
	UserExists(ctx context.Context, node, domain string) (bool, error)
	CreateUser(ctx context.Context, node, domain, password, email string) error
	CheckPassword(ctx context.Context, node, domain, password string) (bool, error)
	SetPassword(ctx context.Context, node, domain, password string) error
	RemoveUser(ctx context.Context, node, domain string) error
}

// BackendError 包装后端的故障，网站会以 503 页面响应
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("xmpp backend %s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// New 按配置创建后端
func New(l *zap.Logger, cfg *config.XMPPConfig) (Backend, error) {
	switch cfg.Backend {
	case "dummy":
		return NewDummy(), nil
	case "ejabberd":
		return NewEjabberd(l, cfg.EjabberdURL, cfg.EjabberdToken, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown xmpp backend %q", cfg.Backend)
	}
}
