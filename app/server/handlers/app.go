package handlers

import (
	"time"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/i18n"
	"xmpp-homepage/app/server/jwt"
	"xmpp-homepage/app/server/mailqueue"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/ratelimit"
	"xmpp-homepage/app/server/xmpp"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	l       *zap.Logger         // 日志
	db      *gorm.DB            // 数据库
	rdb     *redis.Client       // Redis
	jwt     *jwt.JWT            // JWT ，用于会话与管理接口
	cfg     *config.Config      // 配置
	i18n    *i18n.I18n          // 翻译
	limiter *ratelimit.Limiter  // 限流
	guards  *middlewares.Guards // 黑名单、 DNSBL 与限流检查
	backend xmpp.Backend        // XMPP 账户后端
	mails   *mailqueue.Queue    // 待发送的邮件
	now     func() time.Time
}

func NewApp(
	l *zap.Logger,
	db *gorm.DB,
	rdb *redis.Client,
	j *jwt.JWT,
	cfg *config.Config,
	t *i18n.I18n,
	limiter *ratelimit.Limiter,
	guards *middlewares.Guards,
	backend xmpp.Backend,
	mails *mailqueue.Queue,
) *App {
	return &App{
		l:       l,
		db:      db,
		rdb:     rdb,
		jwt:     j,
		cfg:     cfg,
		i18n:    t,
		limiter: limiter,
		guards:  guards,
		backend: backend,
		mails:   mails,
		now:     time.Now,
	}
}
