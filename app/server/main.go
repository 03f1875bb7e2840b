package main

import (
	"fmt"
	"log"
	"net/http"
	"time"
	"xmpp-homepage/app/server/apidocs"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/dnsbl"
	"xmpp-homepage/app/server/handlers"
	"xmpp-homepage/app/server/inits"
	"xmpp-homepage/app/server/jwt"
	"xmpp-homepage/app/server/mailqueue"
	"xmpp-homepage/app/server/middlewares"
	"xmpp-homepage/app/server/ratelimit"
	"xmpp-homepage/app/server/xmpp"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		log.Fatal(fmt.Errorf("error loading config: %w", err))
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.System.IsProd)
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}

	// 切换日志系统
	l.Debug("logger initialized")

	// 初始化数据库连接
	db, err := inits.DB(cfg.System.DBConnectionString)
	if err != nil {
		l.Fatal("error initializing DB connection", zap.Error(err))
	}

	// 初始化 redis 连接
	rdb, err := inits.Redis(cfg.System.RedisConnectionString)
	if err != nil {
		l.Fatal("error initializing Redis connection", zap.Error(err))
	}

	// 初始化 JWT
	j, err := jwt.New(cfg.Security.SignatureSecretKey)
	if err != nil {
		l.Fatal("error initializing JWT", zap.Error(err))
	}

	// 初始化翻译与模板
	t, renderer, err := inits.I18n(cfg)
	if err != nil {
		l.Fatal("error initializing templates", zap.Error(err))
	}

	// 初始化 XMPP 后端
	backend, err := xmpp.New(l, &cfg.XMPP)
	if err != nil {
		l.Fatal("error initializing XMPP backend", zap.Error(err))
	}

	// 准备访问检查
	blacklist, _ := cfg.Guards.BlacklistPrefixes() // Validate 已经检查过
	limiter := ratelimit.New(rdb, &cfg.Guards, cfg.System.Debug)
	checker := dnsbl.New(l, rdb, nil, cfg.Guards.DNSBL, cfg.Guards.DNSBLCacheExpire)
	guards := middlewares.NewGuards(l, blacklist, checker, limiter, cfg.System.Debug)

	// 准备 handler app
	handlerApp := handlers.NewApp(l, db, rdb, j, cfg, t, limiter, guards, backend, mailqueue.New(rdb))

	// 准备 echo 服务
	e := echo.New()
	e.HideBanner = true
	e.Debug = cfg.System.Debug
	e.Renderer = renderer
	e.HTTPErrorHandler = handlerApp.HTTPErrorHandler
	if cfg.System.BehindProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogHost:    true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			l.Info("request",
				zap.String("host", v.Host),
				zap.String("URI", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)

			return nil
		},
	}))
	e.Use(middleware.Recover())

	// 绑定 echo 服务
	handlerApp.RegisterSite(e, middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "form:csrf_token,header:X-CSRF-Token",
		ContextKey:     constants.ContextKeyCSRF,
		CookieName:     constants.CSRFCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSecure:   cfg.System.IsProd,
		CookieSameSite: http.SameSiteLaxMode,
		CookieMaxAge:   int((365 * 24 * time.Hour).Seconds()),
	}))
	handlerApp.RegisterAdmin(e)
	e.GET("/healthz", handlerApp.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if cfg.System.StaticDir != "" {
		e.Static("/static", cfg.System.StaticDir)
	}

	// 添加 API 文档
	if !cfg.System.IsProd {
		if swgJson, err := apidocs.AdminSpec(); err != nil {
			l.Error("error initializing admin swagger", zap.Error(err))
		} else {
			e.Pre(apidocs.Doc("/api/admin", swgJson, apidocs.WithTitle("XMPP homepage admin API")))
		}
	}

	// 启动 echo 服务
	if err := e.Start(cfg.System.Listen); err != nil {
		l.Fatal("shutting down the server", zap.Error(err))
	}
}
