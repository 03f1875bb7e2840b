package middlewares

import (
	"context"
	"errors"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/models"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RequestContext 是每个请求都需要、又要查询数据库的数据
type RequestContext struct {
	Menu []models.MenuEntry `json:"menu"`
}

func LoadRequestContext(ctx context.Context, db *gorm.DB, rdb *redis.Client, l *zap.Logger, languages []string) (*RequestContext, error) {
	// 查询缓存
	if cacheBytes, err := rdb.Get(ctx, constants.CacheKeyRequestContext).Bytes(); err != nil {
		if !errors.Is(err, redis.Nil) {
			l.Error("failed to query cache for request context", zap.Error(err))
		}
	} else {
		var cached RequestContext
		if err = json.Unmarshal(cacheBytes, &cached); err == nil {
			return &cached, nil
		}
		l.Error("failed to unmarshal request context", zap.ByteString("cacheBytes", cacheBytes), zap.Error(err))
		// 可能是无效的缓存，清理掉
		rdb.Del(ctx, constants.CacheKeyRequestContext)
	}

	// 查询数据库
	menu, err := models.LoadMenu(ctx, db, languages)
	if err != nil {
		return nil, err
	}
	rc := &RequestContext{Menu: menu}

	// 加入缓存，方便下一次查询
	if cacheBytes, err := json.Marshal(rc); err != nil {
		l.Error("failed to marshal request context", zap.Error(err))
	} else if err := rdb.Set(ctx, constants.CacheKeyRequestContext, cacheBytes, constants.CacheExpireRequestContext).Err(); err != nil {
		l.Error("failed to cache request context", zap.Error(err))
	}

	return rc, nil
}

// InvalidateRequestContext 在菜单或页面变化后调用
func InvalidateRequestContext(ctx context.Context, rdb *redis.Client) error {
	return rdb.Del(ctx, constants.CacheKeyRequestContext).Err()
}

func RequestContextMiddleware(db *gorm.DB, rdb *redis.Client, l *zap.Logger, languages []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc, err := LoadRequestContext(c.Request().Context(), db, rdb, l, languages)
			if err != nil {
				l.Error("failed to load request context", zap.Error(err))
				return err
			}
			c.Set(constants.ContextKeyRequestContext, rc)
			return next(c)
		}
	}
}

func GetRequestContext(c echo.Context) *RequestContext {
	rc, _ := c.Get(constants.ContextKeyRequestContext).(*RequestContext)
	if rc == nil {
		return &RequestContext{}
	}
	return rc
}
