package middlewares

import (
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/dnsbl"
	"xmpp-homepage/app/server/metrics"
	"xmpp-homepage/app/server/ratelimit"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	TemplateBlacklist = "core/blacklist.html"
	TemplateDNSBL     = "core/dnsbl.html"
	TemplateRate      = "core/rate.html"
)

// Guards 拦截来自黑名单网段、被 DNSBL 列出或超出频率限制的请求
type Guards struct {
	l         *zap.Logger
	blacklist []netip.Prefix
	dnsbl     *dnsbl.Checker
	limiter   *ratelimit.Limiter
	debug     bool
}

func NewGuards(l *zap.Logger, blacklist []netip.Prefix, checker *dnsbl.Checker, limiter *ratelimit.Limiter, debug bool) *Guards {
	return &Guards{
		l:         l,
		blacklist: blacklist,
		dnsbl:     checker,
		limiter:   limiter,
		debug:     debug,
	}
}

// overrideAddr 在调试模式下允许用查询参数模拟来源地址
func (g *Guards) overrideAddr(c echo.Context, param string) string {
	if g.debug {
		if addr := c.QueryParam(param); addr != "" {
			if _, err := netip.ParseAddr(addr); err == nil {
				return addr
			}
		}
	}
	return RemoteAddr(c)
}

func (g *Guards) Blacklisted(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, network := range g.blacklist {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func (g *Guards) Blacklist() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if g.Blacklisted(g.overrideAddr(c, "blacklist")) {
				metrics.RecordGuardBlocked(metrics.GuardBlacklist)
				return c.Render(http.StatusForbidden, TemplateBlacklist, map[string]any{})
			}
			return next(c)
		}
	}
}

func (g *Guards) DNSBL() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			addr := g.overrideAddr(c, "dnsbl")
			blocks, err := g.dnsbl.Check(c.Request().Context(), addr)
			if err != nil {
				// 查询失败时放行
				g.l.Error("failed to check dnsbl", zap.String("address", addr), zap.Error(err))
				return next(c)
			}
			if len(blocks) > 0 {
				metrics.RecordGuardBlocked(metrics.GuardDNSBL)
				return c.Render(http.StatusForbidden, TemplateDNSBL, map[string]any{
					"Blocks": blocks,
				})
			}
			return next(c)
		}
	}
}

// RateLimit 只做检查，成功的操作需要由 handler 调用 Limiter.Record 记录
func (g *Guards) RateLimit(activity string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, err := g.limiter.Check(c.Request().Context(), activity, RemoteAddr(c))
			if err != nil {
				g.l.Error("failed to check rate limit", zap.String("activity", activity), zap.Error(err))
				return err
			}
			if !allowed {
				metrics.RecordGuardBlocked(metrics.GuardRateLimit)
				return c.Render(http.StatusTooManyRequests, TemplateRate, map[string]any{})
			}
			return next(c)
		}
	}
}

// AnonymousRequired 已登录的用户会被送回账户页面
func AnonymousRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetUser(c) != nil {
				return Redirect(c, URL(c, constants.RouteAccountDetail))
			}
			return next(c)
		}
	}
}

// LoginRequired 匿名用户会被送到登录页面，登录后回到当前页面
func LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if GetUser(c) == nil {
				login := URL(c, constants.RouteLogin) + "?next=" + url.QueryEscape(c.Request().URL.RequestURI())
				return Redirect(c, login)
			}
			return next(c)
		}
	}
}

// SafeRedirectURL 只允许站内地址或指向当前主机的地址，其他情况返回 fallback
func SafeRedirectURL(target, host, fallback string) string {
	target = strings.TrimSpace(target)
	if target == "" || strings.ContainsAny(target, "\\\r\n\t") {
		return fallback
	}
	// 浏览器把 //evil.com 与 ///evil.com 都当作协议相对地址
	if strings.HasPrefix(target, "//") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil {
		return fallback
	}
	if u.Scheme == "" && u.Host == "" {
		if !strings.HasPrefix(u.Path, "/") {
			return fallback
		}
		return target
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fallback
	}
	if !strings.EqualFold(u.Host, host) {
		return fallback
	}
	return target
}
