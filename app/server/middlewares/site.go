package middlewares

import (
	"net"
	"regexp"
	"strings"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/constants"

	"github.com/labstack/echo/v4"
)

var hostRe = regexp.MustCompile(`^([a-z0-9.-]+|\[[a-f0-9]*:[a-f0-9.:]+\])(:\d+)?$`)

// SplitDomainPort 把 Host 头拆分成域名与端口，域名转为小写并去掉末尾的点。
// 无效的 Host 返回空域名。
func SplitDomainPort(host string) (string, string) {
	host = strings.ToLower(host)
	m := hostRe.FindStringSubmatch(host)
	if m == nil {
		return "", ""
	}
	domain, port := m[1], strings.TrimPrefix(m[2], ":")
	if strings.HasPrefix(domain, "[") {
		return domain, port
	}
	return strings.TrimSuffix(domain, "."), port
}

// ValidateHost 检查域名是否匹配规则列表中的任意一个：
// * 匹配所有域名， .example.com 匹配 example.com 及其子域名，其他规则要求完全一致。
func ValidateHost(domain string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.ToLower(pattern)
		if pattern == "*" {
			return true
		}
		if strings.HasPrefix(pattern, ".") {
			if domain == pattern[1:] || strings.HasSuffix(domain, pattern) {
				return true
			}
			continue
		}
		if pattern != "" && domain == pattern {
			return true
		}
	}
	return false
}

// MatchSite 依次检查所有主机，后面匹配的覆盖前面的，没有匹配时使用默认主机
func MatchSite(cfg *config.Config, host string) *config.HostConfig {
	domain, _ := SplitDomainPort(host)
	site := cfg.DefaultHostConfig()
	for i := range cfg.Hosts {
		if ValidateHost(domain, cfg.Hosts[i].AllowedHosts) {
			site = &cfg.Hosts[i]
		}
	}
	return site
}

func Site(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(constants.ContextKeySite, MatchSite(cfg, c.Request().Host))
			return next(c)
		}
	}
}

func GetSite(c echo.Context) *config.HostConfig {
	site, _ := c.Get(constants.ContextKeySite).(*config.HostConfig)
	return site
}

// RemoteAddr 返回客户端地址，不含端口
func RemoteAddr(c echo.Context) string {
	ip := c.RealIP()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}
