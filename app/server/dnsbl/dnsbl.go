// Package dnsbl 查询 DNS 黑名单，结果缓存在 Redis 中。
package dnsbl

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"strings"
	"time"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/metrics"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Resolver 是 net.Resolver 中用到的部分
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

type Checker struct {
	l        *zap.Logger
	rdb      *redis.Client
	resolver Resolver
	zones    []string
	expire   time.Duration
}

func New(l *zap.Logger, rdb *redis.Client, resolver Resolver, zones []string, expire time.Duration) *Checker {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Checker{
		l:        l,
		rdb:      rdb,
		resolver: resolver,
		zones:    zones,
		expire:   expire,
	}
}

// Reverse 返回地址的反向查询形式： IPv4 按字节倒序， IPv6 按半字节倒序
func Reverse(addr netip.Addr) string {
	addr = addr.Unmap()
	if addr.Is4() {
		b := addr.As4()
		return fmt.Sprintf("%d.%d.%d.%d", b[3], b[2], b[1], b[0])
	}

	const hexDigits = "0123456789abcdef"
	b := addr.As16()
	parts := make([]string, 0, 32)
	for i := len(b) - 1; i >= 0; i-- {
		parts = append(parts, string(hexDigits[b[i]&0x0f]), string(hexDigits[b[i]>>4]))
	}
	return strings.Join(parts, ".")
}

// Check 返回把该地址列入黑名单的区域，没有则为空
func (c *Checker) Check(ctx context.Context, address string) ([]string, error) {
	addr, err := netip.ParseAddr(address)
	if err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", address, err)
	}
	if len(c.zones) == 0 {
		return nil, nil
	}

	cacheKey := fmt.Sprintf(constants.CacheKeyDNSBL, addr.String())
	if cached, err := c.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var blocks []string
		if err := json.Unmarshal(cached, &blocks); err == nil {
			metrics.RecordDNSBLLookup(true)
			return blocks, nil
		}
		c.l.Warn("failed to decode cached dnsbl result", zap.String("address", addr.String()))
	} else if !errors.Is(err, redis.Nil) {
		c.l.Error("failed to get cached dnsbl result", zap.Error(err))
	}
	metrics.RecordDNSBLLookup(false)

	reversed := Reverse(addr)
	blocks := []string{}
	for _, zone := range c.zones {
		host := reversed + "." + strings.TrimSuffix(zone, ".")
		ips, err := c.resolver.LookupHost(ctx, host)
		if err != nil {
			var dnsErr *net.DNSError
			if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// 单个区域查询失败不影响其他区域
			c.l.Warn("dnsbl lookup failed", zap.String("zone", zone), zap.Error(err))
			continue
		}
		if len(ips) > 0 {
			blocks = append(blocks, zone)
		}
	}

	if data, err := json.Marshal(blocks); err == nil {
		if err := c.rdb.Set(ctx, cacheKey, data, c.expire).Err(); err != nil {
			c.l.Error("failed to cache dnsbl result", zap.Error(err))
		}
	}

	return blocks, nil
}
