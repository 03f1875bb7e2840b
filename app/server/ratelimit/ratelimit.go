// Package ratelimit 实现基于 Redis 有序集合的滑动窗口限流。
//
// 每个行为与来源地址对应一个有序集合，成员的分数为记录时的毫秒时间戳。
package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	rdb       *redis.Client
	rules     map[string][]config.RateLimitRule
	whitelist map[string]struct{}
	debug     bool
	now       func() time.Time
}

func New(rdb *redis.Client, guards *config.GuardsConfig, debug bool) *Limiter {
	whitelist := make(map[string]struct{}, len(guards.RateLimitWhitelist))
	for _, addr := range guards.RateLimitWhitelist {
		whitelist[addr] = struct{}{}
	}
	return &Limiter{
		rdb:       rdb,
		rules:     guards.RateLimit,
		whitelist: whitelist,
		debug:     debug,
		now:       time.Now,
	}
}

func key(activity, addr string) string {
	return fmt.Sprintf(constants.CacheKeyRateLimit, activity, addr)
}

func (l *Limiter) whitelisted(addr string) bool {
	_, ok := l.whitelist[addr]
	return ok
}

// Check 返回该地址是否还允许执行此行为。
// 任意一条规则的窗口内记录数超过上限即拒绝，调试模式下始终允许。
func (l *Limiter) Check(ctx context.Context, activity, addr string) (bool, error) {
	if l.whitelisted(addr) || l.debug {
		return true, nil
	}

	rules := l.rules[activity]
	if len(rules) == 0 {
		return true, nil
	}

	now := l.now()
	k := key(activity, addr)
	for _, rule := range rules {
		offset := now.Add(-rule.Window).UnixMilli()
		// 只统计严格晚于窗口起点的记录
		count, err := l.rdb.ZCount(ctx, k, "("+strconv.FormatInt(offset, 10), "+inf").Result()
		if err != nil {
			return false, fmt.Errorf("failed to count rate entries: %w", err)
		}
		if count > int64(rule.Limit) {
			return false, nil
		}
	}
	return true, nil
}

// Record 记录一次行为，同时丢弃比最长窗口更旧的记录
func (l *Limiter) Record(ctx context.Context, activity, addr string) error {
	if l.whitelisted(addr) {
		return nil
	}

	now := l.now()
	var longest time.Duration
	for _, rule := range l.rules[activity] {
		if rule.Window > longest {
			longest = rule.Window
		}
	}

	k := key(activity, addr)
	pipe := l.rdb.TxPipeline()
	pipe.ZAdd(ctx, k, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	if longest > 0 {
		pipe.ZRemRangeByScore(ctx, k, "-inf", "("+strconv.FormatInt(now.Add(-longest).UnixMilli(), 10))
	}
	pipe.Expire(ctx, k, constants.CacheExpireRateLimit)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record rate entry: %w", err)
	}

	metrics.RecordRateLimit(activity)
	return nil
}
