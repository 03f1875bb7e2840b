// Package metrics 定义站点的 Prometheus 指标，通过 /metrics 暴露。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 守卫拦截结果
const (
	GuardBlacklist = "blacklist"
	GuardDNSBL     = "dnsbl"
	GuardRateLimit = "ratelimit"
)

var (
	// GuardBlockedTotal 统计被各个守卫拦截的请求
	GuardBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hp_guard_blocked_total",
			Help: "Total number of requests blocked by a guard",
		},
		[]string{"guard"},
	)

	// RateLimitRecordedTotal 统计记录到限流器的行为
	RateLimitRecordedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hp_ratelimit_recorded_total",
			Help: "Total number of activities recorded by the rate limiter",
		},
		[]string{"activity"},
	)

	DNSBLLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hp_dnsbl_lookups_total",
			Help: "Total number of DNSBL lookups by cache result",
		},
		[]string{"cache"},
	)

	// XMPPBackendRequestsTotal 统计 XMPP 后端调用
	XMPPBackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hp_xmpp_backend_requests_total",
			Help: "Total number of XMPP backend requests",
		},
		[]string{"operation", "result"},
	)

	MailsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hp_mails_total",
			Help: "Total number of mails by state",
		},
		[]string{"state"},
	)
)

func RecordGuardBlocked(guard string) {
	GuardBlockedTotal.WithLabelValues(guard).Inc()
}

func RecordRateLimit(activity string) {
	RateLimitRecordedTotal.WithLabelValues(activity).Inc()
}

func RecordDNSBLLookup(cached bool) {
	if cached {
		DNSBLLookupsTotal.WithLabelValues("hit").Inc()
	} else {
		DNSBLLookupsTotal.WithLabelValues("miss").Inc()
	}
}

func RecordBackendRequest(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	XMPPBackendRequestsTotal.WithLabelValues(operation, result).Inc()
}

// RecordMail state 为 queued 、 sent 或 failed
func RecordMail(state string) {
	MailsTotal.WithLabelValues(state).Inc()
}
