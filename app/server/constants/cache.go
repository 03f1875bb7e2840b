package constants

import "time"

const (
	CacheKeyRequestContext = "hp:request_context"
	CacheKeyRateLimit      = "hp:rate:%s:%s" // activity, address
	CacheKeyDNSBL          = "hp:dnsbl:%s"   // address
	CacheKeyMailQueue      = "hp:mail:queue"
)

const (
	CacheExpireRequestContext = 5 * time.Minute
	CacheExpireRateLimit      = 24 * time.Hour
)
