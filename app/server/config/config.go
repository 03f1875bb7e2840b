package config

import (
	"fmt"
	"net/netip"
	"time"
)

type Config struct {
	System struct {
		IsProd                bool   `koanf:"is_prod"`                 // 是否为生产环境
		Debug                 bool   `koanf:"debug"`                   // 调试模式：关闭限流，允许通过参数模拟来源地址，添加安全响应头
		Listen                string `koanf:"listen"`                  // 监听地址
		DBConnectionString    string `koanf:"db_connection_string"`    // Postgres 数据库的连接字符串
		RedisConnectionString string `koanf:"redis_connection_string"` // Redis 数据库的连接字符串
		BehindProxy           bool   `koanf:"behind_proxy"`            // 是否信任 X-Forwarded-For 中的客户端地址
		StaticDir             string `koanf:"static_dir"`              // 静态文件目录，为空时不提供
	} `koanf:"system"`
	Security struct {
		SignatureSecretKey string        `koanf:"signature_secret_key"` // 签名密钥，用于产生会话与管理接口的 JWT ，更新会导致旧有会话失效
		SessionDuration    time.Duration `koanf:"session_duration"`     // 网站登录会话的有效期
		AdminTokenDuration time.Duration `koanf:"admin_token_duration"` // 管理接口令牌的有效期
	} `koanf:"security"`

	Hosts       []HostConfig `koanf:"hosts"`        // 按顺序匹配的虚拟主机
	DefaultHost string       `koanf:"default_host"` // 没有匹配时使用的主机名

	Languages         []string `koanf:"languages"`           // 支持的语言，第一个为默认语言
	UsernameMinLength int      `koanf:"username_min_length"` // 用户名（@ 之前的部分）最短长度
	UsernameMaxLength int      `koanf:"username_max_length"` // 用户名最长长度

	Guards   GuardsConfig   `koanf:"guards"`
	Accounts AccountsConfig `koanf:"accounts"`
	Mail     MailConfig     `koanf:"mail"`
	XMPP     XMPPConfig     `koanf:"xmpp"`
	Worker   WorkerConfig   `koanf:"worker"`
}

type HostConfig struct {
	Name           string   `koanf:"name"`             // 配置内的标识
	Domain         string   `koanf:"domain"`           // XMPP 域名（用户名 @ 之后的部分）
	Brand          string   `koanf:"brand"`            // 页面上显示的名称
	AllowedHosts   []string `koanf:"allowed_hosts"`    // 对应的 HTTP Host 规则，支持 * 与 .example.com
	ContactAddress string   `koanf:"contact_address"`  // 联系表单的收件地址
	Registration   bool     `koanf:"registration"`     // 是否开放注册
	BoshServiceURL string   `koanf:"bosh_service_url"` // 网页聊天使用的 BOSH 地址
}

type RateLimitRule struct {
	Window time.Duration `koanf:"window"` // 统计窗口
	Limit  int           `koanf:"limit"`  // 窗口内允许的次数
}

type GuardsConfig struct {
	SpamBlacklist      []string                   `koanf:"spam_blacklist"`      // 禁止访问的网段（CIDR）
	RateLimitWhitelist []string                   `koanf:"ratelimit_whitelist"` // 不受限流影响的地址
	RateLimit          map[string][]RateLimitRule `koanf:"ratelimit"`           // 各个行为的限流规则
	DNSBL              []string                   `koanf:"dnsbl"`               // DNSBL 区域列表
	DNSBLCacheExpire   time.Duration              `koanf:"dnsbl_cache_expire"`  // DNSBL 查询结果缓存时间
}

type AccountsConfig struct {
	ConfirmationExpires time.Duration `koanf:"confirmation_expires"`  // 确认链接的有效期
	UserLogEntryExpires time.Duration `koanf:"user_logentry_expires"` // 用户日志的保留时间
	LogEntriesPerPage   int           `koanf:"log_entries_per_page"`  // 用户日志每页条数
}

type MailConfig struct {
	From         string `koanf:"from"`
	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
}

type XMPPConfig struct {
	Backend       string        `koanf:"backend"`        // dummy 或 ejabberd
	EjabberdURL   string        `koanf:"ejabberd_url"`   // mod_http_api 的地址，例如 http://localhost:5280/api
	EjabberdToken string        `koanf:"ejabberd_token"` // OAuth token
	Timeout       time.Duration `koanf:"timeout"`
}

type WorkerConfig struct {
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

func (c *Config) Host(name string) (*HostConfig, bool) {
	for i := range c.Hosts {
		if c.Hosts[i].Name == name {
			return &c.Hosts[i], true
		}
	}
	return nil, false
}

// DefaultHostConfig 返回 default_host 指向的主机，Validate 保证它存在。
func (c *Config) DefaultHostConfig() *HostConfig {
	h, _ := c.Host(c.DefaultHost)
	return h
}

// HostByDomain 按 XMPP 域名查找主机。
func (c *Config) HostByDomain(domain string) (*HostConfig, bool) {
	for i := range c.Hosts {
		if c.Hosts[i].Domain == domain {
			return &c.Hosts[i], true
		}
	}
	return nil, false
}

func (c *Config) DefaultLanguage() string {
	if len(c.Languages) == 0 {
		return "en"
	}
	return c.Languages[0]
}

func (c *Config) RateLimitRules(activity string) []RateLimitRule {
	return c.Guards.RateLimit[activity]
}

// BlacklistPrefixes 解析黑名单网段，单个地址视为 /32 或 /128 。
func (g *GuardsConfig) BlacklistPrefixes() ([]netip.Prefix, error) {
	var prefixes []netip.Prefix
	for _, s := range g.SpamBlacklist {
		if p, err := netip.ParsePrefix(s); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("invalid blacklist entry %q: %w", s, err)
		}
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

func (c *Config) Validate() error {
	if c.System.DBConnectionString == "" {
		return fmt.Errorf("DB_CONN environment variable not set")
	}
	if c.System.RedisConnectionString == "" {
		return fmt.Errorf("REDIS_CONN environment variable not set")
	}
	if c.Security.SignatureSecretKey == "" {
		return fmt.Errorf("SIGNATURE_SECRET_KEY environment variable not set")
	}
	if len(c.Hosts) == 0 {
		return fmt.Errorf("no hosts configured")
	}
	if _, ok := c.Host(c.DefaultHost); !ok {
		return fmt.Errorf("default host %q is not configured", c.DefaultHost)
	}
	if len(c.Languages) == 0 {
		return fmt.Errorf("no languages configured")
	}
	if c.UsernameMinLength < 1 || c.UsernameMaxLength < c.UsernameMinLength {
		return fmt.Errorf("invalid username length bounds %d-%d", c.UsernameMinLength, c.UsernameMaxLength)
	}
	if _, err := c.Guards.BlacklistPrefixes(); err != nil {
		return err
	}
	for activity, rules := range c.Guards.RateLimit {
		for _, rule := range rules {
			if rule.Window <= 0 || rule.Limit < 0 {
				return fmt.Errorf("invalid ratelimit rule for %q", activity)
			}
		}
	}
	if c.Worker.CleanupInterval <= 0 {
		return fmt.Errorf("invalid cleanup interval %s", c.Worker.CleanupInterval)
	}
	switch c.XMPP.Backend {
	case "dummy":
	case "ejabberd":
		if c.XMPP.EjabberdURL == "" {
			return fmt.Errorf("EJABBERD_URL environment variable not set")
		}
	default:
		return fmt.Errorf("unknown xmpp backend %q", c.XMPP.Backend)
	}
	return nil
}
