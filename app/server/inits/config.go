package inits

import (
	"fmt"
	"os"
	"strings"
	"time"
	"xmpp-homepage/app/server/config"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/xmpp-homepage/config.yaml",
}

// 环境变量到配置路径的映射，沿用原来的变量名
var envMappings = map[string]string{
	"debug":                "system.debug",
	"listen":               "system.listen",
	"db_conn":              "system.db_connection_string",
	"redis_conn":           "system.redis_connection_string",
	"behind_proxy":         "system.behind_proxy",
	"static_dir":           "system.static_dir",
	"signature_secret_key": "security.signature_secret_key",
	"default_host":         "default_host",
	"smtp_host":            "mail.smtp_host",
	"smtp_port":            "mail.smtp_port",
	"smtp_username":        "mail.smtp_username",
	"smtp_password":        "mail.smtp_password",
	"mail_from":            "mail.from",
	"xmpp_backend":         "xmpp.backend",
	"ejabberd_url":         "xmpp.ejabberd_url",
	"ejabberd_token":       "xmpp.ejabberd_token",
	"cleanup_interval":     "worker.cleanup_interval",
}

func defaultConfig() *config.Config {
	cfg := &config.Config{
		DefaultHost:       "default",
		Languages:         []string{"en", "de"},
		UsernameMinLength: 2,
		UsernameMaxLength: 64,
		Hosts: []config.HostConfig{
			{
				Name:         "default",
				Domain:       "example.com",
				Brand:        "example.com",
				AllowedHosts: []string{"*"},
				Registration: true,
			},
		},
		Guards: config.GuardsConfig{
			RateLimit: map[string][]config.RateLimitRule{
				"register":       {{Window: time.Hour, Limit: 3}, {Window: 24 * time.Hour, Limit: 5}},
				"reset_password": {{Window: time.Hour, Limit: 3}, {Window: 24 * time.Hour, Limit: 5}},
				"set_email":      {{Window: time.Hour, Limit: 3}, {Window: 24 * time.Hour, Limit: 5}},
				"contact":        {{Window: time.Hour, Limit: 5}, {Window: 24 * time.Hour, Limit: 10}},
			},
			DNSBLCacheExpire: time.Hour,
		},
		Accounts: config.AccountsConfig{
			ConfirmationExpires: 48 * time.Hour,
			UserLogEntryExpires: 90 * 24 * time.Hour,
			LogEntriesPerPage:   20,
		},
		Mail: config.MailConfig{
			From:     "webmaster@localhost",
			SMTPHost: "localhost",
			SMTPPort: 25,
		},
		XMPP: config.XMPPConfig{
			Backend: "dummy",
			Timeout: 10 * time.Second,
		},
		Worker: config.WorkerConfig{
			CleanupInterval: 1 * time.Hour,
		},
	}
	cfg.System.Listen = ":1323" // 默认监听地址
	cfg.System.StaticDir = "static"
	cfg.Security.SessionDuration = 14 * 24 * time.Hour
	cfg.Security.AdminTokenDuration = 12 * time.Hour
	return cfg
}

func envTransform(key string) string {
	// 返回空字符串的变量会被忽略
	return envMappings[strings.ToLower(key)]
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func Config() (*config.Config, error) {
	k := koanf.New(".")

	// 默认值
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 配置文件（可选）
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// 环境变量优先级最高
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &config.Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// MODE 只看前缀，例如 prod / production
	if mode, exist := os.LookupEnv("MODE"); exist {
		cfg.System.IsProd = strings.HasPrefix(strings.ToLower(mode), "p")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
