package inits

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"xmpp-homepage/app/server/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("DB_CONN", "postgres://localhost/hp")
	t.Setenv("REDIS_CONN", "redis://localhost:6379/0")
	t.Setenv("SIGNATURE_SECRET_KEY", "secret")
}

func TestConfigDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("MODE", "production")

	cfg, err := Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if cfg.System.Listen != ":1323" || cfg.System.DBConnectionString != "postgres://localhost/hp" {
		t.Errorf("system = %+v", cfg.System)
	}
	if !cfg.System.IsProd {
		t.Error("MODE=production should set IsProd")
	}
	if len(cfg.Hosts) != 1 || cfg.DefaultHostConfig().Domain != "example.com" {
		t.Errorf("hosts = %+v", cfg.Hosts)
	}
	if cfg.Accounts.ConfirmationExpires != 48*time.Hour || cfg.Worker.CleanupInterval != time.Hour {
		t.Errorf("accounts = %+v, worker = %+v", cfg.Accounts, cfg.Worker)
	}
	if cfg.XMPP.Backend != "dummy" || cfg.Mail.SMTPPort != 25 {
		t.Errorf("xmpp = %+v, mail = %+v", cfg.XMPP, cfg.Mail)
	}
}

func TestConfigFileAndEnv(t *testing.T) {
	setRequiredEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
default_host: jabber
languages: [de, en]
hosts:
  - name: jabber
    domain: jabber.example
    brand: Jabber
    allowed_hosts: [.jabber.example]
    registration: true
  - name: chat
    domain: chat.example
    allowed_hosts: [chat.example]
accounts:
  confirmation_expires: 24h
system:
  listen: ":8000"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LISTEN", ":9000")
	t.Setenv("SMTP_PORT", "2525")

	cfg, err := Config()
	if err != nil {
		t.Fatalf("Config() error = %v", err)
	}
	if len(cfg.Hosts) != 2 || cfg.DefaultHostConfig().Domain != "jabber.example" {
		t.Errorf("hosts = %+v", cfg.Hosts)
	}
	if cfg.DefaultLanguage() != "de" {
		t.Errorf("DefaultLanguage() = %q", cfg.DefaultLanguage())
	}
	if cfg.Accounts.ConfirmationExpires != 24*time.Hour {
		t.Errorf("ConfirmationExpires = %s", cfg.Accounts.ConfirmationExpires)
	}
	// 环境变量优先于配置文件
	if cfg.System.Listen != ":9000" || cfg.Mail.SMTPPort != 2525 {
		t.Errorf("listen = %q, smtp port = %d", cfg.System.Listen, cfg.Mail.SMTPPort)
	}
	// 文件里没有的值保留默认值
	if cfg.Accounts.LogEntriesPerPage != 20 {
		t.Errorf("LogEntriesPerPage = %d", cfg.Accounts.LogEntriesPerPage)
	}
}

func TestConfigValidationError(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DB_CONN", "")

	if _, err := Config(); err == nil {
		t.Fatal("Config() without DB_CONN should fail")
	}
}

func TestMigrateAndInitData(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "inits.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	if err = Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// 第二次运行不会重复添加菜单
	for i := 0; i < 2; i++ {
		if err = initData(db); err != nil {
			t.Fatalf("initData() error = %v", err)
		}
	}
	var items []models.MenuItem
	db.Order("order_index").Find(&items)
	if len(items) != 4 || items[0].Target != "/" || items[0].Titles["de"] != "Neuigkeiten" {
		t.Errorf("menu items = %+v", items)
	}
}

func TestLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		l, err := Logger(debug)
		if err != nil {
			t.Fatalf("Logger(%v) error = %v", debug, err)
		}
		_ = l.Sync()
	}
}
