package cmd

import (
	"bytes"
	"context"
	"errors"
	"net"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"xmpp-homepage/app/server/config"
	"xmpp-homepage/app/server/inits"
	"xmpp-homepage/app/server/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeResolver struct {
	listed map[string]bool
}

func (f *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if f.listed[host] {
		return []string{"127.0.0.2"}, nil
	}
	return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
}

func newRuntime(t *testing.T) *Runtime {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "manage.db")+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	if err = inits.Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{}
	cfg.Accounts.UserLogEntryExpires = 30 * 24 * time.Hour
	cfg.Guards.DNSBL = []string{"dnsbl.example"}
	cfg.Guards.DNSBLCacheExpire = time.Hour

	return &Runtime{
		cfg:      cfg,
		l:        zap.NewNop(),
		db:       db,
		rdb:      rdb,
		resolver: &fakeResolver{listed: map[string]bool{"2.0.0.127.dnsbl.example": true}},
	}
}

func run(t *testing.T, rt *Runtime, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd(rt)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	out, err := run(t, newRuntime(t), "migrate")
	if err != nil {
		t.Fatalf("migrate error = %v", err)
	}
	if !strings.Contains(out, "Database migrated.") {
		t.Errorf("output = %q", out)
	}
}

func TestSetAdmin(t *testing.T) {
	rt := newRuntime(t)
	db := rt.db
	if err := db.Create(&models.User{Username: "alice@example.com"}).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	out, err := run(t, rt, "set-admin", "Alice@Example.com")
	if err != nil {
		t.Fatalf("set-admin error = %v", err)
	}
	if !strings.Contains(out, "alice@example.com is now an admin.") {
		t.Errorf("output = %q", out)
	}
	var user models.User
	db.Where("username = ?", "alice@example.com").First(&user)
	if !user.IsAdmin {
		t.Error("user was not made admin")
	}
}

func TestSetAdminRevoke(t *testing.T) {
	rt := newRuntime(t)
	db := rt.db
	if err := db.Create(&models.User{Username: "bob@example.com", IsAdmin: true}).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := run(t, rt, "set-admin", "--revoke", "bob@example.com"); err != nil {
		t.Fatalf("set-admin --revoke error = %v", err)
	}
	var user models.User
	db.Where("username = ?", "bob@example.com").First(&user)
	if user.IsAdmin {
		t.Error("admin permission was not revoked")
	}
}

func TestSetAdminUnknownUser(t *testing.T) {
	_, err := run(t, newRuntime(t), "set-admin", "nobody@example.com")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("set-admin error = %v, want not found", err)
	}
}

func TestSetAdminArgs(t *testing.T) {
	if _, err := run(t, newRuntime(t), "set-admin"); err == nil {
		t.Error("set-admin without jid should fail")
	}
}

func TestCleanup(t *testing.T) {
	rt := newRuntime(t)
	if err := rt.db.Create(&models.User{Username: "stale@example.com"}).Error; err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	out, err := run(t, rt, "cleanup")
	if err != nil {
		t.Fatalf("cleanup error = %v", err)
	}
	if !strings.Contains(out, "Deleted 1 unconfirmed users.") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckDNSBL(t *testing.T) {
	rt := newRuntime(t)

	out, err := run(t, rt, "check-dnsbl", "127.0.0.2")
	if err != nil {
		t.Fatalf("check-dnsbl error = %v", err)
	}
	if !strings.Contains(out, "127.0.0.2 is listed on: dnsbl.example") {
		t.Errorf("output = %q", out)
	}

	out, err = run(t, newRuntime(t), "check-dnsbl", "--no-cache", "192.0.2.1")
	if err != nil {
		t.Fatalf("check-dnsbl error = %v", err)
	}
	if !strings.Contains(out, "192.0.2.1 is not listed.") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckDNSBLInvalidAddress(t *testing.T) {
	if _, err := run(t, newRuntime(t), "check-dnsbl", "not-an-ip"); err == nil {
		t.Error("check-dnsbl accepted an invalid address")
	}
}

func TestCheckDNSBLWithoutZones(t *testing.T) {
	rt := newRuntime(t)
	rt.cfg.Guards.DNSBL = nil

	out, err := run(t, rt, "check-dnsbl", "127.0.0.2")
	if err != nil {
		t.Fatalf("check-dnsbl error = %v", err)
	}
	if !strings.Contains(out, "No DNSBL zones configured.") {
		t.Errorf("output = %q", out)
	}
}

func TestRuntimeConfigError(t *testing.T) {
	rt := &Runtime{loadConfig: func() (*config.Config, error) { return nil, errors.New("missing") }}
	if _, err := rt.DB(); err == nil {
		t.Error("DB() should fail when config cannot be loaded")
	}
}
