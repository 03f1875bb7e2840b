package handlers

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/http"
	"testing"
	"time"
	"xmpp-homepage/app/server/constants"
	"xmpp-homepage/app/server/models"
)

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin@example.com", "correct horse", true)
	f.createUser(t, "user@example.com", "battery staple", false)

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{"success", map[string]any{"username": "Admin@example.com", "password": "correct horse"}, http.StatusOK},
		{"wrong password", map[string]any{"username": "admin@example.com", "password": "wrong"}, http.StatusUnauthorized},
		{"unknown user", map[string]any{"username": "nobody@example.com", "password": "x"}, http.StatusUnauthorized},
		{"not an admin", map[string]any{"username": "user@example.com", "password": "battery staple"}, http.StatusUnauthorized},
		{"missing password", map[string]any{"username": "admin@example.com"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.api(t, http.MethodPost, "/api/admin/auth/login", "", tt.body)
			assertStatus(t, rec, tt.wantCode)
			if tt.wantCode != http.StatusOK {
				return
			}
			res := decode[LoginToken](t, rec)
			if res.Token == nil || res.Expires == nil {
				t.Fatalf("login response = %s", rec.Body.String())
			}
			user, err := f.jwt.ParseUser(*res.Token, "admin")
			if err != nil || user.ID != admin.ID || !user.IsAdmin {
				t.Errorf("ParseUser() = %+v, %v", user, err)
			}
		})
	}
}

func TestAdminAuth(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin@example.com", "secret", true)
	token := f.adminToken(t, admin)

	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users", "", nil), http.StatusUnauthorized)
	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users", "garbage", nil), http.StatusUnauthorized)
	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users", token, nil), http.StatusOK)

	// 会话令牌不能用于管理接口
	session := f.sessionCookie(t, admin)
	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users", session.Value, nil), http.StatusUnauthorized)

	// 撤销权限后旧令牌失效
	f.db.Model(admin).Update("is_admin", false)
	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users", token, nil), http.StatusForbidden)

	f.db.Model(admin).Updates(map[string]any{"is_admin": true, "blocked": true})
	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users", token, nil), http.StatusForbidden)
}

func TestAdminUsers(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin@example.com", "secret", true)
	token := f.adminToken(t, admin)
	user := f.createUser(t, "user@example.com", "secret", false)
	other := f.createUser(t, "other@closed.example", "secret", false)
	f.db.Create(&models.Confirmation{UserID: user.ID, Key: "k1", Purpose: constants.PurposeSetEmail, Expires: time.Now().Add(time.Hour)})
	f.db.Model(other).Update("blocked", true)

	rec := f.api(t, http.MethodGet, "/api/admin/users", token, nil)
	assertStatus(t, rec, http.StatusOK)
	list := decode[UserListResponse](t, rec)
	if len(*list.List) != 3 || *list.PageMax != 1 {
		t.Fatalf("list = %s", rec.Body.String())
	}

	rec = f.api(t, http.MethodGet, "/api/admin/users?host=example.com", token, nil)
	if list = decode[UserListResponse](t, rec); len(*list.List) != 2 {
		t.Errorf("host filter = %s", rec.Body.String())
	}
	rec = f.api(t, http.MethodGet, "/api/admin/users?blocked=true", token, nil)
	if list = decode[UserListResponse](t, rec); len(*list.List) != 1 || *(*list.List)[0].Username != "other@closed.example" {
		t.Errorf("blocked filter = %s", rec.Body.String())
	}
	rec = f.api(t, http.MethodGet, "/api/admin/users?confirmations=true", token, nil)
	if list = decode[UserListResponse](t, rec); len(*list.List) != 1 || *(*list.List)[0].ConfirmationCount != 1 {
		t.Errorf("confirmations filter = %s", rec.Body.String())
	}
	rec = f.api(t, http.MethodGet, "/api/admin/users?page=2&limit=2", token, nil)
	if list = decode[UserListResponse](t, rec); len(*list.List) != 1 || *list.PageMax != 2 {
		t.Errorf("pagination = %s", rec.Body.String())
	}

	rec = f.api(t, http.MethodGet, fmt.Sprintf("/api/admin/users/%d", user.ID), token, nil)
	assertStatus(t, rec, http.StatusOK)
	if info := decode[UserInfoWithID](t, rec); *info.Username != "user@example.com" || *info.ConfirmationCount != 1 {
		t.Errorf("get = %s", rec.Body.String())
	}
	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users/999", token, nil), http.StatusNotFound)
	assertStatus(t, f.api(t, http.MethodGet, "/api/admin/users/abc", token, nil), http.StatusBadRequest)

	rec = f.api(t, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d", user.ID), token, map[string]any{"blocked": true})
	assertStatus(t, rec, http.StatusOK)
	if info := decode[UserInfoWithID](t, rec); !*info.Blocked {
		t.Errorf("update = %s", rec.Body.String())
	}
	assertStatus(t, f.api(t, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d", user.ID), token, map[string]any{}), http.StatusBadRequest)
	assertStatus(t, f.api(t, http.MethodPatch, "/api/admin/users/999", token, map[string]any{"blocked": true}), http.StatusNotFound)
}

func translationsInput(slugEN, slugDE string) []map[string]any {
	return []map[string]any{
		{"language": "en", "title": "About", "slug": slugEN, "text": "<p>About us</p>"},
		{"language": "de", "title": "Über", "slug": slugDE, "text": "<p>Über uns</p>"},
	}
}

func TestAdminPages(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin@example.com", "secret", true)
	token := f.adminToken(t, admin)

	rec := f.api(t, http.MethodPost, "/api/admin/pages", token, map[string]any{
		"published":    true,
		"translations": translationsInput("about", "ueber"),
	})
	assertStatus(t, rec, http.StatusCreated)
	page := decode[ContentInfoWithID](t, rec)
	if *page.AuthorId != admin.ID || len(*page.Translations) != 2 || !*page.Published {
		t.Fatalf("create = %s", rec.Body.String())
	}

	// slug 冲突
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/pages", token, map[string]any{
		"translations": translationsInput("about", "anders"),
	}), http.StatusConflict)
	// 不支持的语言
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/pages", token, map[string]any{
		"translations": []map[string]any{{"language": "fr", "title": "x", "slug": "x"}},
	}), http.StatusBadRequest)
	// 无效的 slug
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/pages", token, map[string]any{
		"translations": []map[string]any{{"language": "en", "title": "x", "slug": "a/b"}},
	}), http.StatusBadRequest)
	// 没有翻译
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/pages", token, map[string]any{"published": true}), http.StatusBadRequest)

	rec = f.api(t, http.MethodGet, "/api/admin/pages", token, nil)
	assertStatus(t, rec, http.StatusOK)
	if list := decode[ContentListResponse](t, rec); len(*list.List) != 1 {
		t.Errorf("list = %s", rec.Body.String())
	}

	// 同一页面可以保留自己的 slug
	path := fmt.Sprintf("/api/admin/pages/%d", *page.Id)
	rec = f.api(t, http.MethodPatch, path, token, map[string]any{
		"published":    false,
		"translations": translationsInput("about", "ueber-uns"),
	})
	assertStatus(t, rec, http.StatusOK)
	updated := decode[ContentInfoWithID](t, rec)
	if updated.Published != nil && *updated.Published {
		t.Errorf("update published = %s", rec.Body.String())
	}
	var count int64
	f.db.Model(&models.Translation{}).Where("owner_type = ? AND owner_id = ?", models.OwnerTypePage, *page.Id).Count(&count)
	if count != 2 {
		t.Errorf("translations after update = %d, want 2", count)
	}

	assertStatus(t, f.api(t, http.MethodPatch, "/api/admin/pages/999", token, map[string]any{"published": true}), http.StatusNotFound)
	assertStatus(t, f.api(t, http.MethodDelete, path, token, nil), http.StatusOK)
	assertStatus(t, f.api(t, http.MethodGet, path, token, nil), http.StatusNotFound)
	f.db.Model(&models.Translation{}).Where("owner_type = ? AND owner_id = ?", models.OwnerTypePage, *page.Id).Count(&count)
	if count != 0 {
		t.Errorf("translations after delete = %d, want 0", count)
	}
}

func TestAdminBlog(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin@example.com", "secret", true)
	token := f.adminToken(t, admin)

	rec := f.api(t, http.MethodPost, "/api/admin/blog", token, map[string]any{
		"published":    true,
		"sticky":       true,
		"translations": translationsInput("launch", "start"),
	})
	assertStatus(t, rec, http.StatusCreated)
	post := decode[ContentInfoWithID](t, rec)
	if post.Sticky == nil || !*post.Sticky {
		t.Fatalf("create = %s", rec.Body.String())
	}

	// 页面与博客文章的 slug 互不影响
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/pages", token, map[string]any{
		"translations": translationsInput("launch", "start"),
	}), http.StatusCreated)

	path := fmt.Sprintf("/api/admin/blog/%d", *post.Id)
	rec = f.api(t, http.MethodPatch, path, token, map[string]any{"sticky": false})
	assertStatus(t, rec, http.StatusOK)
	if updated := decode[ContentInfoWithID](t, rec); updated.Sticky != nil && *updated.Sticky {
		t.Errorf("update = %s", rec.Body.String())
	}

	rec = f.api(t, http.MethodGet, "/api/admin/blog?page=0&limit=0", token, nil)
	assertStatus(t, rec, http.StatusOK)
	if list := decode[ContentListResponse](t, rec); len(*list.List) != 1 || *list.PageMax != 1 {
		t.Errorf("list = %s", rec.Body.String())
	}

	assertStatus(t, f.api(t, http.MethodDelete, path, token, nil), http.StatusOK)
	assertStatus(t, f.api(t, http.MethodGet, path, token, nil), http.StatusNotFound)
}

func TestAdminMenu(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin@example.com", "secret", true)
	token := f.adminToken(t, admin)
	page := models.Page{Published: true}
	f.db.Create(&page)

	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/menu", token, map[string]any{
		"target": "page:999",
	}), http.StatusBadRequest)
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/menu", token, map[string]any{
		"target": "page:abc",
	}), http.StatusBadRequest)
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/menu", token, map[string]any{
		"target": "/x/", "titles": map[string]string{"fr": "X"},
	}), http.StatusBadRequest)
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/menu", token, map[string]any{
		"order": 1,
	}), http.StatusBadRequest)

	rec := f.api(t, http.MethodPost, "/api/admin/menu", token, map[string]any{
		"order":  20,
		"target": fmt.Sprintf("page:%d", page.ID),
		"titles": map[string]string{"en": "About", "de": "Über"},
	})
	assertStatus(t, rec, http.StatusCreated)
	item := decode[MenuItemWithID](t, rec)

	rec = f.api(t, http.MethodPost, "/api/admin/menu", token, map[string]any{
		"order":  10,
		"target": "https://example.org/",
		"titles": map[string]string{"en": "Elsewhere"},
	})
	assertStatus(t, rec, http.StatusCreated)

	rec = f.api(t, http.MethodGet, "/api/admin/menu", token, nil)
	assertStatus(t, rec, http.StatusOK)
	items := decode[[]MenuItemWithID](t, rec)
	if len(items) != 2 || *items[0].Target != "https://example.org/" {
		t.Errorf("list = %s", rec.Body.String())
	}

	path := fmt.Sprintf("/api/admin/menu/%d", *item.Id)
	rec = f.api(t, http.MethodPatch, path, token, map[string]any{"order": 0})
	assertStatus(t, rec, http.StatusOK)
	if updated := decode[MenuItemWithID](t, rec); updated.Order != nil && *updated.Order != 0 {
		t.Errorf("update = %s", rec.Body.String())
	}
	var stored models.MenuItem
	f.db.First(&stored, *item.Id)
	if stored.Order != 0 || stored.Titles["de"] != "Über" {
		t.Errorf("stored = %+v", stored)
	}

	assertStatus(t, f.api(t, http.MethodPatch, "/api/admin/menu/999", token, map[string]any{"order": 1}), http.StatusNotFound)
	assertStatus(t, f.api(t, http.MethodDelete, path, token, nil), http.StatusOK)
	if items = decode[[]MenuItemWithID](t, f.api(t, http.MethodGet, "/api/admin/menu", token, nil)); len(items) != 1 {
		t.Errorf("items after delete = %d, want 1", len(items))
	}
}

func testCertificatePEM(t *testing.T, cn string, dnsNames []string, notAfter time.Time) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(0x1234),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     dnsNames,
		NotBefore:    notAfter.Add(-90 * 24 * time.Hour),
		NotAfter:     notAfter,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}))
}

func TestAdminCerts(t *testing.T) {
	f := newFixture(t)
	admin := f.createUser(t, "admin@example.com", "secret", true)
	token := f.adminToken(t, admin)
	certPEM := testCertificatePEM(t, "example.com", []string{"example.com", "conference.example.com"}, time.Now().Add(30*24*time.Hour))

	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/certs", token, map[string]any{
		"certificate": "not a certificate",
	}), http.StatusBadRequest)
	assertStatus(t, f.api(t, http.MethodPost, "/api/admin/certs", token, map[string]any{}), http.StatusBadRequest)

	rec := f.api(t, http.MethodPost, "/api/admin/certs", token, map[string]any{"certificate": certPEM})
	assertStatus(t, rec, http.StatusCreated)
	cert := decode[CertInfoWithID](t, rec)
	if *cert.Hostname != "example.com" || *cert.Serial != "1234" || *cert.KeySize != 256 || !*cert.Enabled {
		t.Fatalf("create = %s", rec.Body.String())
	}
	if len(*cert.DNSNames) != 2 || cert.PEM != nil {
		t.Errorf("create = %s", rec.Body.String())
	}

	path := fmt.Sprintf("/api/admin/certs/%d", *cert.Id)
	rec = f.api(t, http.MethodGet, path, token, nil)
	assertStatus(t, rec, http.StatusOK)
	if got := decode[CertInfoWithID](t, rec); got.PEM == nil || *got.PEM == "" {
		t.Errorf("get = %s", rec.Body.String())
	}

	rec = f.api(t, http.MethodPatch, path, token, map[string]any{"enabled": false})
	assertStatus(t, rec, http.StatusOK)
	if got := decode[CertInfoWithID](t, rec); got.Enabled != nil && *got.Enabled {
		t.Errorf("update = %s", rec.Body.String())
	}

	rec = f.api(t, http.MethodGet, "/api/admin/certs", token, nil)
	assertStatus(t, rec, http.StatusOK)
	if list := decode[CertListResponse](t, rec); len(*list.List) != 1 {
		t.Errorf("list = %s", rec.Body.String())
	}

	assertStatus(t, f.api(t, http.MethodDelete, path, token, nil), http.StatusOK)
	assertStatus(t, f.api(t, http.MethodGet, path, token, nil), http.StatusNotFound)
}
