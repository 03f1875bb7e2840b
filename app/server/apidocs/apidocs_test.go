package apidocs

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

func TestAdminSpec(t *testing.T) {
	spec, err := AdminSpec()
	if err != nil {
		t.Fatalf("AdminSpec() error = %v", err)
	}

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	if err := json.Unmarshal(spec, &doc); err != nil {
		t.Fatalf("spec is not json: %v", err)
	}
	for _, p := range []string{"/auth/login", "/users/{id}", "/pages", "/blog/{id}", "/menu", "/certs/{id}"} {
		if _, ok := doc.Paths[p]; !ok {
			t.Errorf("path %s missing", p)
		}
	}
}

func TestDoc(t *testing.T) {
	e := echo.New()
	e.Pre(Doc("/api/admin", []byte(`{"openapi":"3.0.3"}`)))

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/api/admin", http.StatusFound, ""},
		{"/api/admin/apidocs", http.StatusOK, "/api/admin/apispec.json"},
		{"/api/admin/apispec.json", http.StatusOK, `"openapi"`},
		{"/api/admin/users", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.status)
		}
		if !strings.Contains(rec.Body.String(), tt.body) {
			t.Errorf("GET %s body = %q", tt.path, rec.Body.String())
		}
	}
}

func TestDocAuthorizer(t *testing.T) {
	e := echo.New()
	e.Pre(Doc("/api/admin", []byte(`{}`),
		WithTitle("Admin API"),
		WithAuthorizer(func(r *http.Request) bool { return r.Header.Get("X-Allow") == "1" }),
	))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/apidocs", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}

	req.Header.Set("X-Allow", "1")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<title>Admin API</title>") {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}
