package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nartaq/forms-service/internal/config"
)

func testManager(enabled bool) *Manager {
	return NewManager(config.AuthConfig{
		Enabled:       enabled,
		AllowedDomain: "nartaq.com",
		CookieName:    "nartaq_admin",
		CookieMaxAge:  3600,
	}, "http://localhost:8080")
}

func addSession(m *Manager, id string, expiresAt time.Time) {
	m.mu.Lock()
	m.sessions[id] = &Session{
		UserID:    "u-1",
		Email:     "admin@nartaq.com",
		ExpiresAt: expiresAt,
	}
	m.mu.Unlock()
}

func TestRequireAdminRejectsAnonymous(t *testing.T) {
	m := testManager(true)
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run for anonymous request")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/subscribers", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequireAdminAllowsSession(t *testing.T) {
	m := testManager(true)
	addSession(m, "sess-1", time.Now().Add(time.Hour))

	called := false
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.AddCookie(&http.Cookie{Name: "nartaq_admin", Value: "sess-1"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("authenticated request must reach the handler")
	}
}

func TestExpiredSessionIsEvicted(t *testing.T) {
	m := testManager(true)
	addSession(m, "sess-old", time.Now().Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	req.AddCookie(&http.Cookie{Name: "nartaq_admin", Value: "sess-old"})

	if m.GetSession(req) != nil {
		t.Fatal("expired session must not authenticate")
	}
	m.mu.RLock()
	_, stillThere := m.sessions["sess-old"]
	m.mu.RUnlock()
	if stillThere {
		t.Error("expired session must be evicted on access")
	}
}

func TestRequireAdminDisabledPassesThrough(t *testing.T) {
	m := testManager(false)
	called := false
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	if !called {
		t.Fatal("disabled auth must pass requests through")
	}
}

func TestDomainAllowed(t *testing.T) {
	m := testManager(true)
	if !m.domainAllowed("jane@nartaq.com") {
		t.Error("workspace address rejected")
	}
	if m.domainAllowed("jane@gmail.com") {
		t.Error("outside address accepted")
	}
	if m.domainAllowed("jane@evil.com@nartaq.com") {
		t.Error("mangled address accepted")
	}
}

func TestLogoutDropsSession(t *testing.T) {
	m := testManager(true)
	addSession(m, "sess-2", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "nartaq_admin", Value: "sess-2"})
	rec := httptest.NewRecorder()
	m.HandleLogout(rec, req)

	if rec.Code != http.StatusTemporaryRedirect {
		t.Errorf("status = %d", rec.Code)
	}
	m.mu.RLock()
	_, stillThere := m.sessions["sess-2"]
	m.mu.RUnlock()
	if stillThere {
		t.Error("session survived logout")
	}
}
