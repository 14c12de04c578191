package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func login(t *testing.T, h http.Handler, user, pass string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {user}, "password": {pass}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func adminCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == "admin_token" {
			return c
		}
	}
	t.Fatal("no admin_token cookie")
	return nil
}

func TestAdminLogin(t *testing.T) {
	_, h, _ := newTestServer(t, true)

	if w := login(t, h, "admin", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}

	w := login(t, h, "admin", "s3cret")
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/dashboard" {
		t.Fatalf("login = %d -> %q", w.Code, w.Header().Get("Location"))
	}
	cookie := adminCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("admin cookie is not HttpOnly")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Live sessions") {
		t.Errorf("dashboard = %d", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	_, h, _ := newTestServer(t, true)

	for _, path := range []string{"/admin/dashboard", "/admin/visitors", "/admin/api/stats", "/admin/export/stats"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: "admin_token", Value: "forged"})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/admin/login" {
			t.Errorf("%s = %d -> %q, want redirect to login", path, w.Code, w.Header().Get("Location"))
		}
	}
}

func TestVisitorTracking(t *testing.T) {
	s, h, _ := newTestServer(t, true)

	get(h, "/", "DNT", "1")
	get(h, "/privacy")
	get(h, "/static/css/site.css")
	get(h, "/og-image.png", "User-Agent", "test-agent")

	ctx := context.Background()
	deadline := time.Now().Add(2 * time.Second)
	var got int
	for time.Now().Before(deadline) {
		visitors, err := s.visitors.Recent(ctx, 10)
		if err != nil {
			t.Fatalf("Recent: %v", err)
		}
		if got = len(visitors); got > 0 {
			v := visitors[0]
			if v.Path != "/og-image.png" || v.UserAgent != "test-agent" {
				t.Errorf("recorded %+v", v)
			}
			if v.HashedIP == "" || strings.Contains(v.HashedIP, ".") {
				t.Errorf("IP not hashed: %q", v.HashedIP)
			}
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if got != 1 {
		t.Fatalf("recorded %d visits, want 1", got)
	}

	// Untracked requests never show up, even after the tracked one landed.
	time.Sleep(50 * time.Millisecond)
	visitors, _ := s.visitors.Recent(ctx, 10)
	if len(visitors) != 1 {
		t.Errorf("recorded %d visits, want 1", len(visitors))
	}
}

func TestAdminStatsAPI(t *testing.T) {
	s, h, _ := newTestServer(t, true)
	ctx := context.Background()
	s.visitors.Record(ctx, s.hashIP("192.0.2.1"), "ua", "/")
	s.visitors.Record(ctx, s.hashIP("192.0.2.1"), "ua", "/")
	s.visitors.Record(ctx, s.hashIP("192.0.2.2"), "ua", "/og-image.png")

	cookie := adminCookie(t, login(t, h, "admin", "s3cret"))
	req := httptest.NewRequest(http.MethodGet, "/admin/api/stats", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var stats struct {
		TotalVisitors  int64 `json:"total_visitors"`
		UniqueVisitors int64 `json:"unique_visitors"`
		LiveSessions   *int  `json:"live_sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalVisitors != 3 || stats.UniqueVisitors != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.LiveSessions == nil || *stats.LiveSessions != 0 {
		t.Error("live_sessions missing")
	}
}

func TestPrivacyCleanupEndpoint(t *testing.T) {
	_, h, _ := newTestServer(t, true)
	cookie := adminCookie(t, login(t, h, "admin", "s3cret"))

	req := httptest.NewRequest(http.MethodPost, "/admin/privacy/delete-visitor-data", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var body struct {
		Removed *int64 `json:"removed"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || w.Code != http.StatusOK {
		t.Fatalf("cleanup = %d %s", w.Code, w.Body.String())
	}
	if body.Removed == nil || *body.Removed != 0 {
		t.Errorf("removed = %v", body.Removed)
	}
}
