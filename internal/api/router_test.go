package api

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/echofort/threatintel/internal/auth"
	"github.com/echofort/threatintel/internal/models"
)

func testAuthConfig() auth.Config {
	return auth.Config{
		JWTSecret:     "test-secret",
		AdminPassword: "letmein",
		TokenDuration: time.Hour,
	}
}

func newTestRouter(t *testing.T, f *handlerFixture) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	SetupRoutes(mux, f.handler, testAuthConfig(), nil, http.NotFoundHandler(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return mux
}

func bearerToken(t *testing.T) string {
	t.Helper()
	token, err := auth.GenerateToken("admin", "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return "Bearer " + token
}

func TestRouterRequiresAuth(t *testing.T) {
	mux := newTestRouter(t, newHandlerFixture())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/scans/trigger"},
		{http.MethodGet, "/api/scans"},
		{http.MethodGet, "/api/patterns"},
		{http.MethodGet, "/api/alerts"},
		{http.MethodGet, "/api/sources"},
		{http.MethodGet, "/api/stats/daily"},
	}

	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 without token, got %d", p.method, p.path, rec.Code)
		}
	}
}

func TestRouterAuthorizedAccess(t *testing.T) {
	f := newHandlerFixture()
	f.scans.scans["scan-1"] = &models.ScanRun{ID: "scan-1", Status: models.ScanStatusCompleted}
	mux := newTestRouter(t, f)
	token := bearerToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/scans/scan-1", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
}

func TestRouterSuffixDispatch(t *testing.T) {
	f := newHandlerFixture()
	f.scans.scans["scan-1"] = &models.ScanRun{ID: "scan-1", Status: models.ScanStatusCompleted}
	f.items.items["scan-1"] = []models.ThreatItem{{ID: "item-1", ScanID: "scan-1"}}
	mux := newTestRouter(t, f)
	token := bearerToken(t)

	req := httptest.NewRequest(http.MethodGet, "/api/scans/scan-1/items", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["scan_id"] != "scan-1" {
		t.Errorf("expected items route dispatch, got body %v", body)
	}
}

func TestRouterMethodNotAllowed(t *testing.T) {
	mux := newTestRouter(t, newHandlerFixture())
	token := bearerToken(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/scans", nil)
	req.Header.Set("Authorization", token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestHealthEndpointIsPublic(t *testing.T) {
	mux := newTestRouter(t, newHandlerFixture())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without token, got %d", rec.Code)
	}
}
