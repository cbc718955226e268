package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/echofort/threatintel/internal/auth"
	db "github.com/echofort/threatintel/internal/database"
)

// SetupRoutes configures all API routes on the mux.
func SetupRoutes(
	mux *http.ServeMux,
	handler *Handler,
	authConfig auth.Config,
	sqlDB *sql.DB,
	metricsHandler http.Handler,
	logger *slog.Logger,
) {
	authHandler := NewAuthHandler(authConfig, logger)
	authMiddleware := auth.Middleware(authConfig)

	protected := func(fn http.HandlerFunc) http.Handler {
		return authMiddleware(fn)
	}

	// Authentication (public)
	mux.HandleFunc("/api/auth/login", authHandler.Login)

	// Scan runs (admin only)
	mux.Handle("/api/scans/trigger", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.TriggerScan(w, r)
	}))
	mux.Handle("/api/scans", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ListScans(w, r)
	}))
	mux.Handle("/api/scans/", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if strings.HasSuffix(r.URL.Path, "/items") {
			handler.GetScanItems(w, r)
			return
		}
		handler.GetScan(w, r)
	}))

	// Threat patterns (admin only)
	mux.Handle("/api/patterns", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ListPatterns(w, r)
	}))
	mux.Handle("/api/patterns/", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/toggle") {
			handler.TogglePattern(w, r)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	}))

	// Alerts (admin only)
	mux.Handle("/api/alerts", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ListAlerts(w, r)
	}))
	mux.Handle("/api/alerts/", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/acknowledge") {
			handler.AcknowledgeAlert(w, r)
			return
		}
		if r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/resolve") {
			handler.ResolveAlert(w, r)
			return
		}
		http.Error(w, "Not found", http.StatusNotFound)
	}))

	// Source registry (admin only, read-only)
	mux.Handle("/api/sources", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ListSources(w, r)
	}))

	// Daily statistics (admin only)
	mux.Handle("/api/stats/daily", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler.ListDailyStats(w, r)
	}))

	// Health and metrics (public)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if sqlDB != nil {
			if err := db.HealthCheck(context.Background(), sqlDB); err != nil {
				logger.Error("health check failed", "error", err)
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", metricsHandler)
}
