package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/echofort/threatintel/internal/database"
	"github.com/echofort/threatintel/internal/models"
)

// ScanLauncher starts scan runs. Satisfied by scanner.Pipeline.
type ScanLauncher interface {
	Trigger(ctx context.Context, trigger models.ScanTrigger) (*models.ScanRun, error)
}

// ScanStore exposes the scan run read model.
type ScanStore interface {
	GetByID(ctx context.Context, id string) (*models.ScanRun, error)
	List(ctx context.Context, limit int) ([]models.ScanRun, error)
}

// ItemStore exposes the threat item read model.
type ItemStore interface {
	ListByScan(ctx context.Context, scanID string) ([]models.ThreatItem, error)
}

// PatternStore exposes pattern listing and the single pattern write action.
type PatternStore interface {
	GetByID(ctx context.Context, id string) (*models.ThreatPattern, error)
	List(ctx context.Context, filter database.PatternFilter) ([]models.ThreatPattern, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// AlertStore exposes alert listing and status transitions.
type AlertStore interface {
	List(ctx context.Context, filter database.AlertFilter) ([]models.Alert, error)
	Acknowledge(ctx context.Context, id string, at time.Time) error
	Resolve(ctx context.Context, id string, at time.Time) error
}

// SourceStore exposes the source registry read model.
type SourceStore interface {
	List(ctx context.Context) ([]models.Source, error)
}

// StatsStore exposes the daily statistics read model.
type StatsStore interface {
	ListRecent(ctx context.Context, limit int) ([]models.DailyStats, error)
}

// Handler serves the admin API.
type Handler struct {
	launcher ScanLauncher
	scans    ScanStore
	items    ItemStore
	patterns PatternStore
	alerts   AlertStore
	sources  SourceStore
	stats    StatsStore
	logger   *slog.Logger
}

// NewHandler creates the admin API handler.
func NewHandler(
	launcher ScanLauncher,
	scans ScanStore,
	items ItemStore,
	patterns PatternStore,
	alerts AlertStore,
	sources SourceStore,
	stats StatsStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		launcher: launcher,
		scans:    scans,
		items:    items,
		patterns: patterns,
		alerts:   alerts,
		sources:  sources,
		stats:    stats,
		logger:   logger,
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// pathID extracts the identifier segment from paths like
// /api/alerts/{id}/acknowledge given the prefix and optional suffix.
func pathID(path, prefix, suffix string) string {
	id := strings.TrimPrefix(path, prefix)
	id = strings.TrimSuffix(id, suffix)
	return strings.Trim(id, "/")
}
