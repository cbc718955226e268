package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/echofort/threatintel/internal/models"
	"github.com/echofort/threatintel/internal/scanner"
)

const defaultScanListLimit = 50

// TriggerScan handles POST /api/scans/trigger. The run executes in the
// background; the pending record is returned immediately.
func (h *Handler) TriggerScan(w http.ResponseWriter, r *http.Request) {
	scan, err := h.launcher.Trigger(r.Context(), models.ScanTriggerManual)
	if errors.Is(err, scanner.ErrScanInFlight) {
		h.respondError(w, http.StatusConflict, "a scan is already in progress")
		return
	}
	if err != nil {
		h.logger.Error("failed to trigger scan", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to trigger scan")
		return
	}

	h.logger.Info("manual scan triggered", "scan_id", scan.ID)
	h.respondJSON(w, http.StatusAccepted, scan)
}

// ListScans handles GET /api/scans.
func (h *Handler) ListScans(w http.ResponseWriter, r *http.Request) {
	limit := defaultScanListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	scans, err := h.scans.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list scans", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"scans": scans})
}

// GetScan handles GET /api/scans/{id}.
func (h *Handler) GetScan(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/scans/", "")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "scan id is required")
		return
	}

	scan, err := h.scans.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get scan", "scan_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get scan")
		return
	}
	if scan == nil {
		h.respondError(w, http.StatusNotFound, "scan not found")
		return
	}

	h.respondJSON(w, http.StatusOK, scan)
}

// GetScanItems handles GET /api/scans/{id}/items.
func (h *Handler) GetScanItems(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/scans/", "/items")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "scan id is required")
		return
	}

	scan, err := h.scans.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get scan", "scan_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get scan")
		return
	}
	if scan == nil {
		h.respondError(w, http.StatusNotFound, "scan not found")
		return
	}

	items, err := h.items.ListByScan(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list scan items", "scan_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list scan items")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"scan_id": id,
		"items":   items,
	})
}
