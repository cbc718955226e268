package api

import (
	"net/http"
	"strconv"

	"github.com/echofort/threatintel/internal/database"
	"github.com/echofort/threatintel/internal/models"
)

const defaultPatternListLimit = 100

// ListPatterns handles GET /api/patterns with optional pattern_type,
// scam_type, and active_only filters.
func (h *Handler) ListPatterns(w http.ResponseWriter, r *http.Request) {
	filter := database.PatternFilter{Limit: defaultPatternListLimit}

	q := r.URL.Query()
	if v := q.Get("pattern_type"); v != "" {
		filter.PatternType = models.PatternType(v)
	}
	if v := q.Get("scam_type"); v != "" {
		filter.ScamType = models.ScamType(v)
	}
	if v := q.Get("active_only"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "active_only must be a boolean")
			return
		}
		filter.ActiveOnly = active
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	patterns, err := h.patterns.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list patterns", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list patterns")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"patterns": patterns})
}

// TogglePattern handles POST /api/patterns/{id}/toggle. The only mutable
// pattern field is is_active.
func (h *Handler) TogglePattern(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/patterns/", "/toggle")
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "pattern id is required")
		return
	}

	pattern, err := h.patterns.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get pattern", "pattern_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to get pattern")
		return
	}
	if pattern == nil {
		h.respondError(w, http.StatusNotFound, "pattern not found")
		return
	}

	newState := !pattern.Active
	if err := h.patterns.SetActive(r.Context(), id, newState); err != nil {
		h.logger.Error("failed to toggle pattern", "pattern_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to toggle pattern")
		return
	}

	h.logger.Info("pattern toggled", "pattern_id", id, "is_active", newState)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":        id,
		"is_active": newState,
	})
}
