package api

import (
	"net/http"
	"strconv"
)

const defaultStatsListLimit = 30

// ListSources handles GET /api/sources (read-only registry view).
func (h *Handler) ListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := h.sources.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list sources", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list sources")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"sources": sources})
}

// ListDailyStats handles GET /api/stats/daily.
func (h *Handler) ListDailyStats(w http.ResponseWriter, r *http.Request) {
	limit := defaultStatsListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	stats, err := h.stats.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list daily stats", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list daily stats")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"stats": stats})
}
