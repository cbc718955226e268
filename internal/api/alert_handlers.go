package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/echofort/threatintel/internal/database"
	"github.com/echofort/threatintel/internal/models"
)

const defaultAlertListLimit = 100

// ListAlerts handles GET /api/alerts with optional status and
// min_severity filters.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	filter := database.AlertFilter{Limit: defaultAlertListLimit}

	q := r.URL.Query()
	if v := q.Get("status"); v != "" {
		switch models.AlertStatus(v) {
		case models.AlertStatusNew, models.AlertStatusAcknowledged, models.AlertStatusResolved:
			filter.Status = models.AlertStatus(v)
		default:
			h.respondError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
	}
	if v := q.Get("min_severity"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < models.SeverityMin || n > models.SeverityMax {
			h.respondError(w, http.StatusBadRequest, "min_severity must be between 1 and 10")
			return
		}
		filter.MinSeverity = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filter.Limit = n
	}

	alerts, err := h.alerts.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list alerts", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list alerts")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": alerts})
}

// AcknowledgeAlert handles POST /api/alerts/{id}/acknowledge.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	h.transitionAlert(w, r, "/acknowledge", models.AlertStatusAcknowledged, h.alerts.Acknowledge)
}

// ResolveAlert handles POST /api/alerts/{id}/resolve.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	h.transitionAlert(w, r, "/resolve", models.AlertStatusResolved, h.alerts.Resolve)
}

func (h *Handler) transitionAlert(w http.ResponseWriter, r *http.Request, suffix string, target models.AlertStatus, apply func(ctx context.Context, id string, at time.Time) error) {
	id := pathID(r.URL.Path, "/api/alerts/", suffix)
	if id == "" {
		h.respondError(w, http.StatusBadRequest, "alert id is required")
		return
	}

	if err := apply(r.Context(), id, time.Now()); err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "not in") || strings.Contains(err.Error(), "already") {
			h.respondError(w, http.StatusConflict, err.Error())
			return
		}
		h.logger.Error("failed to update alert", "alert_id", id, "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to update alert")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "status": target})
}
