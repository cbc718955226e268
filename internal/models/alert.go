package models

import "time"

// Alert is a notification record raised for a single high-severity threat
// item. Alerts are append-only from the pipeline's point of view; only the
// admin surface acknowledges or resolves them.
type Alert struct {
	ID             string      `json:"id"`
	AlertType      string      `json:"alert_type"`
	Severity       int         `json:"severity"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	RelatedItemIDs []string    `json:"related_item_ids,omitempty"`
	Status         AlertStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	AcknowledgedAt *time.Time  `json:"acknowledged_at,omitempty"`
	ResolvedAt     *time.Time  `json:"resolved_at,omitempty"`
}

// AlertStatus tracks the admin-facing lifecycle of an alert.
type AlertStatus string

const (
	AlertStatusNew          AlertStatus = "new"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// AlertTypeHighSeverityItem marks alerts generated for items whose severity
// crossed the configured threshold.
const AlertTypeHighSeverityItem = "high_severity_item"
