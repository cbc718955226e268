package models

import "time"

// ScanRun is the audit record for one execution of the collection pipeline.
// It is created pending at trigger time and mutated only by the pipeline
// that owns it; completed and failed are final.
type ScanRun struct {
	ID             string      `json:"id"`
	Status         ScanStatus  `json:"status"`
	Trigger        ScanTrigger `json:"trigger"`
	StartedAt      time.Time   `json:"started_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
	ItemsCollected int         `json:"items_collected"`
	NewPatterns    int         `json:"new_patterns_detected"`
	ErrorMessage   string      `json:"error_message,omitempty"`
}

// ScanStatus tracks the lifecycle of a scan run.
type ScanStatus string

const (
	ScanStatusPending   ScanStatus = "pending"
	ScanStatusRunning   ScanStatus = "running"
	ScanStatusCompleted ScanStatus = "completed"
	ScanStatusFailed    ScanStatus = "failed"
)

// ScanTrigger records what started a run.
type ScanTrigger string

const (
	ScanTriggerScheduled ScanTrigger = "scheduled"
	ScanTriggerManual    ScanTrigger = "manual"
)

// Terminal reports whether the status admits no further transitions.
func (s ScanStatus) Terminal() bool {
	return s == ScanStatusCompleted || s == ScanStatusFailed
}

// Duration returns the wall-clock duration of a finished run, or zero while
// the run is still in flight.
func (r *ScanRun) Duration() time.Duration {
	if r.CompletedAt == nil {
		return 0
	}
	return r.CompletedAt.Sub(r.StartedAt)
}
