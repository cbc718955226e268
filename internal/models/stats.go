package models

import "time"

// DailyStats aggregates one day of pipeline activity for the admin
// dashboard. Rows are generated by the once-daily statistics job.
type DailyStats struct {
	Date           time.Time `json:"date"`
	ScansRun       int       `json:"scans_run"`
	ScansFailed    int       `json:"scans_failed"`
	ItemsCollected int       `json:"items_collected"`
	NewPatterns    int       `json:"new_patterns"`
	AlertsRaised   int       `json:"alerts_raised"`
}
