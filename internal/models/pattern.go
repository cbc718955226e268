package models

import "time"

// ThreatPattern is a durable, cross-run record of a recurring indicator.
// A pattern is unique per (pattern_type, pattern_value); its occurrence
// count only grows while it is active, and scam types are unioned over time.
// Patterns are created and updated by the aggregator, never deleted; the
// active flag is toggled only by the admin surface.
type ThreatPattern struct {
	ID              string      `json:"id"`
	PatternType     PatternType `json:"pattern_type"`
	PatternValue    string      `json:"pattern_value"`
	OccurrenceCount int         `json:"occurrence_count"`
	ScamTypes       []ScamType  `json:"scam_types,omitempty"`
	FirstSeen       time.Time   `json:"first_seen"`
	LastSeen        time.Time   `json:"last_seen"`
	Active          bool        `json:"is_active"`
}

// PatternType identifies the kind of recurring indicator.
type PatternType string

const (
	PatternTypePhoneNumber PatternType = "phone_number"
	PatternTypeURL         PatternType = "url"
	PatternTypeKeyword     PatternType = "keyword"
)
