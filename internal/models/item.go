package models

import "time"

// DefaultConfidence is the placeholder confidence assigned to every
// collected item. It is a constant by design, not derived from evidence.
const DefaultConfidence = 0.75

// SeverityMin and SeverityMax bound the severity scale for items and alerts.
const (
	SeverityMin = 1
	SeverityMax = 10
)

// ThreatItem is one classified, scored observation derived from a single
// source's content within one scan run. Items are immutable once written
// and owned exclusively by the run that created them.
type ThreatItem struct {
	ID           string    `json:"id"`
	ScanID       string    `json:"scan_id"`
	SourceID     string    `json:"source_id"`
	ScamType     ScamType  `json:"scam_type"`
	Severity     int       `json:"severity"`
	Confidence   float64   `json:"confidence"`
	PhoneNumbers []string  `json:"phone_numbers,omitempty"`
	URLs         []string  `json:"urls,omitempty"`
	Keywords     []string  `json:"keywords,omitempty"`
	RawExcerpt   string    `json:"raw_excerpt,omitempty"`
	CollectedAt  time.Time `json:"collected_at"`
}

// ScamType is the classification category assigned to a threat item.
type ScamType string

const (
	ScamTypeDigitalArrest     ScamType = "digital_arrest"
	ScamTypeUPIFraud          ScamType = "upi_fraud"
	ScamTypeInvestment        ScamType = "investment_scam"
	ScamTypeImpersonation     ScamType = "impersonation"
	ScamTypeSocialEngineering ScamType = "social_engineering"
	ScamTypePhishing          ScamType = "phishing"
	ScamTypeOTPFraud          ScamType = "otp_fraud"
	ScamTypeKYCFraud          ScamType = "kyc_fraud"
	ScamTypeUnknown           ScamType = "unknown"
)

// ValidSeverity reports whether the item's severity is inside the 1-10 scale.
func (t *ThreatItem) ValidSeverity() bool {
	return t.Severity >= SeverityMin && t.Severity <= SeverityMax
}
