package scanner

import (
	"testing"

	"github.com/echofort/threatintel/internal/models"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		scamType models.ScamType
		phones   int
		urls     int
		want     int
	}{
		{"digital arrest base", models.ScamTypeDigitalArrest, 0, 0, 8},
		{"digital arrest with phone", models.ScamTypeDigitalArrest, 1, 0, 9},
		{"digital arrest with all evidence caps at 10", models.ScamTypeDigitalArrest, 3, 2, 10},
		{"phishing with url", models.ScamTypePhishing, 0, 1, 8},
		{"unknown base", models.ScamTypeUnknown, 0, 0, 3},
		{"unknown with evidence", models.ScamTypeUnknown, 1, 1, 5},
		{"unlisted type falls back to unknown", models.ScamType("bogus"), 0, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.scamType, tt.phones, tt.urls)
			if got != tt.want {
				t.Errorf("Score(%v, %d, %d) = %d, want %d", tt.scamType, tt.phones, tt.urls, got, tt.want)
			}
		})
	}
}

func TestScoreAlwaysInRange(t *testing.T) {
	types := []models.ScamType{
		models.ScamTypeDigitalArrest, models.ScamTypeUPIFraud,
		models.ScamTypeInvestment, models.ScamTypeImpersonation,
		models.ScamTypeSocialEngineering, models.ScamTypePhishing,
		models.ScamTypeOTPFraud, models.ScamTypeKYCFraud,
		models.ScamTypeUnknown,
	}

	for _, st := range types {
		for phones := 0; phones <= 12; phones++ {
			for urls := 0; urls <= 12; urls++ {
				got := Score(st, phones, urls)
				item := models.ThreatItem{Severity: got}
				if !item.ValidSeverity() {
					t.Fatalf("Score(%v, %d, %d) = %d out of range", st, phones, urls, got)
				}
			}
		}
	}
}
