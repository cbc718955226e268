package models

import (
	"testing"
	"time"
)

func TestScanStatus_Terminal(t *testing.T) {
	tests := []struct {
		status   ScanStatus
		terminal bool
	}{
		{ScanStatusPending, false},
		{ScanStatusRunning, false},
		{ScanStatusCompleted, true},
		{ScanStatusFailed, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("Terminal(%s) = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestScanRun_Duration(t *testing.T) {
	started := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	run := ScanRun{StartedAt: started}
	if run.Duration() != 0 {
		t.Errorf("expected zero duration while in flight, got %v", run.Duration())
	}

	completed := started.Add(90 * time.Second)
	run.CompletedAt = &completed
	if run.Duration() != 90*time.Second {
		t.Errorf("expected 90s duration, got %v", run.Duration())
	}
}

func TestThreatItem_ValidSeverity(t *testing.T) {
	tests := []struct {
		severity int
		valid    bool
	}{
		{0, false},
		{1, true},
		{5, true},
		{10, true},
		{11, false},
	}

	for _, tt := range tests {
		item := ThreatItem{Severity: tt.severity}
		if got := item.ValidSeverity(); got != tt.valid {
			t.Errorf("ValidSeverity(%d) = %v, want %v", tt.severity, got, tt.valid)
		}
	}
}
