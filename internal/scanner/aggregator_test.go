package scanner

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/echofort/threatintel/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func itemWithPhones(scamType models.ScamType, phones ...string) models.ThreatItem {
	return models.ThreatItem{
		ScamType:     scamType,
		PhoneNumbers: phones,
	}
}

func TestAggregateRequiresMinOccurrences(t *testing.T) {
	repo := NewMemoryPatternRepository()
	agg := NewPatternAggregator(repo, 3, testLogger())
	ctx := context.Background()

	// Two items only, below the threshold, so no pattern.
	items := []models.ThreatItem{
		itemWithPhones(models.ScamTypeUPIFraud, "+919876543210"),
		itemWithPhones(models.ScamTypeUPIFraud, "+919876543210"),
	}

	newPatterns, err := agg.Aggregate(ctx, items, time.Now())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if newPatterns != 0 {
		t.Errorf("expected 0 new patterns below threshold, got %d", newPatterns)
	}
	if repo.Size() != 0 {
		t.Errorf("expected empty pattern store, found %d entries", repo.Size())
	}

	// A third item crosses the threshold.
	items = append(items, itemWithPhones(models.ScamTypeDigitalArrest, "+919876543210"))

	newPatterns, err = agg.Aggregate(ctx, items, time.Now())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if newPatterns != 1 {
		t.Errorf("expected 1 new pattern at threshold, got %d", newPatterns)
	}

	pattern, ok := repo.Get(models.PatternTypePhoneNumber, "+919876543210")
	if !ok {
		t.Fatal("expected pattern to be stored")
	}
	if pattern.OccurrenceCount != 3 {
		t.Errorf("expected occurrence count 3, got %d", pattern.OccurrenceCount)
	}
	if len(pattern.ScamTypes) != 2 {
		t.Errorf("expected 2 distinct scam types, got %v", pattern.ScamTypes)
	}
}

func TestAggregateAccumulatesAcrossRuns(t *testing.T) {
	repo := NewMemoryPatternRepository()
	agg := NewPatternAggregator(repo, 3, testLogger())
	ctx := context.Background()

	firstRun := []models.ThreatItem{
		itemWithPhones(models.ScamTypeDigitalArrest, "9876543210"),
		itemWithPhones(models.ScamTypeDigitalArrest, "9876543210"),
		itemWithPhones(models.ScamTypeDigitalArrest, "9876543210"),
	}

	newPatterns, err := agg.Aggregate(ctx, firstRun, time.Now())
	if err != nil {
		t.Fatalf("first Aggregate returned error: %v", err)
	}
	if newPatterns != 1 {
		t.Fatalf("expected 1 new pattern in first run, got %d", newPatterns)
	}

	secondRun := []models.ThreatItem{
		itemWithPhones(models.ScamTypeUPIFraud, "9876543210"),
		itemWithPhones(models.ScamTypeUPIFraud, "9876543210"),
		itemWithPhones(models.ScamTypeUPIFraud, "9876543210"),
		itemWithPhones(models.ScamTypeUPIFraud, "9876543210"),
	}

	newPatterns, err = agg.Aggregate(ctx, secondRun, time.Now())
	if err != nil {
		t.Fatalf("second Aggregate returned error: %v", err)
	}
	if newPatterns != 0 {
		t.Errorf("expected 0 new patterns in second run, got %d", newPatterns)
	}

	pattern, ok := repo.Get(models.PatternTypePhoneNumber, "9876543210")
	if !ok {
		t.Fatal("expected pattern to exist")
	}
	if pattern.OccurrenceCount != 7 {
		t.Errorf("expected occurrence count 3+4=7, got %d", pattern.OccurrenceCount)
	}
}

func TestAggregateCountsValueOncePerItem(t *testing.T) {
	repo := NewMemoryPatternRepository()
	agg := NewPatternAggregator(repo, 3, testLogger())

	// One item repeating a number is one occurrence, not three.
	items := []models.ThreatItem{
		itemWithPhones(models.ScamTypeUPIFraud, "9876543210", "9876543210", "9876543210"),
	}

	newPatterns, err := agg.Aggregate(context.Background(), items, time.Now())
	if err != nil {
		t.Fatalf("Aggregate returned error: %v", err)
	}
	if newPatterns != 0 {
		t.Errorf("expected no pattern from a single item, got %d", newPatterns)
	}
}
