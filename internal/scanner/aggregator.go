package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/echofort/threatintel/internal/models"
)

// PatternAggregator detects recurring phone numbers across the items of a
// single scan run and folds them into the persistent pattern table.
type PatternAggregator struct {
	patterns       PatternRepository
	minOccurrences int
	logger         *slog.Logger
}

// NewPatternAggregator creates an aggregator. A phone number must appear in
// at least minOccurrences distinct items of one run to qualify.
func NewPatternAggregator(patterns PatternRepository, minOccurrences int, logger *slog.Logger) *PatternAggregator {
	return &PatternAggregator{
		patterns:       patterns,
		minOccurrences: minOccurrences,
		logger:         logger,
	}
}

// Aggregate upserts qualifying phone numbers from the run's items and
// returns the number of newly created pattern rows.
func (a *PatternAggregator) Aggregate(ctx context.Context, items []models.ThreatItem, now time.Time) (int, error) {
	type occurrence struct {
		count     int
		scamTypes map[models.ScamType]bool
	}

	occurrences := make(map[string]*occurrence)
	for _, item := range items {
		// Count each value once per item, even if the item repeats it.
		seen := make(map[string]bool)
		for _, phone := range item.PhoneNumbers {
			if seen[phone] {
				continue
			}
			seen[phone] = true

			occ, ok := occurrences[phone]
			if !ok {
				occ = &occurrence{scamTypes: make(map[models.ScamType]bool)}
				occurrences[phone] = occ
			}
			occ.count++
			occ.scamTypes[item.ScamType] = true
		}
	}

	newPatterns := 0
	for value, occ := range occurrences {
		if occ.count < a.minOccurrences {
			continue
		}

		scamTypes := make([]models.ScamType, 0, len(occ.scamTypes))
		for st := range occ.scamTypes {
			scamTypes = append(scamTypes, st)
		}

		inserted, err := a.patterns.Upsert(ctx, models.ThreatPattern{
			ID:              uuid.New().String(),
			PatternType:     models.PatternTypePhoneNumber,
			PatternValue:    value,
			OccurrenceCount: occ.count,
			ScamTypes:       scamTypes,
			FirstSeen:       now,
			LastSeen:        now,
			Active:          true,
		})
		if err != nil {
			return newPatterns, fmt.Errorf("failed to aggregate pattern %s: %w", value, err)
		}

		if inserted {
			newPatterns++
			a.logger.Info("new threat pattern detected",
				"pattern_type", models.PatternTypePhoneNumber,
				"occurrences", occ.count)
		}
	}

	return newPatterns, nil
}
