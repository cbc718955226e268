package scanner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/echofort/threatintel/internal/models"
)

// AlertGenerator raises one alert for every high-severity item in a run.
// Items are never merged and consecutive runs are not deduplicated, so a
// persistent scammer raises a fresh alert every cycle.
type AlertGenerator struct {
	alerts    AlertRepository
	threshold int
}

// NewAlertGenerator creates a generator firing at the given severity threshold.
func NewAlertGenerator(alerts AlertRepository, threshold int) *AlertGenerator {
	return &AlertGenerator{alerts: alerts, threshold: threshold}
}

// Generate stores alerts for the run's items and returns how many were raised.
func (g *AlertGenerator) Generate(ctx context.Context, items []models.ThreatItem, now time.Time) (int, error) {
	raised := 0
	for _, item := range items {
		if item.Severity < g.threshold {
			continue
		}

		alert := models.Alert{
			ID:        uuid.New().String(),
			AlertType: models.AlertTypeHighSeverityItem,
			Severity:  item.Severity,
			Title:     fmt.Sprintf("High severity %s activity detected", item.ScamType),
			Description: fmt.Sprintf(
				"Threat item with severity %d/%d classified as %s (%d phone numbers, %d URLs).",
				item.Severity, models.SeverityMax, item.ScamType,
				len(item.PhoneNumbers), len(item.URLs),
			),
			RelatedItemIDs: []string{item.ID},
			Status:         models.AlertStatusNew,
			CreatedAt:      now,
		}

		if err := g.alerts.Store(ctx, alert); err != nil {
			return raised, fmt.Errorf("failed to store alert for item %s: %w", item.ID, err)
		}
		raised++
	}

	return raised, nil
}
