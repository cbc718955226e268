package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/echofort/threatintel/internal/models"
)

// sourcesFile is the YAML shape of the source registry seed.
type sourcesFile struct {
	Sources []sourceEntry `yaml:"sources"`
}

type sourceEntry struct {
	ID       string   `yaml:"id"`
	Name     string   `yaml:"name"`
	Type     string   `yaml:"type"`
	URL      string   `yaml:"url"`
	Keywords []string `yaml:"keywords"`
	Active   *bool    `yaml:"active"`
	Priority int      `yaml:"priority"`
}

// LoadSources reads the YAML source registry seed file. Entries default
// to active when the flag is omitted.
func LoadSources(path string) ([]models.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	now := time.Now()
	sources := make([]models.Source, 0, len(file.Sources))
	for i, entry := range file.Sources {
		if entry.ID == "" {
			return nil, fmt.Errorf("source %d: id is required", i)
		}
		if entry.URL == "" {
			return nil, fmt.Errorf("source %s: url is required", entry.ID)
		}

		active := true
		if entry.Active != nil {
			active = *entry.Active
		}

		name := entry.Name
		if name == "" {
			name = entry.ID
		}

		sourceType := models.SourceType(entry.Type)
		if entry.Type == "" {
			sourceType = models.SourceTypeOther
		}

		sources = append(sources, models.Source{
			ID:        entry.ID,
			Name:      name,
			Type:      sourceType,
			URL:       entry.URL,
			Keywords:  entry.Keywords,
			Active:    active,
			Priority:  entry.Priority,
			CreatedAt: now,
		})
	}

	return sources, nil
}
