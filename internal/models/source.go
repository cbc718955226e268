package models

import "time"

// Source is an externally configured origin (news site, government portal,
// social feed) scanned for scam indicators each cycle. Sources are created
// and edited by the admin surface; the pipeline treats them as read-only.
type Source struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Type      SourceType `json:"type"`
	URL       string     `json:"url"`
	Keywords  []string   `json:"keywords,omitempty"` // hint phrases configured per source
	Active    bool       `json:"active"`
	Priority  int        `json:"priority"` // higher priority sources are scanned first
	CreatedAt time.Time  `json:"created_at"`
}

// SourceType categorizes the origin platform of a threat intel source.
type SourceType string

const (
	SourceTypeNews       SourceType = "news"
	SourceTypeGovernment SourceType = "government"
	SourceTypeSocial     SourceType = "social_media"
	SourceTypeForum      SourceType = "forum"
	SourceTypeOther      SourceType = "other"
)

// GetDisplayName returns a human-readable identifier for the source.
func (s *Source) GetDisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return string(s.Type) + " source"
}
