package scanner

import (
	"regexp"
	"strings"
)

// phonePatterns are tried in order, most specific first, so that a number
// with a country prefix is captured once rather than as multiple fragments.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\+91[\s-]?\d{10}`),
	regexp.MustCompile(`91[\s-]?\d{10}`),
	regexp.MustCompile(`\b[6-9]\d{9}\b`),
	regexp.MustCompile(`\d{3}[\s-]?\d{3}[\s-]?\d{4}`),
}

var urlPattern = regexp.MustCompile(`https?://[^\s<>"']+`)

// Extractor pulls phone numbers and URLs out of plain text.
type Extractor struct {
	maxPhones int
	maxURLs   int
}

// NewExtractor creates an extractor with per-item caps on extracted values.
func NewExtractor(maxPhones, maxURLs int) *Extractor {
	return &Extractor{maxPhones: maxPhones, maxURLs: maxURLs}
}

// Phones extracts phone numbers from text, normalized and deduplicated
// in first-seen order, capped at the configured maximum. Each pattern
// consumes its matches so a later, looser pattern cannot re-capture the
// bare-digit tail of a prefixed number.
func (e *Extractor) Phones(text string) []string {
	seen := make(map[string]bool)
	phones := []string{}
	remaining := []byte(text)

	for _, pattern := range phonePatterns {
		for _, loc := range pattern.FindAllIndex(remaining, -1) {
			normalized := normalizePhone(string(remaining[loc[0]:loc[1]]))
			for i := loc[0]; i < loc[1]; i++ {
				remaining[i] = ' '
			}
			if normalized == "" || seen[normalized] {
				continue
			}
			seen[normalized] = true
			phones = append(phones, normalized)
		}
	}

	if len(phones) > e.maxPhones {
		phones = phones[:e.maxPhones]
	}
	return phones
}

// URLs extracts HTTP and HTTPS URLs from text, deduplicated in
// first-seen order, capped at the configured maximum.
func (e *Extractor) URLs(text string) []string {
	seen := make(map[string]bool)
	urls := []string{}

	for _, match := range urlPattern.FindAllString(text, -1) {
		cleaned := strings.TrimRight(match, ".,;)")
		if cleaned == "" || seen[cleaned] {
			continue
		}
		seen[cleaned] = true
		urls = append(urls, cleaned)
		if len(urls) >= e.maxURLs {
			break
		}
	}

	return urls
}

// normalizePhone strips separators so the same number in different
// formats aggregates into one pattern value.
func normalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r == '+' || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
