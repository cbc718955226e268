package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const userAgent = "Mozilla/5.0 (compatible; ThreatIntelBot/1.0)"

// defaultMaxBodyBytes caps how much of a response body is read. A
// pathological source cannot force the whole document into memory.
const defaultMaxBodyBytes = 2 << 20

// FetchErrorKind classifies why a source fetch failed.
type FetchErrorKind string

const (
	FetchErrorTimeout    FetchErrorKind = "timeout"
	FetchErrorConnection FetchErrorKind = "connection"
	FetchErrorStatus     FetchErrorKind = "status"
)

// FetchError describes a failed fetch of a single source.
type FetchError struct {
	Kind       FetchErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchErrorStatus:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves source pages and reduces them to plain text.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
	maxBody int64
}

// NewFetcher creates a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
		maxBody: defaultMaxBodyBytes,
	}
}

// Fetch retrieves the source URL and returns its visible text content.
// Failures are reported as *FetchError so callers can classify them.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{Kind: FetchErrorConnection, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		kind := FetchErrorConnection
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = FetchErrorTimeout
		}
		return "", &FetchError{Kind: kind, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{Kind: FetchErrorStatus, URL: url, StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBody))
	if err != nil {
		return "", &FetchError{Kind: FetchErrorConnection, URL: url, Err: err}
	}

	return ExtractText(doc), nil
}

// ExtractText reduces an HTML document to whitespace-normalized visible text.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()

	text := doc.Find("body").Text()
	if text == "" {
		text = doc.Text()
	}

	return strings.Join(strings.Fields(text), " ")
}

func isTimeout(err error) bool {
	var timeoutErr interface{ Timeout() bool }
	return errors.As(err, &timeoutErr) && timeoutErr.Timeout()
}
