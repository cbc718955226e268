package scanner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchExtractsVisibleText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "ThreatIntelBot") {
			t.Errorf("expected bot user agent, got %q", ua)
		}
		w.Write([]byte(`<html><head><style>body { color: red }</style></head>
			<body><h1>Fraud   advisory</h1>
			<script>var x = "ignore me";</script>
			<p>Callers demanding OTP codes.</p></body></html>`))
	}))
	defer server.Close()

	fetcher := NewFetcher(5 * time.Second)
	text, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}

	if text != "Fraud advisory Callers demanding OTP codes." {
		t.Errorf("unexpected extracted text: %q", text)
	}
	if strings.Contains(text, "ignore me") {
		t.Error("script content leaked into extracted text")
	}
}

func TestFetchStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(5 * time.Second)
	_, err := fetcher.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Kind != FetchErrorStatus {
		t.Errorf("expected status kind, got %q", fetchErr.Kind)
	}
	if fetchErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", fetchErr.StatusCode)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	fetcher := NewFetcher(50 * time.Millisecond)
	_, err := fetcher.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Kind != FetchErrorTimeout {
		t.Errorf("expected timeout kind, got %q", fetchErr.Kind)
	}
}

func TestFetchBoundsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body><p>"))
		w.Write([]byte(strings.Repeat("scam advisory content ", 4096)))
		w.Write([]byte("</p></body></html>"))
	}))
	defer server.Close()

	fetcher := NewFetcher(5 * time.Second)
	fetcher.maxBody = 1024

	text, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("unexpected fetch error: %v", err)
	}
	if len(text) > 1024 {
		t.Errorf("extracted text exceeds the body cap: %d bytes", len(text))
	}
	if !strings.Contains(text, "scam advisory content") {
		t.Errorf("expected content from the bounded prefix, got %q", text)
	}
}

func TestFetchConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	fetcher := NewFetcher(time.Second)
	_, err := fetcher.Fetch(context.Background(), server.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected *FetchError, got %v", err)
	}
	if fetchErr.Kind != FetchErrorConnection {
		t.Errorf("expected connection kind, got %q", fetchErr.Kind)
	}
}
