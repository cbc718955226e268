package scanner

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractPhones(t *testing.T) {
	extractor := NewExtractor(10, 10)

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "country code with spaces and hyphens",
			text: "Call +91 9876543210 or +91-9876543211 now",
			want: []string{"+919876543210", "+919876543211"},
		},
		{
			name: "bare ten digit mobile number",
			text: "Contact 9876543210 for refund",
			want: []string{"9876543210"},
		},
		{
			name: "same number in different formats deduplicates",
			text: "Call +919876543210 or +91 9876543210",
			want: []string{"+919876543210"},
		},
		{
			name: "no numbers",
			text: "No contact details in this text",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Phones(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Phones(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractPhonesCapped(t *testing.T) {
	extractor := NewExtractor(10, 10)

	var b strings.Builder
	for i := 0; i < 15; i++ {
		b.WriteString("+91 98765432")
		b.WriteByte(byte('0' + i%10))
		b.WriteByte(byte('0' + i/10))
		b.WriteString(" ")
	}

	phones := extractor.Phones(b.String())
	if len(phones) > 10 {
		t.Errorf("expected at most 10 phones, got %d", len(phones))
	}
}

func TestExtractURLs(t *testing.T) {
	extractor := NewExtractor(10, 10)

	text := "Visit https://fake-bank.example.com/login and http://scam.example.org. " +
		"Again: https://fake-bank.example.com/login"

	urls := extractor.URLs(text)
	want := []string{"https://fake-bank.example.com/login", "http://scam.example.org"}
	if !reflect.DeepEqual(urls, want) {
		t.Errorf("URLs() = %v, want %v", urls, want)
	}
}

func TestExtractURLsCapped(t *testing.T) {
	extractor := NewExtractor(10, 2)

	text := "https://a.example.com https://b.example.com https://c.example.com"
	urls := extractor.URLs(text)
	if len(urls) != 2 {
		t.Errorf("expected 2 urls, got %d", len(urls))
	}
}
