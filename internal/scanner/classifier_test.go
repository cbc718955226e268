package scanner

import (
	"testing"

	"github.com/echofort/threatintel/internal/models"
)

func TestClassify(t *testing.T) {
	classifier := NewClassifier(20)

	tests := []struct {
		name     string
		text     string
		wantType models.ScamType
	}{
		{
			name:     "digital arrest",
			text:     "Victims report a Digital Arrest call claiming to be cyber police",
			wantType: models.ScamTypeDigitalArrest,
		},
		{
			name:     "upi fraud",
			text:     "New QR code scam drains accounts through fake refund scam links",
			wantType: models.ScamTypeUPIFraud,
		},
		{
			name:     "phishing",
			text:     "A fake website harvesting credentials via phishing emails",
			wantType: models.ScamTypePhishing,
		},
		{
			name:     "no signal",
			text:     "Weather forecast says sunny skies all week",
			wantType: models.ScamTypeUnknown,
		},
		{
			name: "mixed signals resolve to earliest category",
			// Both digital arrest and phishing keywords present; the
			// category order decides, not match counts.
			text:     "phishing site promoted during a digital arrest call, fake login, clone site",
			wantType: models.ScamTypeDigitalArrest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotType, _ := classifier.Classify(tt.text)
			if gotType != tt.wantType {
				t.Errorf("Classify(%q) type = %v, want %v", tt.text, gotType, tt.wantType)
			}
		})
	}
}

func TestClassifyKeywords(t *testing.T) {
	classifier := NewClassifier(20)

	_, keywords := classifier.Classify("digital arrest threat with a payment link and phishing page")
	want := map[string]bool{"digital arrest": true, "payment link": true, "phishing": true}

	if len(keywords) != len(want) {
		t.Fatalf("expected %d keywords, got %v", len(want), keywords)
	}
	for _, kw := range keywords {
		if !want[kw] {
			t.Errorf("unexpected keyword %q", kw)
		}
	}
}

func TestClassifyKeywordCap(t *testing.T) {
	classifier := NewClassifier(2)

	_, keywords := classifier.Classify("digital arrest cyber police courier scam phishing fake login")
	if len(keywords) != 2 {
		t.Errorf("expected keyword list capped at 2, got %d", len(keywords))
	}
}
