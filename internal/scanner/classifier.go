package scanner

import (
	"strings"

	"github.com/echofort/threatintel/internal/models"
)

// categoryKeywords pairs a scam type with the phrases that indicate it.
type categoryKeywords struct {
	ScamType models.ScamType
	Keywords []string
}

// scamCategories is evaluated in order; the first category with any hit
// wins, which keeps classification deterministic for mixed-signal text.
var scamCategories = []categoryKeywords{
	{models.ScamTypeDigitalArrest, []string{"digital arrest", "cyber police", "cbi call", "courier scam", "customs fraud", "parcel scam"}},
	{models.ScamTypeUPIFraud, []string{"upi fraud", "payment link", "qr code scam", "refund scam", "wrong transfer", "paytm fraud"}},
	{models.ScamTypeInvestment, []string{"trading scam", "crypto fraud", "ponzi scheme", "investment fraud", "fake broker", "stock scam"}},
	{models.ScamTypeImpersonation, []string{"fake officer", "bank employee scam", "tech support fraud", "government impersonation"}},
	{models.ScamTypeSocialEngineering, []string{"romance scam", "job fraud", "lottery scam", "prize scam", "donation fraud"}},
	{models.ScamTypePhishing, []string{"phishing", "fake website", "clone site", "credential theft", "fake login"}},
	{models.ScamTypeOTPFraud, []string{"otp scam", "otp sharing", "verification code", "one time password fraud"}},
	{models.ScamTypeKYCFraud, []string{"kyc update", "kyc verification scam", "aadhaar fraud", "pan card scam"}},
}

// Classifier assigns a scam type to raw text by keyword matching.
type Classifier struct {
	maxKeywords int
}

// NewClassifier creates a classifier capping the reported keyword subset.
func NewClassifier(maxKeywords int) *Classifier {
	return &Classifier{maxKeywords: maxKeywords}
}

// Classify returns the scam type for the text and the matched keywords
// across all categories. Text with no keyword hits classifies as unknown.
func (c *Classifier) Classify(text string) (models.ScamType, []string) {
	lower := strings.ToLower(text)

	scamType := models.ScamTypeUnknown
	keywords := []string{}

	for _, category := range scamCategories {
		for _, keyword := range category.Keywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			if scamType == models.ScamTypeUnknown {
				scamType = category.ScamType
			}
			if len(keywords) < c.maxKeywords {
				keywords = append(keywords, keyword)
			}
		}
	}

	return scamType, keywords
}
