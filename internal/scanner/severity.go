package scanner

import (
	"github.com/echofort/threatintel/internal/models"
)

// baseSeverity calibrates how dangerous each scam type is before any
// per-item evidence is considered.
var baseSeverity = map[models.ScamType]int{
	models.ScamTypeDigitalArrest:     8,
	models.ScamTypeInvestment:        7,
	models.ScamTypePhishing:          7,
	models.ScamTypeUPIFraud:          6,
	models.ScamTypeOTPFraud:          6,
	models.ScamTypeKYCFraud:          6,
	models.ScamTypeImpersonation:     5,
	models.ScamTypeSocialEngineering: 5,
	models.ScamTypeUnknown:           3,
}

// Score returns an integer severity in [1,10] for an item. Contact
// evidence (phone numbers, URLs) bumps the base severity for the type.
func Score(scamType models.ScamType, phoneCount, urlCount int) int {
	severity, ok := baseSeverity[scamType]
	if !ok {
		severity = baseSeverity[models.ScamTypeUnknown]
	}

	if phoneCount > 0 {
		severity++
	}
	if urlCount > 0 {
		severity++
	}

	if severity < models.SeverityMin {
		severity = models.SeverityMin
	}
	if severity > models.SeverityMax {
		severity = models.SeverityMax
	}

	return severity
}
