// Package risk implements the additive heuristic used to flag unusual QR payments.
//
// The score is the sum of an amount, a country and a merchant contribution,
// reduced slightly when the user has paid the merchant before, and clipped to
// [0, 100]. Scores below 30 are low risk, below 60 medium, and high otherwise.
package risk

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/qrpay/internal/model"
)

// Level thresholds.
const (
	MediumThreshold = 30.0
	HighThreshold   = 60.0
)

// GenericReason is used when no specific signal fired.
const GenericReason = "Standard risk evaluation; no specific concerns detected."

var (
	lowRiskCountries    = map[string]bool{"IN": true, "US": true, "JP": true, "EU": true, "GB": true}
	mediumRiskCountries = map[string]bool{"TH": true, "SG": true, "AE": true}
	highRiskCountries   = map[string]bool{"XX": true, "ZZ": true}
)

// MerchantMemory reports whether a user has paid a merchant before.
type MerchantMemory interface {
	HasSeenMerchant(ctx context.Context, userID, merchantID string) bool
}

// Scorer scores payments. The zero value works without merchant memory.
type Scorer struct {
	memory MerchantMemory
}

// NewScorer creates a scorer. memory may be nil.
func NewScorer(memory MerchantMemory) *Scorer {
	return &Scorer{memory: memory}
}

// Score evaluates req. It never fails and always returns at least one reason.
func (s *Scorer) Score(ctx context.Context, req model.RiskRequest) model.RiskAssessment {
	var reasons []string

	score := scoreAmount(req.Amount, &reasons) +
		scoreCountry(req.Country, &reasons) +
		scoreMerchant(req.MerchantID, &reasons)

	if s.memory != nil && req.MerchantID != "" && s.memory.HasSeenMerchant(ctx, req.UserID, req.MerchantID) {
		score -= 5
		reasons = append(reasons, "Merchant seen before for this user.")
	}

	score = max(0, min(100, score))

	if len(reasons) == 0 {
		reasons = append(reasons, GenericReason)
	}

	return model.RiskAssessment{
		Score:   score,
		Level:   LevelFor(score),
		Reasons: reasons,
	}
}

// LevelFor maps a score to its level.
func LevelFor(score float64) model.RiskLevel {
	switch {
	case score < MediumThreshold:
		return model.RiskLow
	case score < HighThreshold:
		return model.RiskMedium
	default:
		return model.RiskHigh
	}
}

func scoreAmount(amount float64, reasons *[]string) float64 {
	switch {
	case amount <= 0:
		*reasons = append(*reasons, "Amount is zero or negative; unusual transaction.")
		return 20
	case amount < 5000:
		return 5
	case amount < 50_000:
		*reasons = append(*reasons, "Medium-sized transaction amount.")
		return 20
	default:
		*reasons = append(*reasons, "High-value transaction amount.")
		return 40
	}
}

func scoreCountry(country string, reasons *[]string) float64 {
	country = strings.ToUpper(strings.TrimSpace(country))

	switch {
	case lowRiskCountries[country]:
		return 5
	case mediumRiskCountries[country]:
		*reasons = append(*reasons, fmt.Sprintf("Country %s is medium risk in default mapping.", country))
		return 15
	case highRiskCountries[country]:
		*reasons = append(*reasons, fmt.Sprintf("Country %s is high risk in default mapping.", country))
		return 30
	}

	if country == "" {
		country = "UNKNOWN"
	}
	*reasons = append(*reasons, fmt.Sprintf("Country %s is not in known list; treating as medium risk.", country))
	return 15
}

func scoreMerchant(merchantID string, reasons *[]string) float64 {
	n := len(strings.TrimSpace(merchantID))

	switch {
	case n == 0:
		*reasons = append(*reasons, "Missing merchant ID.")
		return 20
	case n < 4:
		*reasons = append(*reasons, "Very short merchant ID; could be suspicious.")
		return 15
	case n > 20:
		*reasons = append(*reasons, "Unusually long merchant ID.")
		return 10
	default:
		return 5
	}
}
