package model

// RiskLevel buckets a numeric risk score.
type RiskLevel string

// Risk levels, ordered from least to most severe.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Severity returns an ordinal for comparing levels. Unknown levels sort lowest.
func (l RiskLevel) Severity() int {
	switch l {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	default:
		return 0
	}
}

// AtLeastHigh reports whether the level is high or worse.
func (l RiskLevel) AtLeastHigh() bool {
	return l.Severity() >= RiskHigh.Severity()
}

// RiskRequest is the input to risk scoring.
type RiskRequest struct {
	UserID     string
	MerchantID string
	Country    string
	Amount     float64
}

// RiskAssessment is the outcome of scoring a payment. Reasons is never empty.
type RiskAssessment struct {
	Level   RiskLevel `json:"risk_level"`
	Reasons []string  `json:"reasons"`
	Score   float64   `json:"risk_score"`
}
