package orchestrator

import "github.com/Veraticus/qrpay/internal/model"

// ItemResult is the per-item outcome of a multi-QR scan.
type ItemResult struct {
	QRInfo     model.TransactionRecord `json:"qr_info"`
	FXResult   model.FxBreakdown       `json:"fx_result"`
	RiskResult model.RiskAssessment    `json:"risk_result"`
}

// Result is the uniform envelope returned for every scan. Multiple is the
// discriminant: when false the singular QRInfo, FXResult and RiskResult are
// set; when true Items, Count and TotalHome are set instead.
type Result struct {
	QRInfo       *model.TransactionRecord `json:"qr_info,omitempty"`
	FXResult     *model.FxBreakdown       `json:"fx_result,omitempty"`
	RiskResult   *model.RiskAssessment    `json:"risk_result,omitempty"`
	TotalHome    *float64                 `json:"total_home,omitempty"`
	Count        *int                     `json:"count,omitempty"`
	SessionID    string                   `json:"session_id"`
	UserCountry  string                   `json:"user_country,omitempty"`
	HomeCurrency string                   `json:"home_currency"`
	Message      string                   `json:"message"`
	Items        []ItemResult             `json:"items,omitempty"`
	InvalidCount int                      `json:"invalid_count,omitempty"`
	Multiple     bool                     `json:"multiple,omitempty"`
	AnyHighRisk  bool                     `json:"any_high_risk,omitempty"`
	Degraded     bool                     `json:"degraded"`
}

// Total returns the amount charged in the home currency.
func (r *Result) Total() (float64, bool) {
	if r.Multiple {
		if r.TotalHome == nil {
			return 0, false
		}
		return *r.TotalHome, true
	}
	if r.FXResult == nil {
		return 0, false
	}
	return r.FXResult.TotalHome, true
}

// RiskLabel summarizes risk for display: the single item's level, or for
// multiple items "high" when any item is high and "mixed" otherwise.
func (r *Result) RiskLabel() string {
	if !r.Multiple {
		if r.RiskResult == nil {
			return ""
		}
		return string(r.RiskResult.Level)
	}
	switch {
	case len(r.Items) == 0:
		return ""
	case r.AnyHighRisk:
		return string(model.RiskHigh)
	default:
		return "mixed"
	}
}
