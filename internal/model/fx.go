package model

// Provenance records where an FX rate came from.
type Provenance string

// Rate provenance tags.
const (
	ProvenanceSameCurrency    Provenance = "same-currency"
	ProvenanceLive            Provenance = "live"
	ProvenanceCache           Provenance = "cache"
	ProvenanceCuratedFallback Provenance = "curated-fallback"
	ProvenanceDefault         Provenance = "default"
)

// FxBreakdown is the home-currency cost of a foreign amount.
// TotalHome is always BaseHome + MarkupHome + NetworkFeeHome, and BaseHome is
// always the local amount times Rate; nothing is rounded here.
type FxBreakdown struct {
	FromCurrency   string     `json:"from_currency"`
	ToCurrency     string     `json:"to_currency"`
	Provenance     Provenance `json:"provenance_tag"`
	Notes          string     `json:"notes"`
	Rate           float64    `json:"rate"`
	AmountLocal    float64    `json:"amount_local"`
	BaseHome       float64    `json:"base_home"`
	MarkupHome     float64    `json:"markup_home"`
	NetworkFeeHome float64    `json:"network_fee_home"`
	TotalHome      float64    `json:"total_home"`
}
