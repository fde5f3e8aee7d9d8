package fx

// Pricing defaults.
const (
	DefaultMarkupPercent = 0.03
	DefaultNetworkFee    = 11.0
	DefaultRate          = 80.0
)

// CuratedRates is the built-in fallback table, keyed FROM_TO.
func CuratedRates() map[string]float64 {
	return map[string]float64{
		"JPY_INR": 0.55,
		"USD_INR": 83.0,
		"THB_INR": 1.0,
		"EUR_INR": 1.0,
	}
}
