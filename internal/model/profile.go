package model

// Profile defaults applied when a user is first seen.
const (
	DefaultHomeCurrency   = "INR"
	DefaultPreferredCard  = "VISA"
	DefaultRiskPreference = "balanced"
)

// UserProfile holds a user's payment preferences.
type UserProfile struct {
	UserID         string `json:"user_id"`
	HomeCurrency   string `json:"home_currency"`
	PreferredCard  string `json:"preferred_card"`
	RiskPreference string `json:"risk_preference"`
}

// ProfileUpdate is a partial profile. Empty fields leave the stored value unchanged.
type ProfileUpdate struct {
	HomeCurrency   string `json:"home_currency,omitempty"`
	PreferredCard  string `json:"preferred_card,omitempty"`
	RiskPreference string `json:"risk_preference,omitempty"`
}

// Apply merges the non-empty fields of u into p and returns the result.
func (u ProfileUpdate) Apply(p UserProfile) UserProfile {
	if u.HomeCurrency != "" {
		p.HomeCurrency = u.HomeCurrency
	}
	if u.PreferredCard != "" {
		p.PreferredCard = u.PreferredCard
	}
	if u.RiskPreference != "" {
		p.RiskPreference = u.RiskPreference
	}
	return p
}
