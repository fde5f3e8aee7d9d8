// Package config loads application settings from viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/spf13/viper"
)

// Config is the fully resolved application configuration.
type Config struct {
	HomeCurrency   string
	RiskPreference string
	PreferredCard  string
	History        HistoryConfig
	Server         ServerConfig
	LLM            LLMConfig
	FX             FXConfig
	Session        SessionConfig
	Sheets         SheetsConfig
}

// SheetsConfig configures the Google Sheets history export.
type SheetsConfig struct {
	SpreadsheetID      string
	SpreadsheetName    string
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
}

// HistoryConfig locates the durable scan log.
type HistoryConfig struct {
	DBPath string
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string
}

// LLMConfig configures the completion service.
type LLMConfig struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	Cooldown   time.Duration
	RetryDelay time.Duration
	RateLimit  int
	MaxRetries int
	MaxTokens  int
}

// FXConfig configures the FX calculator.
type FXConfig struct {
	FallbackRates map[string]float64
	LiveURL       string
	Timeout       time.Duration
	CacheTTL      time.Duration
	MarkupPercent float64
	NetworkFee    float64
	DefaultRate   float64
	DisableLive   bool
}

// SessionConfig configures conversation handling.
type SessionConfig struct {
	MaxTurns int
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("home_currency", "INR")
	v.SetDefault("risk_preference", "balanced")
	v.SetDefault("preferred_card", "VISA")

	v.SetDefault("history.db_path", "~/.local/share/qrpay/history.db")
	v.SetDefault("server.addr", ":8000")

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.cooldown", 60*time.Second)
	v.SetDefault("llm.retry_delay", time.Second)
	v.SetDefault("llm.rate_limit", 60)
	v.SetDefault("llm.max_retries", 1)
	v.SetDefault("llm.max_tokens", 512)

	v.SetDefault("fx.live_url", "https://open.er-api.com/v6/latest/")
	v.SetDefault("fx.timeout", 5*time.Second)
	v.SetDefault("fx.cache_ttl", time.Hour)
	v.SetDefault("fx.markup_percent", 0.03)
	v.SetDefault("fx.network_fee", 11.0)
	v.SetDefault("fx.default_rate", 80.0)

	v.SetDefault("session.max_turns", 10)

	v.SetDefault("sheets.spreadsheet_name", "QR Payment History")
}

// Load resolves a Config from v. API keys fall back to the provider's
// conventional environment variable when not configured.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		HomeCurrency:   strings.ToUpper(v.GetString("home_currency")),
		RiskPreference: v.GetString("risk_preference"),
		PreferredCard:  v.GetString("preferred_card"),
		History: HistoryConfig{
			DBPath: ExpandPath(v.GetString("history.db_path")),
		},
		Server: ServerConfig{
			Addr: v.GetString("server.addr"),
		},
		LLM: LLMConfig{
			Provider:   strings.ToLower(v.GetString("llm.provider")),
			Model:      v.GetString("llm.model"),
			APIKey:     v.GetString("llm.api_key"),
			BaseURL:    v.GetString("llm.base_url"),
			Timeout:    v.GetDuration("llm.timeout"),
			Cooldown:   v.GetDuration("llm.cooldown"),
			RetryDelay: v.GetDuration("llm.retry_delay"),
			RateLimit:  v.GetInt("llm.rate_limit"),
			MaxRetries: v.GetInt("llm.max_retries"),
			MaxTokens:  v.GetInt("llm.max_tokens"),
		},
		FX: FXConfig{
			LiveURL:       v.GetString("fx.live_url"),
			Timeout:       v.GetDuration("fx.timeout"),
			CacheTTL:      v.GetDuration("fx.cache_ttl"),
			MarkupPercent: v.GetFloat64("fx.markup_percent"),
			NetworkFee:    v.GetFloat64("fx.network_fee"),
			DefaultRate:   v.GetFloat64("fx.default_rate"),
			DisableLive:   v.GetBool("fx.disable_live"),
			FallbackRates: loadRates(v.GetStringMap("fx.fallback_rates")),
		},
		Session: SessionConfig{
			MaxTurns: v.GetInt("session.max_turns"),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:      v.GetString("sheets.spreadsheet_id"),
			SpreadsheetName:    v.GetString("sheets.spreadsheet_name"),
			ServiceAccountPath: ExpandPath(v.GetString("sheets.service_account_path")),
			ClientID:           v.GetString("sheets.client_id"),
			ClientSecret:       v.GetString("sheets.client_secret"),
			RefreshToken:       v.GetString("sheets.refresh_token"),
		},
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(apiKeyEnv(cfg.LLM.Provider))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface deep inside a request.
func (c *Config) Validate() error {
	if len(c.HomeCurrency) != 3 {
		return fmt.Errorf("%w: home_currency must be a 3-letter code, got %q", common.ErrInvalidConfig, c.HomeCurrency)
	}
	if c.Session.MaxTurns <= 0 {
		return fmt.Errorf("%w: session.max_turns must be positive", common.ErrInvalidConfig)
	}
	if c.FX.MarkupPercent < 0 || c.FX.NetworkFee < 0 {
		return fmt.Errorf("%w: fx markup and fee cannot be negative", common.ErrInvalidConfig)
	}
	if c.FX.DefaultRate <= 0 {
		return fmt.Errorf("%w: fx.default_rate must be positive", common.ErrInvalidConfig)
	}
	if c.History.DBPath == "" {
		return fmt.Errorf("%w: history.db_path", common.ErrMissingConfig)
	}
	return nil
}

func apiKeyEnv(provider string) string {
	switch provider {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

// loadRates reads pair-keyed rates such as "jpy_inr: 0.55".
func loadRates(raw map[string]any) map[string]float64 {
	rates := make(map[string]float64, len(raw))
	for pair, value := range raw {
		var rate float64
		switch v := value.(type) {
		case float64:
			rate = v
		case int:
			rate = float64(v)
		case int64:
			rate = float64(v)
		default:
			continue
		}
		rates[strings.ToUpper(pair)] = rate
	}
	return rates
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" || path == ":memory:" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
