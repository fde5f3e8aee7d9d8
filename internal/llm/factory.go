package llm

import (
	"context"
	"fmt"
	"strings"
)

// Supported provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultTemp   = 0.3
	defaultTokens = 512
)

// NewClient creates a raw LLM client based on the provided configuration.
func NewClient(cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case ProviderGemini, "":
		return newGeminiClient(cfg)
	case ProviderOpenAI:
		return newOpenAIClient(cfg)
	case ProviderAnthropic:
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Unavailable is a client used when no credentials are configured. Every call
// fails with an auth error so callers take their fallback path.
type Unavailable struct {
	Reason string
}

// Complete always fails.
func (u Unavailable) Complete(context.Context, string) (string, error) {
	reason := u.Reason
	if reason == "" {
		reason = "no API key configured"
	}
	return "", &CompletionError{Kind: KindAuth, Err: fmt.Errorf("%s", reason)}
}

func defaultTemperature(t float64) float64 {
	if t <= 0 {
		return defaultTemp
	}
	return t
}

func defaultMaxTokens(n int) int {
	if n <= 0 {
		return defaultTokens
	}
	return n
}
