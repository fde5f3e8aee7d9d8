package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/service"
)

// Service wraps a Client with rate limiting, bounded retries, a per-call
// timeout, and a shared cooldown.
type Service struct {
	client   Client
	limiter  *rateLimiter
	cooldown *Cooldown
	logger   *slog.Logger
	retry    service.RetryOptions
	timeout  time.Duration
}

// NewService creates a completion service around client.
func NewService(client Client, cfg Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	attempts := cfg.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}

	return &Service{
		client:   client,
		limiter:  newRateLimiter(cfg.RateLimit),
		cooldown: NewCooldown(cfg.Cooldown),
		logger:   logger,
		timeout:  timeout,
		retry: service.RetryOptions{
			MaxAttempts:  attempts,
			InitialDelay: cfg.RetryDelay,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// NewServiceFromConfig builds the provider client and wraps it. A missing API
// key yields a service whose calls always fail with an auth error.
func NewServiceFromConfig(cfg Config, logger *slog.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		return NewService(Unavailable{Reason: fmt.Sprintf("%s API key is not set", cfg.Provider)}, cfg, logger), nil
	}

	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(client, cfg, logger), nil
}

// Complete returns provider text for prompt. While the cooldown is active it
// fails immediately with KindCoolingDown without contacting the provider.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	if s.cooldown.Active() {
		return "", &CompletionError{
			Kind: KindCoolingDown,
			Err:  fmt.Errorf("cooling down for %s", s.cooldown.Remaining().Round(time.Second)),
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var text string
	err := common.WithRetry(ctx, func() error {
		if err := s.limiter.wait(ctx); err != nil {
			return common.Permanent(&CompletionError{Kind: KindNetwork, Err: err})
		}

		var callErr error
		text, callErr = s.client.Complete(ctx, prompt)
		if callErr == nil {
			return nil
		}

		var ce *CompletionError
		if errors.As(callErr, &ce) && ce.retryable() {
			return callErr
		}
		return common.Permanent(callErr)
	}, s.retry)
	if err == nil {
		return text, nil
	}

	var ce *CompletionError
	if errors.As(err, &ce) && ce.Kind == KindRateLimited {
		s.cooldown.Trip(ce.RetryAfter)
		s.logger.Warn("completion rate limited, entering cooldown",
			"remaining", s.cooldown.Remaining().Round(time.Second))
	}
	if !errors.As(err, &ce) {
		err = &CompletionError{Kind: KindNetwork, Err: err}
	}

	s.logger.Debug("completion failed", "kind", KindOf(err), "error", err)
	return "", err
}

// Cooldown exposes the service's cooldown so tests and operators can reset it.
func (s *Service) Cooldown() *Cooldown {
	return s.cooldown
}
