package llm

import (
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/qrpay/internal/common"
)

// Kind classifies a completion failure.
type Kind string

// Completion failure kinds.
const (
	KindNetwork           Kind = "network"
	KindAuth              Kind = "auth"
	KindRateLimited       Kind = "rate_limited"
	KindMalformedResponse Kind = "malformed_response"
	KindCoolingDown       Kind = "cooling_down"
)

// CompletionError is returned for every failed completion.
type CompletionError struct {
	Err        error
	Kind       Kind
	StatusCode int
	RetryAfter time.Duration
}

func (e *CompletionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("completion failed (%s)", e.Kind)
	}
	return fmt.Sprintf("completion failed (%s): %v", e.Kind, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// Is matches common.ErrRateLimit for rate-limited and cooling-down failures.
func (e *CompletionError) Is(target error) bool {
	return target == common.ErrRateLimit && (e.Kind == KindRateLimited || e.Kind == KindCoolingDown)
}

// KindOf extracts the failure kind from err, defaulting to network.
func KindOf(err error) Kind {
	var ce *CompletionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindNetwork
}

// retryable reports whether another attempt could succeed soon.
func (e *CompletionError) retryable() bool {
	return e.Kind == KindNetwork && (e.StatusCode == 0 || e.StatusCode >= 500)
}
