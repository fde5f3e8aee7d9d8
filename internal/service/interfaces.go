// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Veraticus/qrpay/internal/model"
)

// Parser turns a raw QR payload into one or more transaction records.
type Parser interface {
	Parse(payload string) (model.ParseResult, error)
}

// ImageDecoder extracts raw QR payload strings from an image file.
// A readable image without any QR code yields an empty slice and no error.
type ImageDecoder interface {
	DecodeFile(ctx context.Context, path string) ([]string, error)
}

// FXConverter prices a foreign amount in the home currency. It never fails;
// degraded rates are reported through the breakdown's provenance tag.
type FXConverter interface {
	Convert(ctx context.Context, amount float64, from, to string) model.FxBreakdown
}

// RiskScorer scores a payment. It never fails.
type RiskScorer interface {
	Score(ctx context.Context, req model.RiskRequest) model.RiskAssessment
}

// Completer produces natural-language text for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProfileStore owns user preference records.
type ProfileStore interface {
	Ensure(ctx context.Context, userID string) model.UserProfile
	Get(ctx context.Context, userID string) (model.UserProfile, bool)
	Upsert(ctx context.Context, userID string, update model.ProfileUpdate) model.UserProfile
	RecordMerchant(ctx context.Context, userID, merchantID string)
	HasSeenMerchant(ctx context.Context, userID, merchantID string) bool
}

// SessionStore owns conversation state. Resolve hands out a working copy of the
// session together with exclusive access to its identifier; the copy becomes
// visible to others only after Commit, and release must always be called.
type SessionStore interface {
	Resolve(ctx context.Context, sessionID string) (session *model.Session, release func(), err error)
	Commit(ctx context.Context, session *model.Session) error
	Get(ctx context.Context, sessionID string) (*model.Session, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// HistoryStore is the append-only durable scan log.
type HistoryStore interface {
	AppendHistory(ctx context.Context, record *model.HistoryRecord) error
	ListHistory(ctx context.Context, userID string, limit int) ([]model.HistoryRecord, error)
	GetHistoryRaw(ctx context.Context, id int64) (json.RawMessage, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
