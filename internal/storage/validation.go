package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/qrpay/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidRecord = errors.New("invalid history record")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRecord(rec *model.HistoryRecord) error {
	if rec == nil {
		return fmt.Errorf("%w: record", ErrNilParameter)
	}
	if strings.TrimSpace(rec.UserID) == "" {
		return fmt.Errorf("%w: user ID is required", ErrInvalidRecord)
	}
	switch rec.Mode {
	case model.ModeText, model.ModeImage:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidRecord, rec.Mode)
	}
	if len(rec.RawResult) == 0 || !json.Valid(rec.RawResult) {
		return fmt.Errorf("%w: raw result must be valid JSON", ErrInvalidRecord)
	}
	return nil
}
