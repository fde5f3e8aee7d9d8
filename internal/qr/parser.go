// Package qr decodes QR payment payloads from text and images.
package qr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
)

// DefaultMerchantID is assigned when a payload carries no merchant field.
const DefaultMerchantID = "M12345"

// payloadPattern matches QR:<country>:<currency>:<amount>[:<merchant>].
var payloadPattern = regexp.MustCompile(`^(?i)QR:([a-z]{2}):([a-z]{3}):([+-]?\d+(?:\.\d+)?)(?::([A-Za-z0-9_.-]{1,64}))?$`)

// candidateSeparators split a multi-QR payload into individual candidates.
var candidateSeparators = regexp.MustCompile(`[,\s]+`)

// Parser decodes demo QR payloads.
type Parser struct {
	// Strict makes a multi-QR payload without any valid candidate an error
	// instead of an empty multiple result.
	Strict bool
}

// NewParser creates a lenient parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes payload. A lone candidate yields a single result and must be
// valid; several candidates yield a multiple result with invalid ones skipped.
func (p *Parser) Parse(payload string) (model.ParseResult, error) {
	candidates := splitCandidates(payload)

	switch len(candidates) {
	case 0:
		return model.ParseResult{}, common.ErrEmptyInput
	case 1:
		rec, err := ParseRecord(candidates[0])
		if err != nil {
			return model.ParseResult{}, err
		}
		return model.NewSingleResult(rec), nil
	}

	items := make([]model.TransactionRecord, 0, len(candidates))
	invalid := 0
	for _, c := range candidates {
		rec, err := ParseRecord(c)
		if err != nil {
			invalid++
			continue
		}
		items = append(items, rec)
	}

	if p.Strict && len(items) == 0 {
		return model.ParseResult{}, fmt.Errorf("%w: %d candidates rejected", common.ErrNoValidItems, invalid)
	}

	return model.NewMultipleResult(items, invalid), nil
}

// ParseRecord decodes a single QR:<CC>:<CUR>:<AMOUNT>[:<MERCHANT>] candidate.
func ParseRecord(candidate string) (model.TransactionRecord, error) {
	candidate = strings.TrimSpace(candidate)
	matches := payloadPattern.FindStringSubmatch(candidate)
	if matches == nil {
		return model.TransactionRecord{}, fmt.Errorf("%w: %q", common.ErrInvalidPayload, candidate)
	}

	amount, err := strconv.ParseFloat(matches[3], 64)
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("%w: amount %q: %w", common.ErrInvalidPayload, matches[3], err)
	}

	merchant := matches[4]
	if merchant == "" {
		merchant = DefaultMerchantID
	}

	return model.TransactionRecord{
		MerchantID: merchant,
		Country:    strings.ToUpper(matches[1]),
		Currency:   strings.ToUpper(matches[2]),
		Amount:     amount,
		Raw:        candidate,
	}, nil
}

func splitCandidates(payload string) []string {
	fields := candidateSeparators.Split(strings.TrimSpace(payload), -1)
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
