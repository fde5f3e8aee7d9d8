package model

// TransactionRecord is one decoded QR payment item.
type TransactionRecord struct {
	MerchantID string  `json:"merchant_id"`
	Country    string  `json:"country"`
	Currency   string  `json:"currency"`
	Raw        string  `json:"raw,omitempty"`
	Amount     float64 `json:"amount"`
}

// ParseKind discriminates the shape of a ParseResult.
type ParseKind int

// Parse result shapes.
const (
	ParseSingle ParseKind = iota + 1
	ParseMultiple
)

// String returns the shape name.
func (k ParseKind) String() string {
	switch k {
	case ParseSingle:
		return "single"
	case ParseMultiple:
		return "multiple"
	default:
		return "unknown"
	}
}

// ParseResult is the tagged output of the QR parser: either a single record or
// a list of records decoded from a multi-QR payload. The zero value is invalid.
type ParseResult struct {
	items        []TransactionRecord
	kind         ParseKind
	invalidCount int
}

// NewSingleResult wraps one decoded record.
func NewSingleResult(rec TransactionRecord) ParseResult {
	return ParseResult{kind: ParseSingle, items: []TransactionRecord{rec}}
}

// NewMultipleResult wraps the valid records of a multi-QR payload along with
// the number of candidates that failed to parse.
func NewMultipleResult(items []TransactionRecord, invalidCount int) ParseResult {
	copied := make([]TransactionRecord, len(items))
	copy(copied, items)
	return ParseResult{kind: ParseMultiple, items: copied, invalidCount: invalidCount}
}

// Kind reports which variant this result holds.
func (r ParseResult) Kind() ParseKind {
	return r.kind
}

// Single returns the record of a single-variant result.
func (r ParseResult) Single() (TransactionRecord, bool) {
	if r.kind != ParseSingle || len(r.items) != 1 {
		return TransactionRecord{}, false
	}
	return r.items[0], true
}

// Multiple returns the records and invalid candidate count of a multiple-variant result.
func (r ParseResult) Multiple() ([]TransactionRecord, int, bool) {
	if r.kind != ParseMultiple {
		return nil, 0, false
	}
	copied := make([]TransactionRecord, len(r.items))
	copy(copied, r.items)
	return copied, r.invalidCount, true
}
