package model

import (
	"encoding/json"
	"time"
)

// Scan modes recorded in history.
const (
	ModeText  = "text"
	ModeImage = "image"
)

// HistoryRecord is one durable row describing a completed scan.
type HistoryRecord struct {
	CreatedAt    time.Time       `json:"created_at"`
	TotalHome    *float64        `json:"total_home"`
	UserID       string          `json:"user_id"`
	SessionID    string          `json:"session_id,omitempty"`
	Mode         string          `json:"mode"`
	InputRepr    string          `json:"input_repr"`
	HomeCurrency string          `json:"home_currency"`
	RiskLevel    string          `json:"risk_level"`
	Note         string          `json:"note"`
	RawResult    json.RawMessage `json:"raw_result,omitempty"`
	ID           int64           `json:"id"`
}
