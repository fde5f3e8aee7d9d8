package model

import (
	"maps"
	"time"
)

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is a single conversation entry.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Session status values.
const (
	SessionIdle     = "IDLE"
	SessionScanned  = "SCANNED"
	SessionDegraded = "DEGRADED"
	SessionEmpty    = "NO_ITEMS"
)

// MetaLastQRSummary is the metadata key holding a one-line summary of the
// most recent scan.
const MetaLastQRSummary = "last_qr_summary"

// Session is the conversation state for one session identifier.
type Session struct {
	CreatedAt time.Time      `json:"created_at"`
	Metadata  map[string]any `json:"metadata"`
	ID        string         `json:"session_id"`
	Status    string         `json:"status"`
	History   []Turn         `json:"history"`
}

// Clone returns a deep copy of the session's history and metadata.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.History = make([]Turn, len(s.History))
	copy(c.History, s.History)
	c.Metadata = make(map[string]any, len(s.Metadata))
	maps.Copy(c.Metadata, s.Metadata)
	return &c
}
