package session

import "github.com/Veraticus/qrpay/internal/model"

// DefaultMaxTurns is the number of most recent turns kept verbatim.
const DefaultMaxTurns = 10

// SummaryTurn is the synthetic turn that replaces dropped history.
const SummaryTurn = "(Earlier conversation summarized: multiple QR scans this trip.)"

// Compact bounds history to the newest maxTurns turns. When anything is
// dropped a single system summary turn is prepended, so the result never
// exceeds maxTurns+1 entries. The input slice is not modified.
func Compact(history []model.Turn, maxTurns int) []model.Turn {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if len(history) <= maxTurns {
		return history
	}

	out := make([]model.Turn, 0, maxTurns+1)
	out = append(out, model.Turn{Role: model.RoleSystem, Content: SummaryTurn})
	out = append(out, history[len(history)-maxTurns:]...)
	return out
}
