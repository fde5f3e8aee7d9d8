package orchestrator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/qrpay/internal/model"
)

const responseInstruction = "Now respond to the user. " +
	"Include: final cost in home currency, short fee breakdown, and a risk recommendation."

// systemPrompt frames the assistant for one user's preferences.
func systemPrompt(profile model.UserProfile) string {
	return fmt.Sprintf("You are a travel payment assistant agent. "+
		"The user's home currency is %s. "+
		"User risk preference: %s. "+
		"Always explain final amounts in home currency and give a clear, concise risk note.",
		profile.HomeCurrency, profile.RiskPreference)
}

// toolResults is the machine-readable dump embedded in the prompt.
type toolResults struct {
	Decoded      *model.TransactionRecord `json:"decoded_qr,omitempty"`
	FX           *model.FxBreakdown       `json:"fx_result,omitempty"`
	Risk         *model.RiskAssessment    `json:"risk_result,omitempty"`
	TotalHome    *float64                 `json:"aggregate_total_home,omitempty"`
	Count        *int                     `json:"item_count,omitempty"`
	HomeCurrency string                   `json:"home_currency"`
	Items        []ItemResult             `json:"items,omitempty"`
	AnyHighRisk  bool                     `json:"any_high_risk,omitempty"`
}

func toolResultsFor(res *Result) toolResults {
	if res.Multiple {
		return toolResults{
			Items:        res.Items,
			Count:        res.Count,
			TotalHome:    res.TotalHome,
			HomeCurrency: res.HomeCurrency,
			AnyHighRisk:  res.AnyHighRisk,
		}
	}
	return toolResults{
		Decoded:      res.QRInfo,
		FX:           res.FXResult,
		Risk:         res.RiskResult,
		HomeCurrency: res.HomeCurrency,
	}
}

// buildPrompt assembles system framing, transcript, tool results and the
// instruction, in that order.
func buildPrompt(profile model.UserProfile, history []model.Turn, res *Result) (string, error) {
	dump, err := json.MarshalIndent(toolResultsFor(res), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode tool results: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(systemPrompt(profile))
	sb.WriteString("\n\nConversation so far:\n")
	for i, turn := range history {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%s: %s", turn.Role, turn.Content)
	}
	sb.WriteString("\n\n---\nTool results:\n")
	sb.Write(dump)
	sb.WriteString("\n\n")
	sb.WriteString(responseInstruction)
	return sb.String(), nil
}
