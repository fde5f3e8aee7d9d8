package orchestrator

import (
	"fmt"
	"strings"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
)

const noItemsMessage = "No valid QR items found in the payload."

const noCodesMessage = "No QR codes found in the image."

// FallbackMessage builds the computed-only summary for a single payment.
// It depends on nothing but its arguments.
func FallbackMessage(fx model.FxBreakdown, risk model.RiskAssessment) string {
	cur := fx.ToCurrency

	var sb strings.Builder
	sb.WriteString("Here is the computed breakdown for this payment:\n")
	fmt.Fprintf(&sb, "- Base converted amount: %s %s\n", common.FormatMoney(fx.BaseHome), cur)
	fmt.Fprintf(&sb, "- FX markup: %s %s\n", common.FormatMoney(fx.MarkupHome), cur)
	fmt.Fprintf(&sb, "- Network fee (approx.): %s %s\n", common.FormatMoney(fx.NetworkFeeHome), cur)
	fmt.Fprintf(&sb, "- Total estimated charge: %s %s\n", common.FormatMoney(fx.TotalHome), cur)
	fmt.Fprintf(&sb, "- Risk level: %s\n", risk.Level)
	if len(risk.Reasons) > 0 {
		fmt.Fprintf(&sb, "- Risk notes: %s\n", strings.Join(risk.Reasons, " "))
	}
	sb.WriteString(recommendation(risk.Level))
	return sb.String()
}

// MultiFallbackMessage builds the computed-only summary for several payments.
func MultiFallbackMessage(items []ItemResult, total float64, homeCurrency string, anyHigh bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Decoded %d QR items.\n", len(items))
	for i, item := range items {
		fmt.Fprintf(&sb, "- Item %d: merchant %s (%s), %s %s -> %s %s, risk %s\n",
			i+1, item.QRInfo.MerchantID, item.QRInfo.Country,
			common.FormatMoney(item.QRInfo.Amount), item.QRInfo.Currency,
			common.FormatMoney(item.FXResult.TotalHome), item.FXResult.ToCurrency,
			item.RiskResult.Level)
	}
	fmt.Fprintf(&sb, "Aggregate total: %s %s\n", common.FormatMoney(total), homeCurrency)
	if anyHigh {
		sb.WriteString("Warning: at least one item is HIGH risk. Review it before paying.\n")
		sb.WriteString(recommendation(model.RiskHigh))
	} else {
		sb.WriteString(recommendation(model.RiskLow))
	}
	return sb.String()
}

func recommendation(level model.RiskLevel) string {
	if level.AtLeastHigh() {
		return "Recommendation: Do not proceed unless you trust this merchant and expected this amount."
	}
	return "Recommendation: Proceed only if this total and risk level match your expectation."
}
