package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/orchestrator"
)

func TestRenderResult(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		res := &orchestrator.Result{
			SessionID:    "sess-1",
			HomeCurrency: "INR",
			Message:      "You will pay about 860.75 INR.",
			QRInfo:       &model.TransactionRecord{MerchantID: "M12345", Country: "JP", Currency: "JPY", Amount: 1500},
			FXResult: &model.FxBreakdown{
				FromCurrency: "JPY",
				ToCurrency:   "INR",
				Rate:         0.55,
				AmountLocal:  1500,
				TotalHome:    860.75,
				Provenance:   model.ProvenanceCuratedFallback,
			},
			RiskResult: &model.RiskAssessment{Score: 15, Level: model.RiskLow},
			Degraded:   true,
		}

		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, res))

		out := buf.String()
		assert.Contains(t, out, "You will pay about 860.75 INR.")
		assert.Contains(t, out, "1500.00 JPY -> 860.75 INR")
		assert.Contains(t, out, "low (score 15)")
		assert.Contains(t, out, "Language model unavailable")
		assert.Contains(t, out, "session sess-1")
	})

	t.Run("multiple", func(t *testing.T) {
		total, count := 1869.39, 2
		res := &orchestrator.Result{
			SessionID:    "sess-2",
			HomeCurrency: "INR",
			Message:      "Decoded 2 QR items.",
			Multiple:     true,
			TotalHome:    &total,
			Count:        &count,
			InvalidCount: 1,
			Items: []orchestrator.ItemResult{
				{
					QRInfo:     model.TransactionRecord{MerchantID: "M1", Country: "JP", Currency: "JPY", Amount: 1500},
					FXResult:   model.FxBreakdown{ToCurrency: "INR", TotalHome: 860.75},
					RiskResult: model.RiskAssessment{Level: model.RiskLow},
				},
				{
					QRInfo:     model.TransactionRecord{MerchantID: "M2", Country: "US", Currency: "USD", Amount: 11.5},
					FXResult:   model.FxBreakdown{ToCurrency: "INR", TotalHome: 1008.64},
					RiskResult: model.RiskAssessment{Level: model.RiskMedium},
				},
			},
		}

		var buf bytes.Buffer
		require.NoError(t, renderResult(&buf, res))

		out := buf.String()
		assert.Contains(t, out, "M2 (US)")
		assert.Contains(t, out, "1008.64 INR")
		assert.Contains(t, out, "Total: 1869.39 INR")
		assert.Contains(t, out, "1 invalid QR item(s) skipped")
		assert.NotContains(t, out, "Language model unavailable")
	})
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderHistory(&buf, nil))
	assert.Contains(t, buf.String(), "No scans recorded yet.")

	total := 860.75
	buf.Reset()
	require.NoError(t, renderHistory(&buf, []model.HistoryRecord{
		{ID: 7, CreatedAt: time.Now(), Mode: model.ModeText, InputRepr: "QR:JP:JPY:1500", TotalHome: &total, HomeCurrency: "INR", RiskLevel: "low"},
		{ID: 8, CreatedAt: time.Now(), Mode: model.ModeImage, InputRepr: "image(blank.png)"},
	}))

	out := buf.String()
	assert.Contains(t, out, "QR:JP:JPY:1500")
	assert.Contains(t, out, "860.75 INR")
	assert.Contains(t, out, "image(blank.png)")
}
