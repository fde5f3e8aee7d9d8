package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/orchestrator"
	"github.com/Veraticus/qrpay/internal/tui/themes"
)

type fakeScanner struct {
	textErr  error
	texts    []orchestrator.ScanRequest
	images   []orchestrator.ImageScanRequest
	state    orchestrator.CompletionState
	mu       sync.Mutex
	multiple bool
}

func (f *fakeScanner) HandleTextScan(_ context.Context, req orchestrator.ScanRequest) (*orchestrator.Result, error) {
	f.mu.Lock()
	f.texts = append(f.texts, req)
	f.mu.Unlock()
	if f.textErr != nil {
		return nil, f.textErr
	}
	if f.multiple {
		total, count := 1869.39, 2
		return &orchestrator.Result{
			SessionID:    "sess-multi",
			HomeCurrency: "INR",
			Multiple:     true,
			TotalHome:    &total,
			Count:        &count,
			Message:      "Decoded 2 QR items.",
			Items: []orchestrator.ItemResult{
				{
					QRInfo:     model.TransactionRecord{MerchantID: "JP-SHOP", Country: "JP", Currency: "JPY", Amount: 1500},
					FXResult:   model.FxBreakdown{ToCurrency: "INR", TotalHome: 860.75},
					RiskResult: model.RiskAssessment{Level: model.RiskLow},
				},
				{
					QRInfo:     model.TransactionRecord{MerchantID: "US-SHOP", Country: "US", Currency: "USD", Amount: 11.5},
					FXResult:   model.FxBreakdown{ToCurrency: "INR", TotalHome: 1008.64},
					RiskResult: model.RiskAssessment{Level: model.RiskLow},
				},
			},
		}, nil
	}
	return &orchestrator.Result{
		SessionID:    "sess-1",
		HomeCurrency: "INR",
		QRInfo:       &model.TransactionRecord{MerchantID: "JP-SHOP", Country: "JP", Currency: "JPY", Amount: 1500},
		FXResult:     &model.FxBreakdown{ToCurrency: "INR", TotalHome: 860.75},
		RiskResult:   &model.RiskAssessment{Level: model.RiskLow, Score: 15},
		Message:      "Total estimated charge: 860.75 INR",
	}, nil
}

func (f *fakeScanner) HandleImageScan(_ context.Context, req orchestrator.ImageScanRequest) (*orchestrator.Result, error) {
	f.mu.Lock()
	f.images = append(f.images, req)
	f.mu.Unlock()
	zero, count := 0.0, 0
	return &orchestrator.Result{
		SessionID:    "sess-img",
		HomeCurrency: "INR",
		Multiple:     true,
		TotalHome:    &zero,
		Count:        &count,
		Message:      "No QR codes were found in the image.",
	}, nil
}

func (f *fakeScanner) CompletionState() orchestrator.CompletionState {
	return f.state
}

func newTestModel(s Scanner) Model {
	cfg := defaultConfig()
	cfg.Scanner = s
	cfg.Theme = themes.Default
	cfg.UserID = "traveler"
	return newModel(context.Background(), cfg)
}

// submit types input, presses enter and runs the resulting commands until a
// scan result arrives.
func submit(t *testing.T, m Model, input string) Model {
	t.Helper()

	m.input.SetValue(input)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	require.True(t, m.scanning)
	require.NotNil(t, cmd)

	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok, "enter should batch the spinner and the scan")

	for _, c := range batch {
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case scanDoneMsg, scanFailedMsg:
			updated, _ = m.Update(msg)
			return updated.(Model)
		}
	}
	t.Fatal("no scan result produced")
	return m
}

func TestModelTextScan(t *testing.T) {
	scanner := &fakeScanner{}
	m := submit(t, newTestModel(scanner), "  QR:JP:JPY:1500  ")

	require.Len(t, scanner.texts, 1)
	assert.Equal(t, orchestrator.ScanRequest{UserID: "traveler", Payload: "QR:JP:JPY:1500"}, scanner.texts[0])

	assert.False(t, m.scanning)
	assert.Equal(t, "sess-1", m.sessionID)
	assert.Equal(t, 1, m.scans)
	assert.Empty(t, m.input.Value())
	require.Len(t, m.items.Rows(), 1)
	assert.Equal(t, "860.75 INR", m.items.Rows()[0][4])

	view := m.View()
	assert.Contains(t, view, "Total: 860.75 INR")
	assert.Contains(t, view, "session sess-1")
}

func TestModelReusesSession(t *testing.T) {
	scanner := &fakeScanner{}
	m := submit(t, newTestModel(scanner), "QR:JP:JPY:1500")
	m = submit(t, m, "QR:US:USD:11.5")

	require.Len(t, scanner.texts, 2)
	assert.Empty(t, scanner.texts[0].SessionID)
	assert.Equal(t, "sess-1", scanner.texts[1].SessionID)
	assert.Equal(t, 2, m.scans)
}

func TestModelMultipleScan(t *testing.T) {
	m := submit(t, newTestModel(&fakeScanner{multiple: true}), "QR:JP:JPY:1500|QR:US:USD:11.5")

	rows := m.items.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "US-SHOP", rows[1][1])
	assert.Contains(t, m.View(), "Total: 1869.39 INR")
}

func TestModelImageScan(t *testing.T) {
	scanner := &fakeScanner{}
	m := submit(t, newTestModel(scanner), "@/tmp/receipts/qr.png")

	require.Len(t, scanner.images, 1)
	assert.Equal(t, "/tmp/receipts/qr.png", scanner.images[0].ImagePath)
	assert.Equal(t, "qr.png", scanner.images[0].DisplayName)
	assert.Empty(t, scanner.texts)
	assert.Empty(t, m.items.Rows())
	assert.Contains(t, m.View(), "No QR codes were found in the image.")
}

func TestModelScanFailure(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{
			name: "user error",
			err:  common.NewUserError("Please enter a QR payload string.", common.ErrEmptyInput),
			want: "Please enter a QR payload string.",
		},
		{
			name: "internal error",
			err:  errors.New("boom"),
			want: "internal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := submit(t, newTestModel(&fakeScanner{textErr: tt.err}), "")

			assert.Equal(t, tt.want, m.errMsg)
			assert.Contains(t, m.View(), tt.want)
			assert.Empty(t, m.sessionID)
		})
	}
}

func TestModelKeys(t *testing.T) {
	t.Run("new session clears state", func(t *testing.T) {
		m := submit(t, newTestModel(&fakeScanner{}), "QR:JP:JPY:1500")

		updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
		m = updated.(Model)

		assert.Empty(t, m.sessionID)
		assert.Nil(t, m.last)
		assert.Empty(t, m.items.Rows())
		assert.Contains(t, m.View(), "session (new)")
	})

	t.Run("quit", func(t *testing.T) {
		m := newTestModel(&fakeScanner{})

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
		assert.Empty(t, updated.View())
	})

	t.Run("enter ignored while scanning", func(t *testing.T) {
		m := newTestModel(&fakeScanner{})
		m.scanning = true

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		assert.Nil(t, cmd)
	})
}

func TestModelShowsDegradedState(t *testing.T) {
	m := newTestModel(&fakeScanner{state: orchestrator.StateDegraded})
	assert.Contains(t, m.View(), "assistant degraded")
}

func TestThemeRiskStyle(t *testing.T) {
	theme := themes.Default
	assert.Equal(t, theme.StatusError.Render("x"), theme.RiskStyle("high").Render("x"))
	assert.Equal(t, theme.StatusWarning.Render("x"), theme.RiskStyle("mixed").Render("x"))
	assert.Equal(t, themes.CatppuccinMocha.Primary, themes.ByName("catppuccin").Primary)
	assert.Equal(t, themes.Default.Primary, themes.ByName("unknown").Primary)
}
