package sheets

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/qrpay/internal/model"
)

func ptr(f float64) *float64 { return &f }

func sampleRecords() []model.HistoryRecord {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []model.HistoryRecord{
		{
			CreatedAt:    base.Add(2 * time.Hour),
			TotalHome:    ptr(1008.64),
			Mode:         model.ModeText,
			InputRepr:    "QR:US:USD:11.5",
			HomeCurrency: "INR",
			RiskLevel:    "low",
			Note:         "single",
		},
		{
			CreatedAt:    base,
			TotalHome:    ptr(860.75),
			Mode:         model.ModeText,
			InputRepr:    "QR:JP:JPY:1500",
			HomeCurrency: "INR",
			RiskLevel:    "low",
		},
		{
			CreatedAt: base.Add(time.Hour),
			Mode:      model.ModeImage,
			InputRepr: "image(receipt.png)",
			RiskLevel: "high",
			Note:      "no codes",
		},
	}
}

func TestSummarize(t *testing.T) {
	rows := make([]HistoryRow, 0, 3)
	for _, rec := range sampleRecords() {
		rows = append(rows, rowFromRecord(rec))
	}

	s := Summarize(rows)

	assert.Equal(t, 3, s.Scans)
	assert.Equal(t, 1, s.HighRisk)
	assert.Equal(t, []string{"INR"}, s.Currencies())
	assert.True(t, s.TotalsByCurrency["INR"].Equal(decimal.RequireFromString("1869.39")))
}

func TestPrepareHistoryData(t *testing.T) {
	values := prepareHistoryData(sampleRecords())

	require.Len(t, values, 10)
	assert.Equal(t, []any{"QR Payment History", "3 scans"}, values[0])
	assert.Equal(t, []any{"High-risk scans", 1}, values[1])
	assert.Equal(t, []any{"INR", "1869.39"}, values[4])
	assert.Equal(t, "Time", values[6][0])

	// Oldest first.
	assert.Equal(t, "QR:JP:JPY:1500", values[7][2])
	assert.Equal(t, "860.75", values[7][3])
	assert.Equal(t, "image(receipt.png)", values[8][2])
	assert.Equal(t, "", values[8][3])
	assert.Equal(t, "QR:US:USD:11.5", values[9][2])
	assert.Equal(t, "2026-03-01 11:00:00", values[9][0])
}

func TestPrepareHistoryDataEmpty(t *testing.T) {
	values := prepareHistoryData(nil)

	require.Len(t, values, 6)
	assert.Equal(t, []any{"QR Payment History", "0 scans"}, values[0])
}

type fakeSheetsAPI struct {
	updates []sheets.ValueRange
	paths   []string
	mu      sync.Mutex
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1","sheets":[{"properties":{"sheetId":42,"title":"History"}}]}`)
	case r.Method == http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		var vr sheets.ValueRange
		_ = json.Unmarshal(body, &vr)
		f.mu.Lock()
		f.updates = append(f.updates, vr)
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1"}`)
	default:
		_, _ = io.WriteString(w, `{"spreadsheetId":"sheet-1"}`)
	}
}

func TestWriterExport(t *testing.T) {
	api := &fakeSheetsAPI{}
	server := httptest.NewServer(api)
	defer server.Close()

	ctx := context.Background()
	srv, err := sheets.NewService(ctx,
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.SpreadsheetID = "sheet-1"
	cfg.BatchSize = 4
	cfg.RetryDelay = time.Millisecond

	w := newWriter(srv, cfg, slog.Default())

	id, err := w.Export(ctx, sampleRecords())
	require.NoError(t, err)
	assert.Equal(t, "sheet-1", id)

	api.mu.Lock()
	defer api.mu.Unlock()

	// 10 rows in batches of 4.
	require.Len(t, api.updates, 3)
	var written int
	for _, u := range api.updates {
		written += len(u.Values)
	}
	assert.Equal(t, 10, written)

	var sawClear bool
	for _, p := range api.paths {
		if strings.Contains(p, ":clear") {
			sawClear = true
		}
	}
	assert.True(t, sawClear, "sheet should be cleared before writing")

	var sawFormat bool
	for _, p := range api.paths {
		if strings.HasSuffix(p, ":batchUpdate") {
			sawFormat = true
		}
	}
	assert.True(t, sawFormat, "formatting should be applied")
}

func TestHeaderRows(t *testing.T) {
	values := prepareHistoryData(sampleRecords())
	assert.Equal(t, []int64{0, 3, 6}, headerRows(values))
}
