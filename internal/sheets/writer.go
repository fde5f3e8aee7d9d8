package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/service"
)

const (
	historySheet = "History"
	columnCount  = 7
)

var historyHeader = []any{"Time", "Mode", "Input", "Total", "Currency", "Risk", "Note"}

// Writer exports scan history to a Google spreadsheet.
type Writer struct {
	api    *sheets.Service
	logger *slog.Logger
	config Config
}

// NewWriter creates a Writer authenticated from config.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ts, err := tokenSource(ctx, config)
	if err != nil {
		return nil, err
	}

	api, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, ts)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return newWriter(api, config, logger), nil
}

func newWriter(api *sheets.Service, config Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	return &Writer{api: api, logger: logger, config: config}
}

// tokenSource prefers a service account key and otherwise refreshes the
// configured OAuth2 token.
func tokenSource(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	if config.ServiceAccountPath != "" {
		key, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		return jwt.TokenSource(ctx), nil
	}

	oauthCfg := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	return oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}), nil
}

// Export replaces the History sheet with records and returns the spreadsheet ID.
func (w *Writer) Export(ctx context.Context, records []model.HistoryRecord) (string, error) {
	w.logger.Info("exporting history", "records", len(records))

	id, err := w.ensureSpreadsheet(ctx)
	if err != nil {
		return "", err
	}

	values := prepareHistoryData(records)
	retry := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if err := common.WithRetry(ctx, func() error { return w.resetSheet(ctx, id) }, retry); err != nil {
		return "", fmt.Errorf("failed to clear sheet: %w", err)
	}

	for start := 0; start < len(values); start += w.config.BatchSize {
		chunk := values[start:min(start+w.config.BatchSize, len(values))]
		err := common.WithRetry(ctx, func() error {
			return w.writeRows(ctx, id, start, chunk)
		}, retry)
		if err != nil {
			return "", fmt.Errorf("failed to write rows from %d: %w", start+1, err)
		}
	}

	if w.config.EnableFormatting {
		if err := w.format(ctx, id, values); err != nil {
			w.logger.Warn("failed to format history sheet", "error", err)
		}
	}

	w.logger.Info("history exported", "spreadsheet_id", id, "rows", len(values))
	return id, nil
}

func (w *Writer) ensureSpreadsheet(ctx context.Context) (string, error) {
	if id := w.config.SpreadsheetID; id != "" {
		ss, err := w.api.Spreadsheets.Get(id).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", id, err)
		}
		if !hasSheet(ss, historySheet) {
			_, err = w.api.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{
				Requests: []*sheets.Request{{
					AddSheet: &sheets.AddSheetRequest{Properties: &sheets.SheetProperties{Title: historySheet}},
				}},
			}).Context(ctx).Do()
			if err != nil {
				return "", fmt.Errorf("unable to add %s sheet: %w", historySheet, err)
			}
		}
		return id, nil
	}

	created, err := w.api.Spreadsheets.Create(&sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{{Properties: &sheets.SheetProperties{Title: historySheet}}},
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created spreadsheet", "id", created.SpreadsheetId, "url", created.SpreadsheetUrl)
	return created.SpreadsheetId, nil
}

func hasSheet(ss *sheets.Spreadsheet, title string) bool {
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return true
		}
	}
	return false
}

func (w *Writer) resetSheet(ctx context.Context, id string) error {
	_, err := w.api.Spreadsheets.Values.Clear(id, historySheet+"!A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (w *Writer) writeRows(ctx context.Context, id string, offset int, rows [][]any) error {
	cell := fmt.Sprintf("%s!A%d", historySheet, offset+1)
	_, err := w.api.Spreadsheets.Values.Update(id, cell, &sheets.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err == nil {
		w.logger.Debug("wrote rows", "from", offset+1, "count", len(rows))
	}
	return err
}

// prepareHistoryData lays out a title block, per-currency totals and then one
// row per scan, oldest first.
func prepareHistoryData(records []model.HistoryRecord) [][]any {
	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, rowFromRecord(rec))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	summary := Summarize(rows)
	currencies := summary.Currencies()

	values := make([][]any, 0, len(rows)+len(currencies)+6)
	values = append(values,
		[]any{"QR Payment History", fmt.Sprintf("%d scans", summary.Scans)},
		[]any{"High-risk scans", summary.HighRisk},
		[]any{},
		[]any{"Currency", "Total"},
	)
	for _, cur := range currencies {
		values = append(values, []any{cur, summary.TotalsByCurrency[cur].StringFixed(2)})
	}
	values = append(values, []any{}, historyHeader)

	for _, r := range rows {
		total := ""
		if r.HasTotal {
			total = r.Total.StringFixed(2)
		}
		values = append(values, []any{
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			r.Mode,
			r.Input,
			total,
			r.Currency,
			r.RiskLevel,
			r.Note,
		})
	}

	return values
}

// headerRows returns the indexes of the title and column-header rows.
func headerRows(values [][]any) []int64 {
	out := []int64{0}
	for i, row := range values {
		if len(row) > 0 && (row[0] == "Currency" || row[0] == historyHeader[0]) {
			out = append(out, int64(i))
		}
	}
	return out
}

func (w *Writer) format(ctx context.Context, id string, values [][]any) error {
	sheetID, err := w.sheetID(ctx, id)
	if err != nil {
		return err
	}

	var requests []*sheets.Request
	for _, row := range headerRows(values) {
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    row,
					EndRowIndex:      row + 1,
					StartColumnIndex: 0,
					EndColumnIndex:   columnCount,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{TextFormat: &sheets.TextFormat{Bold: true}},
				},
				Fields: "userEnteredFormat.textFormat.bold",
			},
		})
	}
	requests = append(requests, &sheets.Request{
		AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
			Dimensions: &sheets.DimensionRange{
				SheetId:    sheetID,
				Dimension:  "COLUMNS",
				StartIndex: 0,
				EndIndex:   columnCount,
			},
		},
	})

	_, err = w.api.Spreadsheets.BatchUpdate(id, &sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).
		Do()
	return err
}

// sheetID resolves the numeric id of the History sheet, defaulting to the first sheet.
func (w *Writer) sheetID(ctx context.Context, id string) (int64, error) {
	ss, err := w.api.Spreadsheets.Get(id).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("unable to read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == historySheet {
			return s.Properties.SheetId, nil
		}
	}
	return 0, nil
}
