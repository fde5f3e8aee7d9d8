package sheets

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/qrpay/internal/model"
)

// HistoryRow is one exported scan.
type HistoryRow struct {
	CreatedAt time.Time
	Total     decimal.Decimal
	Mode      string
	Input     string
	Currency  string
	RiskLevel string
	Note      string
	HasTotal  bool
}

// Summary aggregates exported rows.
type Summary struct {
	TotalsByCurrency map[string]decimal.Decimal
	Scans            int
	HighRisk         int
}

// Currencies returns the summarized currencies in sorted order.
func (s Summary) Currencies() []string {
	out := make([]string, 0, len(s.TotalsByCurrency))
	for cur := range s.TotalsByCurrency {
		out = append(out, cur)
	}
	sort.Strings(out)
	return out
}

func rowFromRecord(rec model.HistoryRecord) HistoryRow {
	row := HistoryRow{
		CreatedAt: rec.CreatedAt,
		Mode:      rec.Mode,
		Input:     rec.InputRepr,
		Currency:  rec.HomeCurrency,
		RiskLevel: rec.RiskLevel,
		Note:      rec.Note,
	}
	if rec.TotalHome != nil {
		row.Total = decimal.NewFromFloat(*rec.TotalHome).Round(2)
		row.HasTotal = true
	}
	return row
}

// Summarize totals rows per currency. Rows without a total are counted but
// not summed.
func Summarize(rows []HistoryRow) Summary {
	s := Summary{TotalsByCurrency: make(map[string]decimal.Decimal)}
	for _, r := range rows {
		s.Scans++
		if r.RiskLevel == string(model.RiskHigh) {
			s.HighRisk++
		}
		if !r.HasTotal || r.Currency == "" {
			continue
		}
		s.TotalsByCurrency[r.Currency] = s.TotalsByCurrency[r.Currency].Add(r.Total)
	}
	return s
}
