package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/orchestrator"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	messageStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

func riskStyle(level string) lipgloss.Style {
	switch level {
	case string(model.RiskHigh):
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	case string(model.RiskMedium), "mixed":
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	}
}

// renderResult writes a human-readable scan result.
func renderResult(w io.Writer, res *orchestrator.Result) error {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Agent response"))
	b.WriteString("\n")
	b.WriteString(messageStyle.Render(res.Message))
	b.WriteString("\n")

	switch {
	case res.Multiple:
		writeItems(&b, res)
	case res.FXResult != nil:
		writeSingle(&b, res)
	}

	if res.Degraded {
		b.WriteString(warnStyle.Render("Language model unavailable; showing the computed breakdown."))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("session " + res.SessionID))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func writeSingle(b *strings.Builder, res *orchestrator.Result) {
	fx := res.FXResult
	fmt.Fprintf(b, "%s %s %s -> %s %s (rate %g, %s)\n",
		headerStyle.Render("Charge:"),
		common.FormatMoney(fx.AmountLocal), fx.FromCurrency,
		common.FormatMoney(fx.TotalHome), fx.ToCurrency,
		fx.Rate, fx.Provenance)

	if r := res.RiskResult; r != nil {
		fmt.Fprintf(b, "%s %s (score %.0f)\n",
			headerStyle.Render("Risk:"),
			riskStyle(string(r.Level)).Render(string(r.Level)),
			r.Score)
	}
}

func writeItems(b *strings.Builder, res *orchestrator.Result) {
	if len(res.Items) == 0 {
		return
	}

	tw := tabwriter.NewWriter(b, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("#"),
		headerStyle.Render("Merchant"),
		headerStyle.Render("Amount"),
		headerStyle.Render("Charge"),
		headerStyle.Render("Risk"))
	for i, item := range res.Items {
		fmt.Fprintf(tw, "%d\t%s (%s)\t%s %s\t%s %s\t%s\n",
			i+1,
			item.QRInfo.MerchantID, item.QRInfo.Country,
			common.FormatMoney(item.QRInfo.Amount), item.QRInfo.Currency,
			common.FormatMoney(item.FXResult.TotalHome), item.FXResult.ToCurrency,
			riskStyle(string(item.RiskResult.Level)).Render(string(item.RiskResult.Level)))
	}
	_ = tw.Flush()

	if total, ok := res.Total(); ok {
		fmt.Fprintf(b, "%s %s %s\n", headerStyle.Render("Total:"), common.FormatMoney(total), res.HomeCurrency)
	}
	if res.InvalidCount > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d invalid QR item(s) skipped", res.InvalidCount)))
		b.WriteString("\n")
	}
}

// renderHistory writes history rows as a table.
func renderHistory(w io.Writer, records []model.HistoryRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("No scans recorded yet."))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
		headerStyle.Render("ID"),
		headerStyle.Render("Time"),
		headerStyle.Render("Mode"),
		headerStyle.Render("Input"),
		headerStyle.Render("Total"),
		headerStyle.Render("Risk")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, rec := range records {
		total := "-"
		if rec.TotalHome != nil {
			total = common.FormatMoney(*rec.TotalHome) + " " + rec.HomeCurrency
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			rec.ID,
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Mode,
			rec.InputRepr,
			total,
			rec.RiskLevel); err != nil {
			return fmt.Errorf("failed to write history row: %w", err)
		}
	}

	return tw.Flush()
}
