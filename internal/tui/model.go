// Package tui provides an interactive console for scanning QR payloads.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/orchestrator"
	"github.com/Veraticus/qrpay/internal/tui/themes"
)

// imagePrefix marks console input as a path to a QR image.
const imagePrefix = "@"

// Model holds the console state.
type Model struct {
	ctx       context.Context
	scanner   Scanner
	last      *orchestrator.Result
	theme     themes.Theme
	input     textinput.Model
	spinner   spinner.Model
	items     table.Model
	keymap    KeyMap
	userID    string
	sessionID string
	errMsg    string
	lastInput string
	scans     int
	width     int
	height    int
	scanning  bool
	quitting  bool
}

func newModel(ctx context.Context, cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = "QR:JP:JPY:1500 or @path/to/qr.png"
	ti.Prompt = "› "
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	items := table.New(
		table.WithColumns(itemColumns()),
		table.WithHeight(8),
	)

	return Model{
		ctx:       ctx,
		scanner:   cfg.Scanner,
		theme:     cfg.Theme,
		input:     ti,
		spinner:   sp,
		items:     items,
		keymap:    DefaultKeyMap(),
		userID:    cfg.UserID,
		sessionID: cfg.SessionID,
		width:     cfg.Width,
		height:    cfg.Height,
	}
}

func itemColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 3},
		{Title: "Merchant", Width: 14},
		{Title: "Country", Width: 7},
		{Title: "Amount", Width: 14},
		{Title: "Charge", Width: 14},
		{Title: "Risk", Width: 8},
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, msg.Width-6)
		return m, nil

	case scanDoneMsg:
		m.scanning = false
		m.errMsg = ""
		m.last = msg.result
		m.lastInput = msg.input
		m.scans++
		if msg.result.SessionID != "" {
			m.sessionID = msg.result.SessionID
		}
		m.items.SetRows(itemRows(msg.result))
		return m, nil

	case scanFailedMsg:
		m.scanning = false
		m.lastInput = msg.input
		m.errMsg = common.UserMessage(msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.scanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.NewSession):
		m.sessionID = ""
		m.last = nil
		m.errMsg = ""
		m.items.SetRows(nil)
		return m, nil

	case key.Matches(msg, m.keymap.Clear):
		m.last = nil
		m.errMsg = ""
		m.items.SetRows(nil)
		return m, nil

	case key.Matches(msg, m.keymap.Submit):
		if m.scanning {
			return m, nil
		}
		input := strings.TrimSpace(m.input.Value())
		m.input.SetValue("")
		m.scanning = true
		return m, tea.Batch(m.spinner.Tick, m.scan(input))
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// scan runs the pipeline off the UI loop. The session id is captured so a
// result always lands in the session it was issued for.
func (m Model) scan(input string) tea.Cmd {
	scanner := m.scanner
	ctx := m.ctx
	userID := m.userID
	sessionID := m.sessionID

	return func() tea.Msg {
		if scanner == nil {
			return scanFailedMsg{input: input, err: common.NewUserError("No scanner configured.", common.ErrMissingConfig)}
		}

		var (
			res *orchestrator.Result
			err error
		)
		if path, ok := strings.CutPrefix(input, imagePrefix); ok {
			path = strings.TrimSpace(path)
			res, err = scanner.HandleImageScan(ctx, orchestrator.ImageScanRequest{
				UserID:      userID,
				SessionID:   sessionID,
				ImagePath:   path,
				DisplayName: filepath.Base(path),
			})
		} else {
			res, err = scanner.HandleTextScan(ctx, orchestrator.ScanRequest{
				UserID:    userID,
				SessionID: sessionID,
				Payload:   input,
			})
		}
		if err != nil {
			return scanFailedMsg{input: input, err: err}
		}
		return scanDoneMsg{input: input, result: res}
	}
}

func itemRows(res *orchestrator.Result) []table.Row {
	if res == nil {
		return nil
	}

	if !res.Multiple {
		if res.QRInfo == nil || res.FXResult == nil {
			return nil
		}
		item := orchestrator.ItemResult{QRInfo: *res.QRInfo, FXResult: *res.FXResult}
		if res.RiskResult != nil {
			item.RiskResult = *res.RiskResult
		}
		return []table.Row{itemRow(1, item)}
	}

	rows := make([]table.Row, 0, len(res.Items))
	for i, item := range res.Items {
		rows = append(rows, itemRow(i+1, item))
	}
	return rows
}

func itemRow(n int, item orchestrator.ItemResult) table.Row {
	return table.Row{
		fmt.Sprintf("%d", n),
		item.QRInfo.MerchantID,
		item.QRInfo.Country,
		fmt.Sprintf("%.2f %s", item.QRInfo.Amount, item.QRInfo.Currency),
		fmt.Sprintf("%.2f %s", item.FXResult.TotalHome, item.FXResult.ToCurrency),
		string(item.RiskResult.Level),
	}
}
