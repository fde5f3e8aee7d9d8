package tui

import (
	"context"

	"github.com/Veraticus/qrpay/internal/orchestrator"
	"github.com/Veraticus/qrpay/internal/tui/themes"
)

// Scanner runs scans for the console. *orchestrator.Orchestrator implements it.
type Scanner interface {
	HandleTextScan(ctx context.Context, req orchestrator.ScanRequest) (*orchestrator.Result, error)
	HandleImageScan(ctx context.Context, req orchestrator.ImageScanRequest) (*orchestrator.Result, error)
	CompletionState() orchestrator.CompletionState
}

// Config holds TUI configuration.
type Config struct {
	Theme     themes.Theme
	Scanner   Scanner
	UserID    string
	SessionID string
	Width     int
	Height    int
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		UserID: "cli-user",
		Width:  100,
		Height: 30,
	}
}

// WithScanner sets the scan pipeline.
func WithScanner(s Scanner) Option {
	return func(c *Config) {
		c.Scanner = s
	}
}

// WithUser sets the user the scans are made for.
func WithUser(userID string) Option {
	return func(c *Config) {
		c.UserID = userID
	}
}

// WithSession resumes an existing session.
func WithSession(sessionID string) Option {
	return func(c *Config) {
		c.SessionID = sessionID
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}
