package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/qrpay/internal/config"
	"github.com/Veraticus/qrpay/internal/sheets"
)

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "console info", level: "info", format: "console"},
		{name: "json debug", level: "debug", format: "json"},
		{name: "bad level", level: "verbose", format: "console", wantErr: true},
		{name: "bad format", level: "info", format: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := setupLogging(tt.level, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestSheetsConfig(t *testing.T) {
	t.Run("configured service account", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "ignored")
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "")

		cfg, err := sheetsConfig(config.SheetsConfig{
			ServiceAccountPath: "/tmp/key.json",
			SpreadsheetID:      "abc",
		})
		require.NoError(t, err)
		assert.Equal(t, "/tmp/key.json", cfg.ServiceAccountPath)
		assert.Equal(t, "abc", cfg.SpreadsheetID)
		assert.Equal(t, "QR Payment History", cfg.SpreadsheetName)
		assert.Empty(t, cfg.ClientID)
	})

	t.Run("falls back to environment", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "id")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "secret")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "token")
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")
		t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "")

		cfg, err := sheetsConfig(config.SheetsConfig{SpreadsheetID: "from-config"})
		require.NoError(t, err)
		assert.Equal(t, "id", cfg.ClientID)
		assert.Equal(t, "from-config", cfg.SpreadsheetID)
	})

	t.Run("no credentials", func(t *testing.T) {
		t.Setenv("GOOGLE_SHEETS_CLIENT_ID", "")
		t.Setenv("GOOGLE_SHEETS_CLIENT_SECRET", "")
		t.Setenv("GOOGLE_SHEETS_REFRESH_TOKEN", "")
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")

		_, err := sheetsConfig(config.SheetsConfig{})
		assert.ErrorIs(t, err, sheets.ErrNoCredentials)
	})
}
