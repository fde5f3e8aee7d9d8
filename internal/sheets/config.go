// Package sheets exports scan history to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Environment variables consulted when no credentials are configured.
const (
	envClientID        = "GOOGLE_SHEETS_CLIENT_ID"
	envClientSecret    = "GOOGLE_SHEETS_CLIENT_SECRET"
	envRefreshToken    = "GOOGLE_SHEETS_REFRESH_TOKEN"
	envServiceAccount  = "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"
	envSpreadsheetID   = "GOOGLE_SHEETS_SPREADSHEET_ID"
	envSpreadsheetName = "GOOGLE_SHEETS_SPREADSHEET_NAME"
)

// ErrNoCredentials is returned when neither a service account key nor a
// complete OAuth2 refresh grant is available.
var ErrNoCredentials = errors.New("no Google Sheets credentials configured")

// Credentials selects how the exporter authenticates: a service account key
// file, or an OAuth2 client with a refresh token. Exactly one must be set.
type Credentials struct {
	ServiceAccountPath string
	ClientID           string
	ClientSecret       string
	RefreshToken       string
}

// CredentialsFromEnv reads the GOOGLE_SHEETS_* credential variables.
func CredentialsFromEnv() Credentials {
	return Credentials{
		ServiceAccountPath: os.Getenv(envServiceAccount),
		ClientID:           os.Getenv(envClientID),
		ClientSecret:       os.Getenv(envClientSecret),
		RefreshToken:       os.Getenv(envRefreshToken),
	}
}

// IsZero reports whether no credential field is set.
func (c Credentials) IsZero() bool {
	return c == Credentials{}
}

func (c Credentials) check() error {
	oauth := c.ClientID != "" || c.ClientSecret != "" || c.RefreshToken != ""
	switch {
	case c.ServiceAccountPath != "" && oauth:
		return errors.New("both a service account and OAuth2 credentials are configured; use one")
	case c.ServiceAccountPath != "":
		return nil
	case !oauth:
		return ErrNoCredentials
	case c.ClientID == "" || c.ClientSecret == "" || c.RefreshToken == "":
		return errors.New("incomplete OAuth2 credentials: client id, client secret and refresh token are all required")
	}
	return nil
}

// Config holds the configuration for the Google Sheets exporter.
type Config struct {
	Credentials
	SpreadsheetID    string
	SpreadsheetName  string
	TimeZone         string
	BatchSize        int
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

// DefaultConfig returns a Config with no credentials and the default
// spreadsheet layout.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "QR Payment History",
		EnableFormatting: true,
		TimeZone:         "UTC",
		BatchSize:        500,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
	}
}

// Resolve builds a validated Config. Explicit settings win; empty ones are
// filled from the environment, and credentials are taken from the
// environment only when none are given at all.
func Resolve(creds Credentials, spreadsheetID, spreadsheetName string) (Config, error) {
	cfg := DefaultConfig()

	cfg.Credentials = creds
	if creds.IsZero() {
		cfg.Credentials = CredentialsFromEnv()
	}

	cfg.SpreadsheetID = firstNonEmpty(spreadsheetID, os.Getenv(envSpreadsheetID))
	cfg.SpreadsheetName = firstNonEmpty(spreadsheetName, os.Getenv(envSpreadsheetName), cfg.SpreadsheetName)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks credentials and export tuning.
func (c *Config) Validate() error {
	if err := c.Credentials.check(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.RetryAttempts < 0 || c.RetryDelay < 0 {
		return fmt.Errorf("retry settings cannot be negative (attempts=%d, delay=%s)", c.RetryAttempts, c.RetryDelay)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
