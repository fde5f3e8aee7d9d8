package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/qrpay/internal/config"
	"github.com/Veraticus/qrpay/internal/sheets"
	"github.com/Veraticus/qrpay/internal/storage"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListHistory(ctx, viper.GetString("user"), limit)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			return renderHistory(cmd.OutOrStdout(), records)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", storage.DefaultHistoryLimit, "number of scans to show")
	cmd.AddCommand(historyExportCmd())

	return cmd
}

func historyExportCmd() *cobra.Command {
	var (
		limit         int
		spreadsheetID string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export scan history to Google Sheets",
		Long: `Export scan history to a Google spreadsheet. Credentials come from the
sheets section of the config file or the GOOGLE_SHEETS_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			sheetsCfg, err := sheetsConfig(cfg.Sheets)
			if err != nil {
				return err
			}
			if spreadsheetID != "" {
				sheetsCfg.SpreadsheetID = spreadsheetID
			}

			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListHistory(ctx, viper.GetString("user"), limit)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}

			writer, err := sheets.NewWriter(ctx, sheetsCfg, nil)
			if err != nil {
				return err
			}

			id, err := writer.Export(ctx, records)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d scans to https://docs.google.com/spreadsheets/d/%s\n", len(records), id)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 1000, "maximum number of scans to export")
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "existing spreadsheet id to overwrite")

	return cmd
}

// sheetsConfig maps the sheets config section onto exporter settings.
func sheetsConfig(c config.SheetsConfig) (sheets.Config, error) {
	return sheets.Resolve(sheets.Credentials{
		ServiceAccountPath: c.ServiceAccountPath,
		ClientID:           c.ClientID,
		ClientSecret:       c.ClientSecret,
		RefreshToken:       c.RefreshToken,
	}, c.SpreadsheetID, c.SpreadsheetName)
}
