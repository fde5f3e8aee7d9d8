package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/qrpay/internal/tui"
	"github.com/Veraticus/qrpay/internal/tui/themes"
)

func tuiCmd() *cobra.Command {
	var (
		theme     string
		sessionID string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Scan interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(ctx,
				tui.WithScanner(a.orch),
				tui.WithUser(viper.GetString("user")),
				tui.WithSession(sessionID),
				tui.WithTheme(themes.ByName(theme)),
			)
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "default", "color theme (default, catppuccin)")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to continue")

	return cmd
}
