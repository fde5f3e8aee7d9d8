package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/profile"
)

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show payment preferences",
		Long: `Profiles live with the running process. The CLI seeds every user from the
home_currency, preferred_card and risk_preference settings (or --home-currency);
a running server accepts per-user updates at PUT /api/profile/:user_id.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the profile scans will use",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store := profile.NewStore(model.UserProfile{
				HomeCurrency:   cfg.HomeCurrency,
				PreferredCard:  cfg.PreferredCard,
				RiskPreference: cfg.RiskPreference,
			})
			p := store.Ensure(cmd.Context(), viper.GetString("user"))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(p)
		},
	})

	return cmd
}
