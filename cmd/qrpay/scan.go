package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/orchestrator"
)

func scanCmd() *cobra.Command {
	var (
		imagePath string
		sessionID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "scan [payload]",
		Short: "Scan a QR payload or image",
		Long: `Decode a QR payment payload such as QR:JP:JPY:1500 (several payloads may be
separated by commas or spaces) or, with --image, a photo of one or more QR codes.`,
		Example: `  qrpay scan QR:JP:JPY:1500
  qrpay scan "QR:JP:JPY:1500,QR:US:USD:12"
  qrpay scan --image receipt.png`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			userID := viper.GetString("user")

			var res *orchestrator.Result
			if imagePath != "" {
				res, err = a.orch.HandleImageScan(ctx, orchestrator.ImageScanRequest{
					UserID:      userID,
					SessionID:   sessionID,
					ImagePath:   imagePath,
					DisplayName: filepath.Base(imagePath),
				})
			} else {
				res, err = a.orch.HandleTextScan(ctx, orchestrator.ScanRequest{
					UserID:    userID,
					SessionID: sessionID,
					Payload:   strings.Join(args, " "),
				})
			}
			if err != nil {
				if common.IsUserError(err) {
					return fmt.Errorf("%s", common.UserMessage(err))
				}
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			return renderResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "path to a QR image (PNG or JPEG)")
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to continue")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw result as JSON")

	return cmd
}
