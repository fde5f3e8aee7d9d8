package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/orchestrator"
)

const evalUserID = "eval-user"

// evalPayloads are scanned by the eval command.
var evalPayloads = []string{
	"QR:JP:JPY:1500",
	"QR:US:USD:12",
	"QR:TH:THB:400",
	"QR:EU:EUR:9.5",
}

type evalResult struct {
	InputQR     string `json:"input_qr"`
	AgentOutput string `json:"agent_output"`
	Degraded    bool   `json:"degraded"`
}

type textScanner interface {
	HandleTextScan(ctx context.Context, req orchestrator.ScanRequest) (*orchestrator.Result, error)
}

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval",
		Short: "Run the demo payloads through the full pipeline",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			results, err := runEval(ctx, a.orch, evalPayloads, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
}

// runEval scans each payload in a fresh session. A payload the pipeline
// rejects is recorded with its user-facing message rather than aborting the run.
func runEval(ctx context.Context, scanner textScanner, payloads []string, progress io.Writer) ([]evalResult, error) {
	bar := progressbar.NewOptions(len(payloads),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Evaluating payloads...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(progress)
		}),
	)

	results := make([]evalResult, 0, len(payloads))
	for _, payload := range payloads {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := scanner.HandleTextScan(ctx, orchestrator.ScanRequest{
			UserID:  evalUserID,
			Payload: payload,
		})
		switch {
		case err == nil:
			results = append(results, evalResult{InputQR: payload, AgentOutput: res.Message, Degraded: res.Degraded})
		case common.IsUserError(err):
			results = append(results, evalResult{InputQR: payload, AgentOutput: common.UserMessage(err)})
		default:
			return results, fmt.Errorf("scan %q failed: %w", payload, err)
		}

		if barErr := bar.Add(1); barErr != nil {
			slog.Warn("Failed to update progress bar", "error", barErr)
		}
	}

	return results, nil
}
