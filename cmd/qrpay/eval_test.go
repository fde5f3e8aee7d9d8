package main

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/orchestrator"
)

type scriptedScanner struct {
	errs map[string]error
	seen []orchestrator.ScanRequest
}

func (s *scriptedScanner) HandleTextScan(_ context.Context, req orchestrator.ScanRequest) (*orchestrator.Result, error) {
	s.seen = append(s.seen, req)
	if err := s.errs[req.Payload]; err != nil {
		return nil, err
	}
	return &orchestrator.Result{Message: "summary of " + req.Payload, Degraded: true}, nil
}

func TestRunEval(t *testing.T) {
	scanner := &scriptedScanner{}

	results, err := runEval(context.Background(), scanner, evalPayloads, io.Discard)
	require.NoError(t, err)

	require.Len(t, results, 4)
	assert.Equal(t, "QR:JP:JPY:1500", results[0].InputQR)
	assert.Equal(t, "summary of QR:EU:EUR:9.5", results[3].AgentOutput)
	assert.True(t, results[1].Degraded)

	for _, req := range scanner.seen {
		assert.Equal(t, evalUserID, req.UserID)
		assert.Empty(t, req.SessionID, "each payload gets a fresh session")
	}
}

func TestRunEvalErrors(t *testing.T) {
	t.Run("user error recorded", func(t *testing.T) {
		scanner := &scriptedScanner{errs: map[string]error{
			"QR:bad": common.NewUserError("Could not parse the QR payload.", common.ErrInvalidPayload),
		}}

		results, err := runEval(context.Background(), scanner, []string{"QR:bad", "QR:US:USD:12"}, io.Discard)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Could not parse the QR payload.", results[0].AgentOutput)
	})

	t.Run("internal error aborts", func(t *testing.T) {
		scanner := &scriptedScanner{errs: map[string]error{"QR:US:USD:12": errors.New("disk full")}}

		results, err := runEval(context.Background(), scanner, evalPayloads, io.Discard)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.Len(t, results, 1)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := runEval(ctx, &scriptedScanner{}, evalPayloads, io.Discard)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, results)
	})
}
