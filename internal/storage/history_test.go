package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func TestAppendHistory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	created := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	rec := &model.HistoryRecord{
		CreatedAt:    created,
		UserID:       "user-1",
		SessionID:    "sess-1",
		Mode:         model.ModeText,
		InputRepr:    "QR:JP:JPY:1000:M1",
		TotalHome:    floatPtr(577.5),
		HomeCurrency: "INR",
		RiskLevel:    "low",
		Note:         "Base converted amount: 550.00 INR",
		RawResult:    json.RawMessage(`{"session_id":"sess-1","message":"ok"}`),
	}

	require.NoError(t, store.AppendHistory(ctx, rec))
	assert.Positive(t, rec.ID)

	list, err := store.ListHistory(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	got := list[0]
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, created.Equal(got.CreatedAt), "created_at round-trips")
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, model.ModeText, got.Mode)
	require.NotNil(t, got.TotalHome)
	assert.InDelta(t, 577.5, *got.TotalHome, 1e-9)
	assert.Equal(t, "INR", got.HomeCurrency)
	assert.Empty(t, got.RawResult, "list omits raw payload")

	raw, err := store.GetHistoryRaw(ctx, rec.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"session_id":"sess-1","message":"ok"}`, string(raw))
}

func TestAppendHistory_Defaults(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	rec := &model.HistoryRecord{
		UserID:    "user-1",
		Mode:      model.ModeImage,
		InputRepr: "receipt.png",
		RawResult: json.RawMessage(`{}`),
	}
	require.NoError(t, store.AppendHistory(ctx, rec))

	list, err := store.ListHistory(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].TotalHome)
	assert.Equal(t, "unknown", list[0].RiskLevel)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestAppendHistory_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		name string
		rec  *model.HistoryRecord
		want error
	}{
		{name: "nil record", rec: nil, want: ErrNilParameter},
		{name: "missing user", rec: &model.HistoryRecord{Mode: model.ModeText, RawResult: json.RawMessage(`{}`)}, want: ErrInvalidRecord},
		{name: "bad mode", rec: &model.HistoryRecord{UserID: "u", Mode: "voice", RawResult: json.RawMessage(`{}`)}, want: ErrInvalidRecord},
		{name: "empty raw", rec: &model.HistoryRecord{UserID: "u", Mode: model.ModeText}, want: ErrInvalidRecord},
		{name: "invalid raw", rec: &model.HistoryRecord{UserID: "u", Mode: model.ModeText, RawResult: json.RawMessage(`{nope`)}, want: ErrInvalidRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AppendHistory(ctx, tt.rec)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListHistory_NewestFirstAndScoped(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendHistory(ctx, &model.HistoryRecord{
			UserID:    "alice",
			Mode:      model.ModeText,
			InputRepr: fmt.Sprintf("scan-%d", i),
			RawResult: json.RawMessage(`{}`),
		}))
	}
	require.NoError(t, store.AppendHistory(ctx, &model.HistoryRecord{
		UserID: "bob", Mode: model.ModeText, InputRepr: "bob-scan", RawResult: json.RawMessage(`{}`),
	}))

	list, err := store.ListHistory(ctx, "alice", 3)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "scan-4", list[0].InputRepr)
	assert.Equal(t, "scan-3", list[1].InputRepr)
	assert.Equal(t, "scan-2", list[2].InputRepr)

	_, err = store.ListHistory(ctx, "", 3)
	assert.ErrorIs(t, err, ErrEmptyString)

	none, err := store.ListHistory(ctx, "carol", 3)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetHistoryRaw_NotFound(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	_, err := store.GetHistoryRaw(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
