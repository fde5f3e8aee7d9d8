package qr

import (
	"testing"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecord(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.TransactionRecord
		wantErr bool
	}{
		{
			name:  "basic",
			input: "QR:JP:JPY:1500",
			want:  model.TransactionRecord{MerchantID: DefaultMerchantID, Country: "JP", Currency: "JPY", Amount: 1500, Raw: "QR:JP:JPY:1500"},
		},
		{
			name:  "lower case and merchant",
			input: "qr:th:thb:400.50:SHOP-9",
			want:  model.TransactionRecord{MerchantID: "SHOP-9", Country: "TH", Currency: "THB", Amount: 400.5, Raw: "qr:th:thb:400.50:SHOP-9"},
		},
		{
			name:  "negative amount tolerated",
			input: "QR:US:USD:-5",
			want:  model.TransactionRecord{MerchantID: DefaultMerchantID, Country: "US", Currency: "USD", Amount: -5, Raw: "QR:US:USD:-5"},
		},
		{
			name:  "zero amount tolerated",
			input: "QR:US:USD:0",
			want:  model.TransactionRecord{MerchantID: DefaultMerchantID, Country: "US", Currency: "USD", Amount: 0, Raw: "QR:US:USD:0"},
		},
		{name: "missing amount", input: "QR:JP:JPY", wantErr: true},
		{name: "bad prefix", input: "PAY:JP:JPY:10", wantErr: true},
		{name: "bad amount", input: "QR:JP:JPY:abc", wantErr: true},
		{name: "long country", input: "QR:JPN:JPY:10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRecord(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParser_Parse(t *testing.T) {
	p := NewParser()

	t.Run("single", func(t *testing.T) {
		res, err := p.Parse("  QR:JP:JPY:1500 ")
		require.NoError(t, err)
		assert.Equal(t, model.ParseSingle, res.Kind())

		rec, ok := res.Single()
		require.True(t, ok)
		assert.Equal(t, "JPY", rec.Currency)
		assert.InDelta(t, 1500.0, rec.Amount, 1e-9)
	})

	t.Run("single invalid", func(t *testing.T) {
		_, err := p.Parse("hello")
		assert.ErrorIs(t, err, common.ErrInvalidPayload)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := p.Parse("   \n ")
		assert.ErrorIs(t, err, common.ErrEmptyInput)
	})

	t.Run("multiple with separators", func(t *testing.T) {
		res, err := p.Parse("QR:JP:JPY:1500,QR:US:USD:12\nQR:TH:THB:400 junk")
		require.NoError(t, err)
		assert.Equal(t, model.ParseMultiple, res.Kind())

		items, invalid, ok := res.Multiple()
		require.True(t, ok)
		require.Len(t, items, 3)
		assert.Equal(t, 1, invalid)
		assert.Equal(t, "USD", items[1].Currency)
		assert.Equal(t, "THB", items[2].Currency)
	})

	t.Run("multiple all invalid is lenient", func(t *testing.T) {
		res, err := p.Parse("foo,bar")
		require.NoError(t, err)
		items, invalid, ok := res.Multiple()
		require.True(t, ok)
		assert.Empty(t, items)
		assert.Equal(t, 2, invalid)
	})

	t.Run("strict rejects all invalid", func(t *testing.T) {
		strict := &Parser{Strict: true}
		_, err := strict.Parse("foo,bar")
		assert.ErrorIs(t, err, common.ErrNoValidItems)
	})
}
