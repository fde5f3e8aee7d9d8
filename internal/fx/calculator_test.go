package fx

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	rates map[string]float64
	err   error
	calls int
	mu    sync.Mutex
}

func (f *fakeSource) Rate(_ context.Context, from, to string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	rate, ok := f.rates[from+"_"+to]
	if !ok {
		return 0, ErrRateUnavailable
	}
	return rate, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestCalculator(t *testing.T, source RateSource) *Calculator {
	t.Helper()
	cfg := Config{}
	if source != nil {
		cfg.Live = source
	}
	c := NewCalculator(cfg, common.DiscardLogger())
	t.Cleanup(c.Close)
	return c
}

func assertInvariants(t *testing.T, b model.FxBreakdown) {
	t.Helper()
	assert.Equal(t, b.AmountLocal*b.Rate, b.BaseHome)
	assert.InDelta(t, b.BaseHome+b.MarkupHome+b.NetworkFeeHome, b.TotalHome, 1e-9)
}

func TestCalculator_Provenance(t *testing.T) {
	ctx := context.Background()

	t.Run("same currency", func(t *testing.T) {
		c := newTestCalculator(t, &fakeSource{})
		b := c.Convert(ctx, 250, "inr", "INR")
		assert.Equal(t, 1.0, b.Rate)
		assert.Equal(t, model.ProvenanceSameCurrency, b.Provenance)
		assert.Equal(t, "INR", b.FromCurrency)
		assertInvariants(t, b)
	})

	t.Run("live then cache", func(t *testing.T) {
		src := &fakeSource{rates: map[string]float64{"JPY_INR": 0.56}}
		c := newTestCalculator(t, src)

		first := c.Convert(ctx, 1500, "JPY", "INR")
		assert.Equal(t, model.ProvenanceLive, first.Provenance)
		assert.Equal(t, 0.56, first.Rate)

		second := c.Convert(ctx, 1500, "JPY", "INR")
		assert.Equal(t, model.ProvenanceCache, second.Provenance)
		assert.Equal(t, 1, src.callCount())

		c.Reset()
		third := c.Convert(ctx, 1500, "JPY", "INR")
		assert.Equal(t, model.ProvenanceLive, third.Provenance)
		assert.Equal(t, 2, src.callCount())
	})

	t.Run("curated fallback", func(t *testing.T) {
		c := newTestCalculator(t, &fakeSource{err: errors.New("network down")})
		b := c.Convert(ctx, 1500, "JPY", "INR")
		assert.Equal(t, model.ProvenanceCuratedFallback, b.Provenance)
		assert.Equal(t, 0.55, b.Rate)
		assertInvariants(t, b)
	})

	t.Run("generic default", func(t *testing.T) {
		c := newTestCalculator(t, nil)
		b := c.Convert(ctx, 10, "GBP", "INR")
		assert.Equal(t, model.ProvenanceDefault, b.Provenance)
		assert.Equal(t, DefaultRate, b.Rate)
		assertInvariants(t, b)
	})

	t.Run("configured fallback overrides curated", func(t *testing.T) {
		c := NewCalculator(Config{FallbackRates: map[string]float64{"gbp_inr": 105}}, common.DiscardLogger())
		defer c.Close()
		b := c.Convert(ctx, 2, "GBP", "INR")
		assert.Equal(t, model.ProvenanceCuratedFallback, b.Provenance)
		assert.Equal(t, 105.0, b.Rate)
		assert.Equal(t, 0.55, c.FallbackRates()["JPY_INR"])
	})
}

func TestCalculator_Economics(t *testing.T) {
	c := newTestCalculator(t, nil)
	amount := 1500.0
	b := c.Convert(context.Background(), amount, "JPY", "INR")

	assert.Equal(t, amount*0.55, b.BaseHome)
	assert.InDelta(t, amount*0.55*DefaultMarkupPercent, b.MarkupHome, 1e-9)
	assert.Equal(t, DefaultNetworkFee, b.NetworkFeeHome)
	assert.Equal(t, "860.75", common.FormatMoney(b.TotalHome))
}

func TestCalculator_PricingOverrides(t *testing.T) {
	ctx := context.Background()
	zero := 0.0

	t.Run("explicit zero disables markup and fee", func(t *testing.T) {
		c := NewCalculator(Config{MarkupPercent: &zero, NetworkFee: &zero}, common.DiscardLogger())
		defer c.Close()

		b := c.Convert(ctx, 1500, "JPY", "INR")
		assert.Zero(t, b.MarkupHome)
		assert.Zero(t, b.NetworkFeeHome)
		assert.Equal(t, b.BaseHome, b.TotalHome)
	})

	t.Run("custom values", func(t *testing.T) {
		markup, fee := 0.01, 2.5
		c := NewCalculator(Config{MarkupPercent: &markup, NetworkFee: &fee}, common.DiscardLogger())
		defer c.Close()

		b := c.Convert(ctx, 100, "THB", "INR")
		assert.InDelta(t, 1.0, b.MarkupHome, 1e-9)
		assert.Equal(t, 2.5, b.NetworkFeeHome)
		assert.InDelta(t, 103.5, b.TotalHome, 1e-9)
	})
}

func TestCalculator_InvariantsHoldForOddAmounts(t *testing.T) {
	c := newTestCalculator(t, &fakeSource{rates: map[string]float64{"USD_INR": 83.123456}})
	for _, amount := range []float64{0, -12.5, 0.01, 12, 9.5, 1e7} {
		b := c.Convert(context.Background(), amount, "USD", "INR")
		assertInvariants(t, b)
	}
}

func TestCalculator_LiveTimeout(t *testing.T) {
	slow := rateFunc(func(ctx context.Context, _, _ string) (float64, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	c := NewCalculator(Config{Live: slow, Timeout: 20 * time.Millisecond}, common.DiscardLogger())
	defer c.Close()

	start := time.Now()
	b := c.Convert(context.Background(), 12, "USD", "INR")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, model.ProvenanceCuratedFallback, b.Provenance)
}

type rateFunc func(ctx context.Context, from, to string) (float64, error)

func (f rateFunc) Rate(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}

func TestRateCache(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	c := newRateCache(time.Minute, clock)
	defer c.Close()

	c.set("JPY", "INR", 0.55)
	rate, ok := c.get("JPY", "INR")
	require.True(t, ok)
	assert.Equal(t, 0.55, rate)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("JPY", "INR")
	assert.False(t, ok)

	c.sweep()
	assert.Equal(t, 0, c.size())

	c.set("USD", "INR", 83)
	c.clear()
	assert.Equal(t, 0, c.size())
	c.Close()
}
