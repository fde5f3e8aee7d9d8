// Package fx computes the home-currency cost of foreign QR payments.
package fx

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
	"github.com/Veraticus/qrpay/internal/service"
)

// Config configures a Calculator.
type Config struct {
	// Live is the live rate source; nil disables live lookups.
	Live          RateSource
	FallbackRates map[string]float64
	Now           func() time.Time
	Retry         service.RetryOptions
	Timeout       time.Duration
	CacheTTL      time.Duration
	// MarkupPercent and NetworkFee fall back to the package defaults when
	// nil; an explicit zero disables the charge.
	MarkupPercent *float64
	NetworkFee    *float64
	DefaultRate   float64
}

// Calculator converts amounts using live → cache → curated → default rates.
// It owns its rate cache; Reset clears it.
type Calculator struct {
	live          RateSource
	cache         *rateCache
	logger        *slog.Logger
	fallback      map[string]float64
	retry         service.RetryOptions
	timeout       time.Duration
	markupPercent float64
	networkFee    float64
	defaultRate   float64
}

// NewCalculator creates a Calculator.
func NewCalculator(cfg Config, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}

	fallback := CuratedRates()
	for pair, rate := range cfg.FallbackRates {
		fallback[strings.ToUpper(pair)] = rate
	}

	c := &Calculator{
		live:          cfg.Live,
		cache:         newRateCache(cfg.CacheTTL, cfg.Now),
		logger:        logger,
		fallback:      fallback,
		retry:         cfg.Retry,
		timeout:       cfg.Timeout,
		markupPercent: DefaultMarkupPercent,
		networkFee:    DefaultNetworkFee,
		defaultRate:   cfg.DefaultRate,
	}

	if c.timeout <= 0 {
		c.timeout = 5 * time.Second
	}
	if c.retry.MaxAttempts <= 0 {
		c.retry.MaxAttempts = 1
	}
	if cfg.MarkupPercent != nil {
		c.markupPercent = *cfg.MarkupPercent
	}
	if cfg.NetworkFee != nil {
		c.networkFee = *cfg.NetworkFee
	}
	if c.defaultRate <= 0 {
		c.defaultRate = DefaultRate
	}

	return c
}

// Convert prices amount (in from) in the to currency. It never fails.
func (c *Calculator) Convert(ctx context.Context, amount float64, from, to string) model.FxBreakdown {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	rate, provenance, notes := c.pickRate(ctx, from, to)

	base := amount * rate
	markup := base * c.markupPercent
	fee := c.networkFee

	return model.FxBreakdown{
		FromCurrency:   from,
		ToCurrency:     to,
		Rate:           rate,
		AmountLocal:    amount,
		BaseHome:       base,
		MarkupHome:     markup,
		NetworkFeeHome: fee,
		TotalHome:      base + markup + fee,
		Provenance:     provenance,
		Notes:          notes,
	}
}

func (c *Calculator) pickRate(ctx context.Context, from, to string) (float64, model.Provenance, string) {
	if from == to {
		return 1.0, model.ProvenanceSameCurrency, "No FX conversion needed (same currency)."
	}

	if rate, ok := c.cache.get(from, to); ok {
		c.logger.Debug("using cached FX rate", "from", from, "to", to, "rate", rate)
		return rate, model.ProvenanceCache, "Recently fetched live FX rate with standard markup."
	}

	if c.live != nil {
		rate, err := c.fetchLive(ctx, from, to)
		if err == nil {
			c.cache.set(from, to, rate)
			c.logger.Info("using live FX rate", "from", from, "to", to, "rate", rate)
			return rate, model.ProvenanceLive, "Live FX rate from open.er-api.com with standard markup."
		}
		c.logger.Warn("live FX lookup failed", "from", from, "to", to, "error", err)
	}

	if rate, ok := c.fallback[pairKey(from, to)]; ok {
		c.logger.Warn("using curated fallback FX rate", "from", from, "to", to, "rate", rate)
		return rate, model.ProvenanceCuratedFallback, "Curated fallback FX rate with standard markup."
	}

	c.logger.Error("no FX rate available, using generic default",
		"from", from,
		"to", to,
		"rate", c.defaultRate)
	return c.defaultRate, model.ProvenanceDefault, "Generic default FX rate with standard markup."
}

func (c *Calculator) fetchLive(ctx context.Context, from, to string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rate float64
	err := common.WithRetry(ctx, func() error {
		r, err := c.live.Rate(ctx, from, to)
		if errors.Is(err, ErrRateUnavailable) {
			return common.Permanent(err)
		}
		rate = r
		return err
	}, c.retry)

	return rate, err
}

// FallbackRates returns a copy of the curated table in use.
func (c *Calculator) FallbackRates() map[string]float64 {
	return maps.Clone(c.fallback)
}

// Reset clears cached live rates.
func (c *Calculator) Reset() {
	c.cache.clear()
}

// Close stops background cache maintenance.
func (c *Calculator) Close() {
	c.cache.Close()
}
