package orchestrator

import (
	"context"
	"sync"

	"github.com/Veraticus/qrpay/internal/model"
)

// fanOut flattens either parse shape into the list of items to evaluate.
func fanOut(parsed model.ParseResult) (items []model.TransactionRecord, invalid int, multiple bool) {
	switch parsed.Kind() {
	case model.ParseSingle:
		rec, _ := parsed.Single()
		return []model.TransactionRecord{rec}, 0, false
	case model.ParseMultiple:
		items, invalid, _ := parsed.Multiple()
		return items, invalid, true
	default:
		return nil, 0, true
	}
}

// evaluate prices and scores every item. Each worker writes only its own slot,
// so the returned slice is in input order regardless of scheduling.
func (o *Orchestrator) evaluate(ctx context.Context, userID, homeCurrency string, items []model.TransactionRecord) []ItemResult {
	results := make([]ItemResult, len(items))

	workers := min(o.workers, len(items))
	if workers <= 1 {
		for i, item := range items {
			results[i] = o.evaluateItem(ctx, userID, homeCurrency, item)
		}
		return results
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(idx int, rec model.TransactionRecord) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[idx] = o.evaluateItem(ctx, userID, homeCurrency, rec)
		}(i, item)
	}
	wg.Wait()

	return results
}

func (o *Orchestrator) evaluateItem(ctx context.Context, userID, homeCurrency string, item model.TransactionRecord) ItemResult {
	fx := o.fx.Convert(ctx, item.Amount, item.Currency, homeCurrency)
	risk := o.risk.Score(ctx, model.RiskRequest{
		UserID:     userID,
		MerchantID: item.MerchantID,
		Country:    item.Country,
		Amount:     item.Amount,
	})
	return ItemResult{QRInfo: item, FXResult: fx, RiskResult: risk}
}

// aggregate is the single accumulation point for evaluated items.
type aggregate struct {
	currencies map[string]struct{}
	total      float64
	anyHigh    bool
}

func reduce(results []ItemResult) aggregate {
	agg := aggregate{currencies: make(map[string]struct{})}
	for _, r := range results {
		agg.total += r.FXResult.TotalHome
		agg.currencies[r.FXResult.ToCurrency] = struct{}{}
		if r.RiskResult.Level.AtLeastHigh() {
			agg.anyHigh = true
		}
	}
	return agg
}
