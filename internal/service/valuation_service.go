package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/ledger"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Defaults for the price fetch pool.
const (
	DefaultPriceWorkers = 10
	DefaultPriceTimeout = 10 * time.Second
)

// LedgerSource supplies the ledger snapshot for one valuation run.
type LedgerSource interface {
	Load(ctx context.Context) (*model.Ledger, error)
}

// FileLedgerSource reads the ledger document from disk on every Load.
type FileLedgerSource struct {
	Path string
}

// Load implements LedgerSource.
func (f FileLedgerSource) Load(_ context.Context) (*model.Ledger, error) {
	return ledger.LoadFile(f.Path)
}

// ValuationOptions tunes the price fetch pool. Zero values select the defaults.
type ValuationOptions struct {
	Workers      int
	PriceTimeout time.Duration
	Now          func() time.Time
}

// ValuationService turns a ledger into valued holdings and a summary.
type ValuationService struct {
	source       LedgerSource
	holdings     *HoldingsService
	currency     *CurrencyService
	provider     market.Provider
	workers      int
	priceTimeout time.Duration
	now          func() time.Time
}

// NewValuationService creates a ValuationService. source may be nil when only Value is used.
func NewValuationService(
	source LedgerSource,
	provider market.Provider,
	currency *CurrencyService,
	opts ValuationOptions,
) *ValuationService {
	s := &ValuationService{
		source:       source,
		holdings:     NewHoldingsService(currency),
		currency:     currency,
		provider:     provider,
		workers:      opts.Workers,
		priceTimeout: opts.PriceTimeout,
		now:          opts.Now,
	}
	if s.workers <= 0 {
		s.workers = DefaultPriceWorkers
	}
	if s.priceTimeout <= 0 {
		s.priceTimeout = DefaultPriceTimeout
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Compute loads the current ledger snapshot and values it in base.
func (s *ValuationService) Compute(ctx context.Context, base model.Currency) (*model.Valuation, error) {
	if s.source == nil {
		return nil, fmt.Errorf("%w: no ledger source configured", apperrors.ErrFailedToGetValuation)
	}
	l, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.Value(ctx, l, base)
}

type priceSlot struct {
	price decimal.Decimal
	err   error
}

// Value aggregates l and prices every holding with positive shares.
//
// A failed price fetch values the holding at zero and adds a warning.
// An unsupported currency anywhere in the run fails the whole run.
func (s *ValuationService) Value(ctx context.Context, l *model.Ledger, base model.Currency) (*model.Valuation, error) {
	started := s.now()
	if !base.Supported() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, base)
	}

	agg, err := s.holdings.Aggregate(ctx, l, base)
	if err != nil {
		return nil, err
	}

	qualifying := make([]*model.Holding, 0, len(agg.Holdings))
	for _, h := range agg.Holdings {
		if h.TotalShares.IsPositive() {
			qualifying = append(qualifying, h)
		}
	}

	prices, err := s.fetchPrices(ctx, l, qualifying)
	if err != nil {
		return nil, err
	}

	warnings := make([]string, 0, len(l.Warnings)+len(agg.Warnings))
	warnings = append(warnings, l.Warnings...)
	warnings = append(warnings, agg.Warnings...)
	seen := make(map[string]bool, len(warnings))
	for _, w := range warnings {
		seen[w] = true
	}
	addWarning := func(w string) {
		if w != "" && !seen[w] {
			seen[w] = true
			warnings = append(warnings, w)
		}
	}

	valued := make([]model.HoldingValuation, 0, len(qualifying))
	totalValue, totalCost := decimal.Zero, decimal.Zero
	for _, h := range qualifying {
		price := decimal.NewFromInt(1)
		if !h.IsCashAccount {
			sec := l.Securities[h.SecurityIndex]
			slot := prices[h.SecurityIndex]
			if slot.err != nil {
				log.Warn().Err(slot.err).Str("ticker", sec.Ticker).Msg("price not available, valuing at zero")
				addWarning(missingPriceWarning(sec))
			}
			converted, outcome, err := s.currency.ConvertDetailed(ctx, slot.price, sec.Currency, base, time.Time{})
			if err != nil {
				return nil, fmt.Errorf("price of %s: %w", sec.Ticker, err)
			}
			addWarning(outcome.Warning())
			price = converted
		}

		value := h.TotalShares.Mul(price)
		profitLoss := value.Sub(h.TotalCost)
		valued = append(valued, model.HoldingValuation{
			Name:                 h.Name,
			Ticker:               h.Ticker,
			Shares:               h.TotalShares,
			AveragePrice:         h.TotalCost.Div(h.TotalShares),
			LatestPrice:          price,
			Value:                value,
			ProfitLoss:           profitLoss,
			ProfitLossPercentage: percentage(profitLoss, h.TotalCost),
			Account:              h.Account,
			IsAccount:            h.IsCashAccount,
		})

		totalValue = totalValue.Add(value)
		totalCost = totalCost.Add(h.TotalCost)
	}

	totalProfitLoss := totalValue.Sub(totalCost)
	v := &model.Valuation{
		RunID:        uuid.New().String(),
		BaseCurrency: base,
		ComputedAt:   s.now().UTC(),
		Summary: model.Summary{
			BaseCurrency:         base,
			TotalPortfolioValue:  round(totalValue),
			TotalCostBasis:       round(totalCost),
			TotalProfitLoss:      round(totalProfitLoss),
			ProfitLossPercentage: round(percentage(totalProfitLoss, totalCost)),
		},
		Holdings:            valued,
		Warnings:            warnings,
		DroppedTransactions: l.DroppedTransactions,
	}

	log.Info().
		Str("run_id", v.RunID).
		Str("base_currency", base.String()).
		Int("holdings", len(valued)).
		Int("warnings", len(warnings)).
		Dur("duration", s.now().Sub(started)).
		Msg("valuation completed")

	return v, nil
}

// fetchPrices queries the latest price of every distinct security among holdings
// through a bounded pool. Each worker owns one slot, so no locking is needed.
func (s *ValuationService) fetchPrices(ctx context.Context, l *model.Ledger, holdings []*model.Holding) (map[int]*priceSlot, error) {
	slots := make(map[int]*priceSlot)
	for _, h := range holdings {
		if h.IsCashAccount {
			continue
		}
		if _, ok := slots[h.SecurityIndex]; !ok {
			slots[h.SecurityIndex] = &priceSlot{}
		}
	}

	var g errgroup.Group
	g.SetLimit(s.workers)
	for index, slot := range slots {
		ticker := l.Securities[index].Ticker
		g.Go(func() error {
			if ticker == "" {
				slot.err = fmt.Errorf("%w: security has no ticker", apperrors.ErrMissingMarketData)
				return nil
			}
			fctx, cancel := context.WithTimeout(ctx, s.priceTimeout)
			defer cancel()
			slot.price, slot.err = s.provider.LatestPrice(fctx, ticker)
			if slot.err != nil {
				slot.price = decimal.Zero
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("valuation abandoned: %w", err)
	}
	return slots, nil
}

// missingPriceWarning names the security and, when the ledger recorded one,
// its last known price in its own currency. That price is never used for valuation.
func missingPriceWarning(sec model.Security) string {
	w := fmt.Sprintf("no price for %s (%s), valued at 0", sec.Ticker, sec.Name)
	if sec.LatestPrice.IsPositive() {
		w += fmt.Sprintf("; ledger last recorded %s %s", sec.LatestPrice.String(), sec.Currency)
	}
	return w
}
