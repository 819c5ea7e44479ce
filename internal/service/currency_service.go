package service

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultLookbackDays is how many calendar days before the requested date are tried.
const DefaultLookbackDays = 5

// RateSource names the ladder rung that produced an FX rate.
type RateSource string

const (
	RateSourceExact    RateSource = "exact"
	RateSourceLookback RateSource = "lookback"
	RateSourceSpot     RateSource = "spot"
	RateSourceDefault  RateSource = "default"
)

// RateOutcome is the result of one attempt to obtain a USD-per-EUR rate.
// Found is false when the rung had no data; Rate is meaningless in that case.
type RateOutcome struct {
	Rate   decimal.Decimal
	Found  bool
	Source RateSource
	// Day is the calendar day of the close used, zero for spot and default.
	Day time.Time
	// AsOf is the day that was requested, zero when no date was given.
	AsOf time.Time
}

// Degraded reports whether the rate came from a worse rung than the request asked for.
func (o RateOutcome) Degraded() bool {
	switch o.Source {
	case RateSourceDefault:
		return true
	case RateSourceSpot:
		return !o.AsOf.IsZero()
	default:
		return false
	}
}

// Warning describes a degraded outcome. It is empty when the outcome is not degraded.
func (o RateOutcome) Warning() string {
	if !o.Degraded() {
		return ""
	}
	if o.Source == RateSourceDefault {
		if o.AsOf.IsZero() {
			return "no EUR/USD rate available, defaulted to 1.0"
		}
		return fmt.Sprintf("no EUR/USD rate available for %s, defaulted to 1.0", o.AsOf.Format("2006-01-02"))
	}
	return fmt.Sprintf("no EUR/USD close within %d days of %s, used spot rate", DefaultLookbackDays, o.AsOf.Format("2006-01-02"))
}

func notFound() RateOutcome {
	return RateOutcome{}
}

// CurrencyService converts amounts between USD and EUR using the EURUSD=X close.
type CurrencyService struct {
	provider market.Provider
	timeout  time.Duration
	lookback int
}

// NewCurrencyService creates a CurrencyService. A zero timeout leaves lookups unbounded.
func NewCurrencyService(provider market.Provider, timeout time.Duration) *CurrencyService {
	return &CurrencyService{
		provider: provider,
		timeout:  timeout,
		lookback: DefaultLookbackDays,
	}
}

// Convert converts amount from one currency to another at the rate applicable on asOf.
// A zero asOf uses the latest rate. Unsupported currencies fail with apperrors.ErrUnsupportedCurrency.
func (s *CurrencyService) Convert(ctx context.Context, amount decimal.Decimal, from, to model.Currency, asOf time.Time) (decimal.Decimal, error) {
	converted, _, err := s.ConvertDetailed(ctx, amount, from, to, asOf)
	return converted, err
}

// ConvertDetailed is Convert that also reports which rate was used.
// Identity conversions return a zero RateOutcome.
func (s *CurrencyService) ConvertDetailed(ctx context.Context, amount decimal.Decimal, from, to model.Currency, asOf time.Time) (decimal.Decimal, RateOutcome, error) {
	if !from.Supported() {
		return decimal.Zero, RateOutcome{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, from)
	}
	if !to.Supported() {
		return decimal.Zero, RateOutcome{}, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, to)
	}
	if from == to {
		return amount, RateOutcome{}, nil
	}

	outcome := s.ResolveRate(ctx, asOf)
	if from == model.USD {
		return amount.Div(outcome.Rate), outcome, nil
	}
	return amount.Mul(outcome.Rate), outcome, nil
}

// ResolveRate walks the fallback ladder and always yields a usable rate:
// the exact day, then up to five days back, then spot, then 1.0.
// A zero asOf starts at spot.
func (s *CurrencyService) ResolveRate(ctx context.Context, asOf time.Time) RateOutcome {
	var day time.Time
	if !asOf.IsZero() {
		day = market.Day(asOf)
	}

	rungs := []func() RateOutcome{
		func() RateOutcome { return s.spotRate(ctx) },
	}
	if !day.IsZero() {
		rungs = []func() RateOutcome{
			func() RateOutcome { return s.exactRate(ctx, day) },
			func() RateOutcome { return s.lookbackRate(ctx, day) },
			func() RateOutcome { return s.spotRate(ctx) },
		}
	}

	for _, rung := range rungs {
		if outcome := rung(); outcome.Found {
			outcome.AsOf = day
			return outcome
		}
	}

	outcome := s.defaultRate()
	outcome.AsOf = day
	log.Warn().Time("as_of", day).Msg("no EUR/USD rate available, defaulting to 1.0")
	return outcome
}

func (s *CurrencyService) exactRate(ctx context.Context, day time.Time) RateOutcome {
	rate, err := s.historicalClose(ctx, day)
	if err != nil {
		return notFound()
	}
	return RateOutcome{Rate: rate, Found: true, Source: RateSourceExact, Day: day}
}

func (s *CurrencyService) lookbackRate(ctx context.Context, day time.Time) RateOutcome {
	for back := 1; back <= s.lookback; back++ {
		d := day.AddDate(0, 0, -back)
		rate, err := s.historicalClose(ctx, d)
		if err == nil {
			return RateOutcome{Rate: rate, Found: true, Source: RateSourceLookback, Day: d}
		}
	}
	return notFound()
}

func (s *CurrencyService) spotRate(ctx context.Context) RateOutcome {
	lctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rate, err := s.provider.LatestPrice(lctx, market.FXSymbol)
	if err != nil || !rate.IsPositive() {
		return notFound()
	}
	return RateOutcome{Rate: rate, Found: true, Source: RateSourceSpot}
}

func (s *CurrencyService) defaultRate() RateOutcome {
	return RateOutcome{Rate: decimal.NewFromInt(1), Found: true, Source: RateSourceDefault}
}

// historicalClose treats a non-positive close as missing so it can never become a divisor.
func (s *CurrencyService) historicalClose(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	lctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rate, err := s.provider.HistoricalClose(lctx, market.FXSymbol, day)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrMissingHistoricalRate, err)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive close on %s", apperrors.ErrMissingHistoricalRate, day.Format("2006-01-02"))
	}
	return rate, nil
}

func (s *CurrencyService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
