package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/market"
	"github.com/shopspring/decimal"
)

// StubProvider is an in-memory market.Provider.
// It is safe for concurrent use so it can back the valuation worker pool.
type StubProvider struct {
	mu sync.Mutex

	latest map[string]decimal.Decimal
	closes map[string]map[string]decimal.Decimal
	delay  map[string]time.Duration

	// LatestCalls and CloseCalls count lookups per symbol.
	LatestCalls map[string]int
	CloseCalls  map[string]int
	// Failing makes every lookup fail, as if the source were unreachable.
	Failing bool

	inFlight    int
	MaxInFlight int
}

// NewStubProvider creates an empty StubProvider.
func NewStubProvider() *StubProvider {
	return &StubProvider{
		latest:      make(map[string]decimal.Decimal),
		closes:      make(map[string]map[string]decimal.Decimal),
		delay:       make(map[string]time.Duration),
		LatestCalls: make(map[string]int),
		CloseCalls:  make(map[string]int),
	}
}

// WithLatest sets the latest price for symbol.
func (s *StubProvider) WithLatest(symbol, price string) *StubProvider {
	s.latest[symbol] = decimal.RequireFromString(price)
	return s
}

// WithClose sets the close of symbol on day (YYYY-MM-DD).
func (s *StubProvider) WithClose(symbol, day, price string) *StubProvider {
	if s.closes[symbol] == nil {
		s.closes[symbol] = make(map[string]decimal.Decimal)
	}
	s.closes[symbol][day] = decimal.RequireFromString(price)
	return s
}

// WithDelay makes lookups of symbol block for d or until the context ends.
func (s *StubProvider) WithDelay(symbol string, d time.Duration) *StubProvider {
	s.delay[symbol] = d
	return s
}

func (s *StubProvider) wait(ctx context.Context, symbol string) error {
	s.mu.Lock()
	d := s.delay[symbol]
	s.inFlight++
	if s.inFlight > s.MaxInFlight {
		s.MaxInFlight = s.inFlight
	}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if d == 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// LatestPrice implements market.Provider.
func (s *StubProvider) LatestPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := s.wait(ctx, symbol); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", apperrors.ErrMissingMarketData, symbol, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LatestCalls[symbol]++
	if s.Failing {
		return decimal.Zero, fmt.Errorf("%w: %s: source unreachable", apperrors.ErrMissingMarketData, symbol)
	}
	price, ok := s.latest[symbol]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrMissingMarketData, symbol)
	}
	return price, nil
}

// HistoricalClose implements market.Provider.
func (s *StubProvider) HistoricalClose(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error) {
	if err := s.wait(ctx, symbol); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", apperrors.ErrMissingMarketData, symbol, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CloseCalls[symbol]++
	if s.Failing {
		return decimal.Zero, fmt.Errorf("%w: %s: source unreachable", apperrors.ErrMissingMarketData, symbol)
	}
	price, ok := s.closes[symbol][market.Day(day).Format("2006-01-02")]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s on %s", apperrors.ErrMissingMarketData, symbol, day.Format("2006-01-02"))
	}
	return price, nil
}

// HistoricalRange implements market.Provider.
func (s *StubProvider) HistoricalRange(ctx context.Context, symbol string, start, end time.Time) ([]market.Close, error) {
	series := []market.Close{}
	for d := market.Day(start); d.Before(end); d = d.AddDate(0, 0, 1) {
		price, err := s.HistoricalClose(ctx, symbol, d)
		if err != nil {
			continue
		}
		series = append(series, market.Close{Date: d, Price: price})
	}
	return series, nil
}

// Calls returns the number of historical close lookups made for symbol.
func (s *StubProvider) Calls(symbol string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CloseCalls[symbol]
}
