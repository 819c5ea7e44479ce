// Package market defines the market data contract used by the valuation engine
// and its Yahoo Finance and caching implementations.
package market

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// FXSymbol is the quote symbol whose close is the USD-per-EUR rate.
const FXSymbol = "EURUSD=X"

// Close is one daily closing price.
type Close struct {
	Date  time.Time
	Price decimal.Decimal
}

// Provider fetches current and historical closing prices.
//
// LatestPrice and HistoricalClose return apperrors.ErrMissingMarketData when
// the source holds no value. HistoricalRange returns an empty series in that case.
type Provider interface {
	LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, error)
	HistoricalClose(ctx context.Context, ticker string, day time.Time) (decimal.Decimal, error)
	HistoricalRange(ctx context.Context, ticker string, start, end time.Time) ([]Close, error)
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
