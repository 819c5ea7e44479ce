package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
	"github.com/shopspring/decimal"
)

// YahooProvider implements Provider on top of the Yahoo Finance chart API.
type YahooProvider struct {
	client yahoo.Client
}

// NewYahooProvider creates a Provider backed by client.
func NewYahooProvider(client yahoo.Client) *YahooProvider {
	return &YahooProvider{client: client}
}

// LatestPrice returns the most recent daily close over the last five days.
func (p *YahooProvider) LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	raw, err := p.client.QueryYahooFiveDaySymbol(ctx, ticker)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", apperrors.ErrMissingMarketData, ticker, err)
	}
	chart, err := p.client.ParseChart(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", apperrors.ErrMissingMarketData, ticker, err)
	}
	latest, ok := chart.Latest()
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrMissingMarketData, ticker)
	}
	return decimal.NewFromFloat(latest.PriceClose), nil
}

// HistoricalClose returns the close of the bar dated day, queried over the
// single-day window [day, day+1). A bar from any other day counts as missing.
func (p *YahooProvider) HistoricalClose(ctx context.Context, ticker string, day time.Time) (decimal.Decimal, error) {
	start := Day(day)
	label := start.Format("2006-01-02")
	raw, err := p.client.QueryYahooSymbolByDateRange(ctx, ticker, start, start.AddDate(0, 0, 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s on %s: %v", apperrors.ErrMissingMarketData, ticker, label, err)
	}
	chart, err := p.client.ParseChart(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s on %s: %v", apperrors.ErrMissingMarketData, ticker, label, err)
	}
	bar, ok := chart.GetIndicatorForDate(start)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s on %s", apperrors.ErrMissingMarketData, ticker, label)
	}
	return decimal.NewFromFloat(bar.PriceClose), nil
}

// HistoricalRange returns the daily closes between start (inclusive) and end (exclusive).
// A window without bars yields an empty series and no error.
func (p *YahooProvider) HistoricalRange(ctx context.Context, ticker string, start, end time.Time) ([]Close, error) {
	raw, err := p.client.QueryYahooSymbolByDateRange(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}
	chart, err := p.client.ParseChart(raw)
	if errors.Is(err, yahoo.ErrNoPriceData) {
		return []Close{}, nil
	}
	if err != nil {
		return nil, err
	}

	series := make([]Close, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		series = append(series, Close{
			Date:  ind.Date,
			Price: decimal.NewFromFloat(ind.PriceClose),
		})
	}
	return series, nil
}
