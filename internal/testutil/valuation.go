package testutil

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/shopspring/decimal"
)

// SampleValuation returns a small valuation with one security and one cash account.
func SampleValuation(base model.Currency) *model.Valuation {
	d := decimal.RequireFromString
	return &model.Valuation{
		RunID:        MakeID(),
		BaseCurrency: base,
		ComputedAt:   time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC),
		Summary: model.Summary{
			BaseCurrency:         base,
			TotalPortfolioValue:  d("2500.00"),
			TotalCostBasis:       d("2000.00"),
			TotalProfitLoss:      d("500.00"),
			ProfitLossPercentage: d("25.00"),
		},
		Holdings: []model.HoldingValuation{
			{
				Name:                 "Apple Inc.",
				Ticker:               "AAPL",
				Shares:               d("10"),
				AveragePrice:         d("150"),
				LatestPrice:          d("200"),
				Value:                d("2000"),
				ProfitLoss:           d("500"),
				ProfitLossPercentage: d("33.3333"),
			},
			{
				Name:         "Broker Cash",
				Ticker:       model.CashTicker,
				Shares:       d("500"),
				AveragePrice: d("1"),
				LatestPrice:  d("1"),
				Value:        d("500"),
				ProfitLoss:   decimal.Zero,
				Account:      "Broker Cash",
				IsAccount:    true,
			},
		},
		Warnings:            []string{"missing market data for XYZ"},
		DroppedTransactions: 1,
	}
}

// CannedComputer returns SampleValuation for every base currency.
// Each Compute call sends the base currency on Computed when the channel is set.
type CannedComputer struct {
	Calls    atomic.Int32
	Computed chan model.Currency
}

// Compute implements service.ValuationComputer.
func (c *CannedComputer) Compute(_ context.Context, base model.Currency) (*model.Valuation, error) {
	c.Calls.Add(1)
	if c.Computed != nil {
		c.Computed <- base
	}
	return SampleValuation(base), nil
}
