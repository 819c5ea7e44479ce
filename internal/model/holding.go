package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CashTicker is the ticker reported for cash account holdings.
const CashTicker = "CASH"

// Holding is the running position for one security or one cash account.
// TotalShares and TotalCost are always in the run's base currency.
type Holding struct {
	Key           string
	Name          string
	Ticker        string
	SecurityIndex int // -1 for cash accounts
	TotalShares   decimal.Decimal
	TotalCost     decimal.Decimal
	Fees          decimal.Decimal
	IsCashAccount bool
	Account       string
}

// HoldingValuation is a valued holding as reported to callers.
type HoldingValuation struct {
	Name                 string          `json:"name"`
	Ticker               string          `json:"ticker"`
	Shares               decimal.Decimal `json:"shares"`
	AveragePrice         decimal.Decimal `json:"average_price"`
	LatestPrice          decimal.Decimal `json:"latest_price"`
	Value                decimal.Decimal `json:"value"`
	ProfitLoss           decimal.Decimal `json:"profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
	Account              string          `json:"account"`
	IsAccount            bool            `json:"is_account"`
}

// Summary aggregates all qualifying holdings. Numeric fields are rounded to 2 places.
type Summary struct {
	BaseCurrency         Currency        `json:"base_currency"`
	TotalPortfolioValue  decimal.Decimal `json:"total_portfolio_value"`
	TotalCostBasis       decimal.Decimal `json:"total_cost_basis"`
	TotalProfitLoss      decimal.Decimal `json:"total_profit_loss"`
	ProfitLossPercentage decimal.Decimal `json:"profit_loss_percentage"`
}

// Valuation is the result of one valuation run.
type Valuation struct {
	RunID               string
	BaseCurrency        Currency
	ComputedAt          time.Time
	Summary             Summary
	Holdings            []HoldingValuation
	Warnings            []string
	DroppedTransactions int
}
