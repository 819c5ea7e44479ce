package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PortfolioTransactionType is the kind of a security trade.
type PortfolioTransactionType string

const (
	PortfolioTransactionBuy  PortfolioTransactionType = "BUY"
	PortfolioTransactionSell PortfolioTransactionType = "SELL"
)

// AccountTransactionType is the kind of a cash movement on an account.
type AccountTransactionType string

const (
	AccountTransactionDeposit  AccountTransactionType = "DEPOSIT"
	AccountTransactionRemoval  AccountTransactionType = "REMOVAL"
	AccountTransactionDividend AccountTransactionType = "DIVIDEND"
	AccountTransactionInterest AccountTransactionType = "INTEREST"
	AccountTransactionFee      AccountTransactionType = "FEE"
)

// Security is an instrument listed in the ledger. Securities are immutable once loaded.
type Security struct {
	ID          string
	Name        string
	Ticker      string
	Currency    Currency
	LatestPrice decimal.Decimal // latest price recorded in the ledger, zero if absent
}

// Ledger is the typed form of one ledger document.
//
// Securities keep document order: portfolio transactions reference them by position.
type Ledger struct {
	Securities []Security
	Accounts   []Account

	// DroppedTransactions counts portfolio transactions whose security
	// reference could not be resolved.
	DroppedTransactions int
	Warnings            []string
}

// Account owns portfolios and direct cash transactions.
type Account struct {
	Name         string
	Currency     Currency // empty when the ledger does not declare one
	Portfolios   []Portfolio
	Transactions []AccountTransaction
}

// IsCurrencyLedger reports whether the account is a pass-through currency
// ledger (named "USD" or "EUR") rather than a cash holding.
func (a Account) IsCurrencyLedger() bool {
	return Currency(a.Name).Supported()
}

// Portfolio groups security trades under a name.
type Portfolio struct {
	Name         string
	Transactions []PortfolioTransaction
}

// PortfolioTransaction is a descaled BUY or SELL of a security.
//
// Date is the zero time when the ledger carries no date.
type PortfolioTransaction struct {
	Type          PortfolioTransactionType
	Currency      Currency
	Date          time.Time
	Shares        decimal.Decimal
	Amount        decimal.Decimal
	SecurityIndex int // 0-based index into Ledger.Securities
	Fees          []decimal.Decimal
}

// AccountTransaction is a descaled cash movement.
type AccountTransaction struct {
	Type     AccountTransactionType
	Currency Currency
	Date     time.Time
	Amount   decimal.Decimal
}
