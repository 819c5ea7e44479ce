package testutil

import (
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/shopspring/decimal"
)

// LedgerBuilder provides a fluent interface for creating in-memory ledgers.
//
// Example usage:
//
//	ledger := testutil.NewLedger().
//	    WithSecurity("sec-aapl", "Apple", "AAPL", model.USD).
//	    WithAccount("Broker", model.EUR).
//	    Buy("Main Depot", 0, model.USD, "2024-01-02", "10", "1000", "1").
//	    Build()
type LedgerBuilder struct {
	ledger model.Ledger
}

// NewLedger creates an empty LedgerBuilder.
func NewLedger() *LedgerBuilder {
	return &LedgerBuilder{}
}

// WithSecurity appends a security. Its index is its position in call order.
func (b *LedgerBuilder) WithSecurity(id, name, ticker string, currency model.Currency) *LedgerBuilder {
	b.ledger.Securities = append(b.ledger.Securities, model.Security{
		ID:       id,
		Name:     name,
		Ticker:   ticker,
		Currency: currency,
	})
	return b
}

// WithLedgerPrice sets the latest price the ledger records for the last security added.
func (b *LedgerBuilder) WithLedgerPrice(price string) *LedgerBuilder {
	b.ledger.Securities[len(b.ledger.Securities)-1].LatestPrice = decimal.RequireFromString(price)
	return b
}

// WithAccount appends an account. Later transactions are recorded on the last account added.
func (b *LedgerBuilder) WithAccount(name string, currency model.Currency) *LedgerBuilder {
	b.ledger.Accounts = append(b.ledger.Accounts, model.Account{Name: name, Currency: currency})
	return b
}

// Buy records a BUY in the named portfolio of the current account.
func (b *LedgerBuilder) Buy(portfolio string, security int, currency model.Currency, date, shares, amount string, fees ...string) *LedgerBuilder {
	return b.trade(model.PortfolioTransactionBuy, portfolio, security, currency, date, shares, amount, fees)
}

// Sell records a SELL in the named portfolio of the current account.
func (b *LedgerBuilder) Sell(portfolio string, security int, currency model.Currency, date, shares, amount string, fees ...string) *LedgerBuilder {
	return b.trade(model.PortfolioTransactionSell, portfolio, security, currency, date, shares, amount, fees)
}

// Cash records an account transaction on the current account.
func (b *LedgerBuilder) Cash(kind model.AccountTransactionType, currency model.Currency, date, amount string) *LedgerBuilder {
	acct := b.current()
	acct.Transactions = append(acct.Transactions, model.AccountTransaction{
		Type:     kind,
		Currency: currency,
		Date:     parseOptionalDate(date),
		Amount:   decimal.RequireFromString(amount),
	})
	return b
}

// Build returns the assembled ledger.
func (b *LedgerBuilder) Build() *model.Ledger {
	l := b.ledger
	return &l
}

func (b *LedgerBuilder) trade(kind model.PortfolioTransactionType, portfolio string, security int, currency model.Currency, date, shares, amount string, fees []string) *LedgerBuilder {
	tx := model.PortfolioTransaction{
		Type:          kind,
		Currency:      currency,
		Date:          parseOptionalDate(date),
		Shares:        decimal.RequireFromString(shares),
		Amount:        decimal.RequireFromString(amount),
		SecurityIndex: security,
	}
	for _, f := range fees {
		tx.Fees = append(tx.Fees, decimal.RequireFromString(f))
	}

	acct := b.current()
	for i := range acct.Portfolios {
		if acct.Portfolios[i].Name == portfolio {
			acct.Portfolios[i].Transactions = append(acct.Portfolios[i].Transactions, tx)
			return b
		}
	}
	acct.Portfolios = append(acct.Portfolios, model.Portfolio{
		Name:         portfolio,
		Transactions: []model.PortfolioTransaction{tx},
	})
	return b
}

func (b *LedgerBuilder) current() *model.Account {
	if len(b.ledger.Accounts) == 0 {
		b.ledger.Accounts = append(b.ledger.Accounts, model.Account{Name: "Default"})
	}
	return &b.ledger.Accounts[len(b.ledger.Accounts)-1]
}

func parseOptionalDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	return Date(s)
}
