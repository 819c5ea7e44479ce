package service

import (
	"context"
	"fmt"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/shopspring/decimal"
)

// Aggregation is the replayed state of a ledger in one base currency.
type Aggregation struct {
	BaseCurrency model.Currency
	// Holdings are in first-seen order: security holdings, then cash accounts.
	Holdings []*model.Holding
	Warnings []string
}

// HoldingsService replays ledger transactions into running positions.
type HoldingsService struct {
	currency *CurrencyService
}

// NewHoldingsService creates a HoldingsService that converts through currency.
func NewHoldingsService(currency *CurrencyService) *HoldingsService {
	return &HoldingsService{currency: currency}
}

type aggregator struct {
	ctx      context.Context
	currency *CurrencyService
	base     model.Currency
	byKey    map[string]*model.Holding
	result   *Aggregation
	warned   map[string]bool
}

// Aggregate replays every portfolio transaction and every cash account transaction of ledger.
// Every amount is converted to base on its own date in its own currency.
// Holdings with non-positive shares are kept; filtering is up to the caller.
func (s *HoldingsService) Aggregate(ctx context.Context, ledger *model.Ledger, base model.Currency) (*Aggregation, error) {
	if !base.Supported() {
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, base)
	}

	a := &aggregator{
		ctx:      ctx,
		currency: s.currency,
		base:     base,
		byKey:    make(map[string]*model.Holding),
		result:   &Aggregation{BaseCurrency: base},
		warned:   make(map[string]bool),
	}

	for _, acct := range ledger.Accounts {
		for _, p := range acct.Portfolios {
			for _, tx := range p.Transactions {
				if err := a.applyTrade(ledger, p.Name, tx); err != nil {
					return nil, err
				}
			}
		}
	}

	for _, acct := range ledger.Accounts {
		if acct.Currency == "" || acct.IsCurrencyLedger() {
			continue
		}
		h := a.cashHolding(acct.Name)
		for _, tx := range acct.Transactions {
			if err := a.applyCash(h, tx); err != nil {
				return nil, err
			}
		}
	}

	return a.result, nil
}

func (a *aggregator) applyTrade(ledger *model.Ledger, portfolio string, tx model.PortfolioTransaction) error {
	if tx.Type != model.PortfolioTransactionBuy && tx.Type != model.PortfolioTransactionSell {
		return nil
	}
	if tx.SecurityIndex < 0 || tx.SecurityIndex >= len(ledger.Securities) {
		return nil
	}
	sec := ledger.Securities[tx.SecurityIndex]

	amount, err := a.convert(tx.Amount, tx.Currency, tx)
	if err != nil {
		return err
	}
	fees := decimal.Zero
	for _, fee := range tx.Fees {
		converted, err := a.convert(fee, tx.Currency, tx)
		if err != nil {
			return err
		}
		fees = fees.Add(converted)
	}

	h := a.securityHolding(sec, tx.SecurityIndex)
	h.Account = portfolio

	switch tx.Type {
	case model.PortfolioTransactionBuy:
		h.TotalShares = h.TotalShares.Add(tx.Shares)
		h.TotalCost = h.TotalCost.Add(amount).Add(fees)
	case model.PortfolioTransactionSell:
		h.TotalShares = h.TotalShares.Sub(tx.Shares)
		h.TotalCost = h.TotalCost.Sub(amount)
	}
	h.Fees = h.Fees.Add(fees)
	return nil
}

func (a *aggregator) applyCash(h *model.Holding, tx model.AccountTransaction) error {
	var sign int64
	switch tx.Type {
	case model.AccountTransactionDeposit, model.AccountTransactionDividend, model.AccountTransactionInterest:
		sign = 1
	case model.AccountTransactionRemoval, model.AccountTransactionFee:
		sign = -1
	default:
		return nil
	}

	amount, outcome, err := a.currency.ConvertDetailed(a.ctx, tx.Amount, tx.Currency, a.base, tx.Date)
	if err != nil {
		return fmt.Errorf("account %q: %w", h.Name, err)
	}
	a.warn(outcome)

	delta := amount.Mul(decimal.NewFromInt(sign))
	h.TotalShares = h.TotalShares.Add(delta)
	h.TotalCost = h.TotalCost.Add(delta)
	return nil
}

func (a *aggregator) convert(amount decimal.Decimal, from model.Currency, tx model.PortfolioTransaction) (decimal.Decimal, error) {
	converted, outcome, err := a.currency.ConvertDetailed(a.ctx, amount, from, a.base, tx.Date)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s transaction on %s: %w", tx.Type, formatDay(tx.Date), err)
	}
	a.warn(outcome)
	return converted, nil
}

func (a *aggregator) warn(outcome RateOutcome) {
	msg := outcome.Warning()
	if msg == "" || a.warned[msg] {
		return
	}
	a.warned[msg] = true
	a.result.Warnings = append(a.result.Warnings, msg)
}

func (a *aggregator) securityHolding(sec model.Security, index int) *model.Holding {
	key := "security:" + sec.ID
	if sec.ID == "" {
		key = fmt.Sprintf("security#%d", index)
	}
	if h, ok := a.byKey[key]; ok {
		return h
	}
	h := &model.Holding{
		Key:           key,
		Name:          sec.Name,
		Ticker:        sec.Ticker,
		SecurityIndex: index,
	}
	a.byKey[key] = h
	a.result.Holdings = append(a.result.Holdings, h)
	return h
}

func (a *aggregator) cashHolding(account string) *model.Holding {
	key := "account:" + account
	if h, ok := a.byKey[key]; ok {
		return h
	}
	h := &model.Holding{
		Key:           key,
		Name:          account,
		Ticker:        model.CashTicker,
		SecurityIndex: -1,
		IsCashAccount: true,
		Account:       account,
	}
	a.byKey[key] = h
	a.result.Holdings = append(a.result.Holdings, h)
	return h
}
