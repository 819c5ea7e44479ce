// Package ledger parses a portfolio ledger XML document into typed entities.
package ledger

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Fixed-point scales (powers of ten) used by the ledger's raw integers.
const (
	SharesScale int32 = 8
	AmountScale int32 = 2
	FeeScale    int32 = 8
	PriceScale  int32 = 8
)

var referenceIndex = regexp.MustCompile(`\[(\d+)\]\s*$`)

// LoadFile opens path and parses it as a ledger document.
func LoadFile(path string) (*model.Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load parses a ledger document.
//
// Structural problems (missing securities or accounts sections, unparseable
// numbers or dates) return apperrors.ErrMalformedLedger. A portfolio
// transaction with an unresolvable security reference is dropped and counted
// in Ledger.DroppedTransactions.
func Load(r io.Reader) (*model.Ledger, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedLedger, err)
	}

	securitiesNode := root.child("securities")
	if securitiesNode == nil {
		return nil, fmt.Errorf("%w: missing securities section", apperrors.ErrMalformedLedger)
	}
	accountsNode := root.child("accounts")
	if accountsNode == nil {
		return nil, fmt.Errorf("%w: missing accounts section", apperrors.ErrMalformedLedger)
	}

	l := &model.Ledger{}

	securities, err := parseSecurities(securitiesNode)
	if err != nil {
		return nil, err
	}
	l.Securities = securities

	for _, acctNode := range accountsNode.childrenNamed("account") {
		account, err := parseAccount(l, acctNode)
		if err != nil {
			return nil, err
		}
		l.Accounts = append(l.Accounts, account)
	}

	return l, nil
}

func parseSecurities(n *node) ([]model.Security, error) {
	nodes := n.childrenNamed("security")
	securities := make([]model.Security, 0, len(nodes))
	for _, sec := range nodes {
		s := model.Security{
			ID:       sec.textOr("uuid", ""),
			Name:     sec.textOr("name", ""),
			Ticker:   sec.textOr("tickerSymbol", ""),
			Currency: model.Currency(sec.textOr("currencyCode", "")),
		}
		if latest := sec.child("latest"); latest != nil {
			if v, ok := latest.attr("v"); ok {
				price, err := descale(v, PriceScale)
				if err != nil {
					return nil, fmt.Errorf("%w: security %s latest price: %v", apperrors.ErrMalformedLedger, s.ID, err)
				}
				s.LatestPrice = price
			}
		}
		securities = append(securities, s)
	}
	return securities, nil
}

func parseAccount(l *model.Ledger, n *node) (model.Account, error) {
	account := model.Account{
		Name:     n.textOr("name", ""),
		Currency: model.Currency(n.textOr("currencyCode", "")),
	}

	// A nested account element is another account's inline definition; its
	// portfolios and cash belong to that account, not to n.
	for _, pNode := range n.descendants("portfolio", "account") {
		portfolio := model.Portfolio{Name: pNode.textOr("name", "")}
		for _, txnNode := range pNode.descendants("portfolio-transaction", "portfolio") {
			txn, err := parsePortfolioTransaction(txnNode, len(l.Securities))
			if err != nil {
				if errors.Is(err, apperrors.ErrMalformedReference) {
					l.DroppedTransactions++
					l.Warnings = append(l.Warnings, err.Error())
					log.Warn().Err(err).Str("portfolio", portfolio.Name).Msg("dropping portfolio transaction")
					continue
				}
				return model.Account{}, err
			}
			portfolio.Transactions = append(portfolio.Transactions, txn)
		}
		account.Portfolios = append(account.Portfolios, portfolio)
	}

	for _, txnNode := range n.descendants("account-transaction", "portfolio", "account") {
		currency, ok := txnNode.text("currencyCode")
		if !ok {
			continue
		}
		date, err := parseDate(txnNode.textOr("date", ""))
		if err != nil {
			return model.Account{}, err
		}
		amount, err := descale(txnNode.textOr("amount", "0"), AmountScale)
		if err != nil {
			return model.Account{}, fmt.Errorf("%w: account %s amount: %v", apperrors.ErrMalformedLedger, account.Name, err)
		}
		account.Transactions = append(account.Transactions, model.AccountTransaction{
			Type:     model.AccountTransactionType(txnNode.textOr("type", "")),
			Currency: model.Currency(currency),
			Date:     date,
			Amount:   amount,
		})
	}

	return account, nil
}

func parsePortfolioTransaction(n *node, securityCount int) (model.PortfolioTransaction, error) {
	ref := ""
	if sec := n.child("security"); sec != nil {
		ref, _ = sec.attr("reference")
	}
	index, err := ResolveSecurityReference(ref, securityCount)
	if err != nil {
		return model.PortfolioTransaction{}, err
	}

	date, err := parseDate(n.textOr("date", ""))
	if err != nil {
		return model.PortfolioTransaction{}, err
	}
	shares, err := descale(n.textOr("shares", "0"), SharesScale)
	if err != nil {
		return model.PortfolioTransaction{}, fmt.Errorf("%w: shares: %v", apperrors.ErrMalformedLedger, err)
	}
	amount, err := descale(n.textOr("amount", "0"), AmountScale)
	if err != nil {
		return model.PortfolioTransaction{}, fmt.Errorf("%w: amount: %v", apperrors.ErrMalformedLedger, err)
	}

	txn := model.PortfolioTransaction{
		Type:          model.PortfolioTransactionType(n.textOr("type", "")),
		Currency:      model.Currency(n.textOr("currencyCode", "")),
		Date:          date,
		Shares:        shares,
		Amount:        amount,
		SecurityIndex: index,
	}

	for _, unit := range n.descendants("unit", "portfolio", "account-transaction") {
		if t, _ := unit.attr("type"); t != "FEE" {
			continue
		}
		amountNode := unit.child("amount")
		if amountNode == nil {
			return model.PortfolioTransaction{}, fmt.Errorf("%w: fee unit without amount", apperrors.ErrMalformedLedger)
		}
		raw, ok := amountNode.attr("amount")
		if !ok {
			return model.PortfolioTransaction{}, fmt.Errorf("%w: fee unit without amount attribute", apperrors.ErrMalformedLedger)
		}
		fee, err := descale(raw, FeeScale)
		if err != nil {
			return model.PortfolioTransaction{}, fmt.Errorf("%w: fee amount: %v", apperrors.ErrMalformedLedger, err)
		}
		txn.Fees = append(txn.Fees, fee)
	}

	return txn, nil
}

// ResolveSecurityReference turns a reference such as
// "../../../../securities/security[3]" into a 0-based index.
// The trailing bracketed integer is 1-based; a missing, unparseable or
// out-of-range index returns apperrors.ErrMalformedReference.
func ResolveSecurityReference(ref string, securityCount int) (int, error) {
	m := referenceIndex.FindStringSubmatch(ref)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", apperrors.ErrMalformedReference, ref)
	}
	position, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", apperrors.ErrMalformedReference, ref, err)
	}
	index := position - 1
	if index < 0 || index >= securityCount {
		return 0, fmt.Errorf("%w: %q out of range (%d securities)", apperrors.ErrMalformedReference, ref, securityCount)
	}
	return index, nil
}

// parseDate reads the calendar day of an ISO-ish timestamp such as
// "2023-04-05T00:00". An empty string yields the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	day, _, _ := strings.Cut(s, "T")
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q: %v", apperrors.ErrMalformedLedger, s, err)
	}
	return d.UTC(), nil
}

func descale(raw string, scale int32) (decimal.Decimal, error) {
	v, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, err
	}
	return v.Shift(-scale), nil
}
