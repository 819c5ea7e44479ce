package model

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
)

// Currency is an ISO 4217 code as it appears in the ledger.
type Currency string

// The supported currency pair. The FX rate is always expressed as USD per EUR.
const (
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// SupportedCurrencies lists every currency a valuation can be expressed in.
var SupportedCurrencies = []Currency{USD, EUR}

// Supported reports whether c is one of USD or EUR.
func (c Currency) Supported() bool {
	return c == USD || c == EUR
}

func (c Currency) String() string {
	return string(c)
}

// ParseCurrency normalizes s and returns it as a supported Currency.
// Any value other than USD or EUR returns apperrors.ErrUnsupportedCurrency.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Supported() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnsupportedCurrency, s)
	}
	return c, nil
}
