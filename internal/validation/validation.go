// Package validation checks request parameters before they reach the services.
package validation

import (
	"fmt"
	"strings"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

// DefaultBaseCurrency is used when a request does not name one.
const DefaultBaseCurrency = model.USD

// ValidateBaseCurrency checks a base_currency parameter.
// An empty value selects DefaultBaseCurrency. The value is case-sensitive, as USD and EUR
// are the only accepted spellings.
func ValidateBaseCurrency(raw string) (model.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultBaseCurrency, nil
	}
	c := model.Currency(raw)
	if !c.Supported() {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidCurrency, raw)
	}
	return c, nil
}
