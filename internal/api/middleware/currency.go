// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"context"
	"net/http"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/validation"
)

type contextKey string

const baseCurrencyKey contextKey = "base_currency"

// ValidateBaseCurrencyMiddleware validates the base_currency query parameter and stores it
// in the request context. A missing parameter selects USD.
// Returns 400 Bad Request for any other value than USD or EUR.
//
// Example usage in router:
//
//	r.With(middleware.ValidateBaseCurrencyMiddleware).Get("/", handler.Portfolio)
func ValidateBaseCurrencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		base, err := validation.ValidateBaseCurrency(r.URL.Query().Get("base_currency"))
		if err != nil {
			response.RespondError(w, http.StatusBadRequest, "Base currency must be either USD or EUR", err.Error())
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), baseCurrencyKey, base)))
	})
}

// BaseCurrency returns the validated base currency of the request, or USD when the
// middleware did not run.
func BaseCurrency(ctx context.Context) model.Currency {
	if c, ok := ctx.Value(baseCurrencyKey).(model.Currency); ok {
		return c
	}
	return validation.DefaultBaseCurrency
}
