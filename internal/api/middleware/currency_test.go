package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/testutil"
)

func TestValidateBaseCurrencyMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		query      map[string]string
		wantStatus int
		wantBase   model.Currency
	}{
		{"default is USD", nil, http.StatusOK, model.USD},
		{"EUR", map[string]string{"base_currency": "EUR"}, http.StatusOK, model.EUR},
		{"USD", map[string]string{"base_currency": "USD"}, http.StatusOK, model.USD},
		{"unsupported", map[string]string{"base_currency": "GBP"}, http.StatusBadRequest, ""},
		{"lowercase", map[string]string{"base_currency": "eur"}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen model.Currency
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				seen = middleware.BaseCurrency(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/portfolio", tt.query)
			w := httptest.NewRecorder()
			middleware.ValidateBaseCurrencyMiddleware(next).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				if handlerCalled {
					t.Error("Expected request not to complete.")
				}
				var response map[string]string
				//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
				json.NewDecoder(w.Body).Decode(&response)
				if response["error"] != "Base currency must be either USD or EUR" {
					t.Errorf("Unexpected error message %q", response["error"])
				}
				return
			}
			if seen != tt.wantBase {
				t.Errorf("BaseCurrency() = %q, want %q", seen, tt.wantBase)
			}
		})
	}
}
