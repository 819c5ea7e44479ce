package validation

import (
	"errors"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
)

func TestValidateBaseCurrency(t *testing.T) {
	tests := []struct {
		raw     string
		want    model.Currency
		wantErr bool
	}{
		{"USD", model.USD, false},
		{"EUR", model.EUR, false},
		{"", model.USD, false},
		{"  ", model.USD, false},
		{"usd", "", true},
		{"GBP", "", true},
		{"EURO", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ValidateBaseCurrency(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrInvalidCurrency) {
					t.Errorf("ValidateBaseCurrency(%q) error = %v, want ErrInvalidCurrency", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateBaseCurrency(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ValidateBaseCurrency(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
