package model

import (
	"errors"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Currency
		wantErr bool
	}{
		{name: "usd", input: "USD", want: USD},
		{name: "eur lowercase", input: "eur", want: EUR},
		{name: "surrounding spaces", input: " USD ", want: USD},
		{name: "gbp unsupported", input: "GBP", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCurrency(tt.input)
			if tt.wantErr {
				if !errors.Is(err, apperrors.ErrUnsupportedCurrency) {
					t.Fatalf("Expected ErrUnsupportedCurrency, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCurrency(%q) returned unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAccount_IsCurrencyLedger(t *testing.T) {
	if !(Account{Name: "EUR"}).IsCurrencyLedger() {
		t.Error("Expected account named EUR to be a currency ledger")
	}
	if (Account{Name: "Broker Cash"}).IsCurrencyLedger() {
		t.Error("Expected account named Broker Cash not to be a currency ledger")
	}
}
