package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func newHoldingsService(stub *testutil.StubProvider) *service.HoldingsService {
	return service.NewHoldingsService(service.NewCurrencyService(stub, time.Second))
}

func findHolding(t *testing.T, agg *service.Aggregation, name string) *model.Holding {
	t.Helper()
	for _, h := range agg.Holdings {
		if h.Name == name {
			return h
		}
	}
	t.Fatalf("holding %q not found", name)
	return nil
}

func TestHoldingsService_Aggregate(t *testing.T) {
	ctx := context.Background()

	t.Run("signed share and cost deltas", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "Apple", "AAPL", model.USD).
			WithAccount("Broker", model.USD).
			Buy("Main", 0, model.USD, "2024-01-02", "10", "1000", "2", "0.5").
			Buy("Main", 0, model.USD, "2024-02-01", "5", "600", "1").
			Sell("Main", 0, model.USD, "2024-03-01", "3", "450", "4").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}

		h := findHolding(t, agg, "Apple")
		testutil.AssertDecimal(t, "TotalShares", h.TotalShares, "12")
		// 1000+2.5 + 600+1 - 450; sell fees stay out of cost.
		testutil.AssertDecimal(t, "TotalCost", h.TotalCost, "1153.5")
		testutil.AssertDecimal(t, "Fees", h.Fees, "7.5")
		if h.IsCashAccount || h.Ticker != "AAPL" || h.Account != "Main" {
			t.Errorf("holding = %+v, want security holding in Main", h)
		}
	})

	t.Run("each amount converted at its own date", func(t *testing.T) {
		stub := testutil.NewStubProvider().
			WithClose(market.FXSymbol, "2024-01-02", "1.1").
			WithClose(market.FXSymbol, "2024-06-03", "1.2")
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "ASML", "ASML.AS", model.EUR).
			WithAccount("Broker", model.EUR).
			Buy("Main", 0, model.EUR, "2024-01-02", "1", "100", "10").
			Buy("Main", 0, model.EUR, "2024-06-03", "1", "100").
			Build()

		agg, err := newHoldingsService(stub).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}

		h := findHolding(t, agg, "ASML")
		// (100+10)*1.1 + 100*1.2
		testutil.AssertDecimal(t, "TotalCost", h.TotalCost, "241")
		testutil.AssertDecimal(t, "Fees", h.Fees, "11")
		if len(agg.Warnings) != 0 {
			t.Errorf("Warnings = %v, want none", agg.Warnings)
		}
	})

	t.Run("mixed transaction currencies", func(t *testing.T) {
		stub := testutil.NewStubProvider().WithClose(market.FXSymbol, "2024-01-02", "1.25")
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "Apple", "AAPL", model.USD).
			WithAccount("Broker", model.EUR).
			Buy("Main", 0, model.USD, "2024-01-02", "1", "125").
			Buy("Main", 0, model.EUR, "2024-01-02", "1", "100").
			Build()

		agg, err := newHoldingsService(stub).Aggregate(ctx, ledger, model.EUR)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		testutil.AssertDecimal(t, "TotalCost", findHolding(t, agg, "Apple").TotalCost, "200")
	})

	t.Run("cash account deposit", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithAccount("Savings", model.EUR).
			Cash(model.AccountTransactionDeposit, model.EUR, "2024-01-02", "500").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.EUR)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}

		h := findHolding(t, agg, "Savings")
		testutil.AssertDecimal(t, "TotalShares", h.TotalShares, "500")
		testutil.AssertDecimal(t, "TotalCost", h.TotalCost, "500")
		if !h.IsCashAccount || h.Ticker != model.CashTicker {
			t.Errorf("holding = %+v, want cash account", h)
		}
	})

	t.Run("cash account movements", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithAccount("Savings", model.EUR).
			Cash(model.AccountTransactionDeposit, model.EUR, "2024-01-02", "1000").
			Cash(model.AccountTransactionDividend, model.EUR, "2024-02-02", "20").
			Cash(model.AccountTransactionInterest, model.EUR, "2024-03-02", "5").
			Cash(model.AccountTransactionRemoval, model.EUR, "2024-04-02", "300").
			Cash(model.AccountTransactionFee, model.EUR, "2024-05-02", "2.5").
			Cash("TRANSFER_IN", model.EUR, "2024-06-02", "999").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.EUR)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}

		h := findHolding(t, agg, "Savings")
		testutil.AssertDecimal(t, "TotalShares", h.TotalShares, "722.5")
		testutil.AssertDecimal(t, "TotalCost", h.TotalCost, "722.5")
	})

	t.Run("currency ledgers are not holdings", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithAccount("USD", model.USD).
			Cash(model.AccountTransactionDeposit, model.USD, "2024-01-02", "500").
			WithAccount("EUR", model.EUR).
			Cash(model.AccountTransactionDeposit, model.EUR, "2024-01-02", "500").
			WithAccount("No Currency", "").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if len(agg.Holdings) != 0 {
			t.Errorf("Holdings = %d, want 0", len(agg.Holdings))
		}
	})

	t.Run("out of range reference contributes nothing", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "Apple", "AAPL", model.USD).
			WithAccount("Broker", model.USD).
			Buy("Main", 0, model.USD, "2024-01-02", "10", "1000").
			Buy("Main", 5, model.USD, "2024-01-02", "99", "9999").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		apple := findHolding(t, agg, "Apple")
		testutil.AssertDecimal(t, "TotalShares", apple.TotalShares, "10")
		testutil.AssertDecimal(t, "TotalCost", apple.TotalCost, "1000")
		// WHY: the Broker account still yields an empty cash holding; the
		// dangling reference must not land on it either.
		for _, h := range agg.Holdings {
			if h == apple {
				continue
			}
			testutil.AssertDecimal(t, h.Name+" TotalShares", h.TotalShares, "0")
			testutil.AssertDecimal(t, h.Name+" TotalCost", h.TotalCost, "0")
		}
	})

	t.Run("fully sold holding is retained", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "Apple", "AAPL", model.USD).
			WithAccount("Broker", model.USD).
			Buy("Main", 0, model.USD, "2024-01-02", "10", "1000").
			Sell("Main", 0, model.USD, "2024-02-02", "10", "1200").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		h := findHolding(t, agg, "Apple")
		if !h.TotalShares.IsZero() {
			t.Errorf("TotalShares = %s, want 0", h.TotalShares)
		}
		testutil.AssertDecimal(t, "TotalCost", h.TotalCost, "-200")
	})

	t.Run("securities before cash in first-seen order", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "Apple", "AAPL", model.USD).
			WithSecurity("sec-2", "Microsoft", "MSFT", model.USD).
			WithAccount("Broker", model.USD).
			Cash(model.AccountTransactionDeposit, model.USD, "2024-01-01", "100").
			Buy("Main", 1, model.USD, "2024-01-02", "1", "300").
			Buy("Main", 0, model.USD, "2024-01-03", "1", "180").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		want := []string{"Microsoft", "Apple", "Broker"}
		if len(agg.Holdings) != len(want) {
			t.Fatalf("Holdings = %d, want %d", len(agg.Holdings), len(want))
		}
		for i, name := range want {
			if agg.Holdings[i].Name != name {
				t.Errorf("Holdings[%d] = %q, want %q", i, agg.Holdings[i].Name, name)
			}
		}
	})

	t.Run("degraded rates become one warning each", func(t *testing.T) {
		stub := testutil.NewStubProvider().WithLatest(market.FXSymbol, "1.1")
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "ASML", "ASML.AS", model.EUR).
			WithAccount("Broker", model.EUR).
			Buy("Main", 0, model.EUR, "2024-01-02", "1", "100", "1").
			Buy("Main", 0, model.EUR, "2024-01-02", "1", "100").
			Build()

		agg, err := newHoldingsService(stub).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if len(agg.Warnings) != 1 {
			t.Errorf("Warnings = %v, want exactly one", agg.Warnings)
		}
		testutil.AssertDecimal(t, "TotalCost", findHolding(t, agg, "ASML").TotalCost, "221.1")
	})

	t.Run("unsupported transaction currency is fatal", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "Vodafone", "VOD.L", "GBP").
			WithAccount("Broker", model.EUR).
			Buy("Main", 0, "GBP", "2024-01-02", "1", "100").
			Build()

		_, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.EUR)
		if !errors.Is(err, apperrors.ErrUnsupportedCurrency) {
			t.Errorf("Aggregate() error = %v, want ErrUnsupportedCurrency", err)
		}
	})

	t.Run("unsupported base currency", func(t *testing.T) {
		// WHY: codes are normalized at the API and CLI boundary, so the engine
		// treats a lowercase code the same way conversion does.
		for _, base := range []model.Currency{"GBP", "eur", ""} {
			_, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, testutil.NewLedger().Build(), base)
			if !errors.Is(err, apperrors.ErrUnsupportedCurrency) {
				t.Errorf("Aggregate(%q) error = %v, want ErrUnsupportedCurrency", base, err)
			}
		}
	})

	t.Run("zero cost holding stays finite", func(t *testing.T) {
		ledger := testutil.NewLedger().
			WithSecurity("sec-1", "Gift", "GIFT", model.USD).
			WithAccount("Broker", model.USD).
			Buy("Main", 0, model.USD, "2024-01-02", "5", "0").
			Build()

		agg, err := newHoldingsService(testutil.NewStubProvider()).Aggregate(ctx, ledger, model.USD)
		if err != nil {
			t.Fatalf("Aggregate() error = %v", err)
		}
		if !findHolding(t, agg, "Gift").TotalCost.Equal(decimal.Zero) {
			t.Error("TotalCost != 0")
		}
	})
}
