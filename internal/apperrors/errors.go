package apperrors

import "errors"

// Data errors represent ledger or market data that is missing or unusable.
var (
	// ErrMalformedLedger indicates that the ledger document is structurally broken
	// (missing sections, unparseable numbers or dates). It is fatal to a run.
	ErrMalformedLedger = errors.New("malformed ledger")

	// ErrMalformedReference indicates a portfolio transaction whose security reference
	// cannot be parsed or points outside the securities table. The transaction is dropped.
	ErrMalformedReference = errors.New("malformed security reference")

	// ErrMissingMarketData indicates that no price could be obtained for a symbol.
	ErrMissingMarketData = errors.New("market data not available")

	// ErrMissingHistoricalRate indicates that a ladder rung found no FX close.
	// It never leaves the currency service.
	ErrMissingHistoricalRate = errors.New("historical exchange rate not available")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrClosePriceNotFound indicates no stored close for a specific symbol and date combination.
	ErrClosePriceNotFound = errors.New("close price for symbol/date not found")
)

// Business logic errors represent validation failures or constraint violations.
var (
	// ErrUnsupportedCurrency indicates a currency outside the supported USD/EUR pair.
	ErrUnsupportedCurrency = errors.New("unsupported currency")

	ErrInvalidCurrency = errors.New("base currency must be either USD or EUR")
)

// Service state errors.
var (
	// ErrValuationNotAvailable indicates that no valuation has completed yet.
	ErrValuationNotAvailable = errors.New("portfolio data is not yet available")

	ErrFailedToGetValuation = errors.New("failed to get portfolio valuation")
)
