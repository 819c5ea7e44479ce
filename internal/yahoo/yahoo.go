package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
)

// DefaultBaseURL is the Yahoo Finance chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart"

// ErrNoPriceData is returned by ParseChart when a response carries no usable bars.
var ErrNoPriceData = errors.New("no price data returned")

// Client defines the interface for fetching financial data from Yahoo Finance.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error)
	QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	ParseChart(yahooResult Response) (PriceChart, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying stock prices
// and related financial data.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client with default HTTP settings.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithHTTPClient(&http.Client{})
}

// NewFinanceClientWithHTTPClient creates a client that sends requests through hc.
// Tests use it to install a mock transport.
func NewFinanceClientWithHTTPClient(hc *http.Client) *FinanceClient {
	return &FinanceClient{
		httpClient: hc,
		baseURL:    DefaultBaseURL,
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
// This method extracts price data (open, close, high, low, volume) and metadata
// (symbol, currency, exchange) from the Yahoo response format.
//
// Bars whose close is null are skipped. The method returns ErrNoPriceData when
// no result, no timestamps or no close prices are present, and an error when
// the close and timestamp arrays have different lengths.
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, ErrNoPriceData
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, ErrNoPriceData
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("%w: no close prices returned", ErrNoPriceData)
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, 0, len(result.Timestamp))
	for i, v := range result.Timestamp {
		if quote.Close[i] == nil {
			continue
		}
		indicators = append(indicators, Indicators{
			Date:       time.Unix(v, 0).UTC(),
			PriceOpen:  floatAt(quote.Open, i),
			PriceClose: *quote.Close[i],
			Volume:     intAt(quote.Volume, i),
			PriceHigh:  floatAt(quote.High, i),
			PriceLow:   floatAt(quote.Low, i),
		})
	}
	if len(indicators) == 0 {
		return PriceChart{}, fmt.Errorf("%w: all close prices are null", ErrNoPriceData)
	}

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		Indicators:       indicators,
	}, nil
}

// GetIndicatorForDate searches for price data matching a specific date.
// The method performs date-only comparison by truncating both the target and
// indicator dates to midnight UTC, ignoring time components.
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, ind := range c.Indicators {
		if ind.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}

// Latest returns the most recent bar of the chart.
func (c PriceChart) Latest() (Indicators, bool) {
	if len(c.Indicators) == 0 {
		return Indicators{}, false
	}
	return c.Indicators[len(c.Indicators)-1], true
}

// QueryYahooFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
// This method is optimized for retrieving recent price history, typically used
// to get the latest available closing price.
func (c *FinanceClient) QueryYahooFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	u := fmt.Sprintf("%s/%s?interval=1d&range=5d", c.baseURL, url.PathEscape(symbol))
	result, err := c.queryYahoo(ctx, u)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// QueryYahooSymbolByDateRange fetches daily price data for a symbol within a specific date range.
// startDate is inclusive; endDate is exclusive, as Yahoo interprets period2.
func (c *FinanceClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	u := fmt.Sprintf(
		"%s/%s?interval=1d&period1=%d&period2=%d",
		c.baseURL,
		url.PathEscape(symbol),
		startDate.Unix(),
		endDate.Unix(),
	)
	result, err := c.queryYahoo(ctx, u)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("no results returned for symbol %s", symbol)
	}

	return result, nil
}

// queryYahoo is an internal helper that executes HTTP requests to Yahoo Finance API.
// This method handles the common logic for making requests, reading responses,
// parsing JSON, and checking for API errors.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) queryYahoo(ctx context.Context, u string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, err
	}

	if response.Chart.Error != nil {
		if response.Chart.Error.Code == "Not Found" {
			return response, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, response.Chart.Error.Description)
		}
		return response, fmt.Errorf("yahoo error: %s: %s", response.Chart.Error.Code, response.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return response, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return response, nil
}

func floatAt(values []*float64, i int) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}

func intAt(values []*int64, i int) int64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return 0
}
