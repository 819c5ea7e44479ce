package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/yahoo"
)

// MockYahooClient implements yahoo.Client from canned chart responses.
// A response registered for a symbol wins over the default response.
type MockYahooClient struct {
	mu        sync.Mutex
	fallback  yahoo.Response
	bySymbol  map[string]yahoo.Response
	err       error
	symbols   []string
	LastStart time.Time
	LastEnd   time.Time
}

// NewMockYahooClient returns a client whose default chart holds five daily closes ending
// yesterday: 100.25, 100.75, 101.25, 101.75, 102.25.
func NewMockYahooClient() *MockYahooClient {
	closes := []float64{100.25, 100.75, 101.25, 101.75, 102.25}
	first := Yesterday().AddDate(0, 0, -(len(closes) - 1))
	return &MockYahooClient{
		fallback: Chart("TEST", "USD", first, Prices(closes...)...),
		bySymbol: make(map[string]yahoo.Response),
	}
}

// QueryYahooFiveDaySymbol returns the canned chart for symbol.
func (m *MockYahooClient) QueryYahooFiveDaySymbol(_ context.Context, symbol string) (yahoo.Response, error) {
	return m.respond(symbol)
}

// QueryYahooSymbolByDateRange returns the canned chart for symbol and records the window.
func (m *MockYahooClient) QueryYahooSymbolByDateRange(_ context.Context, symbol string, start, end time.Time) (yahoo.Response, error) {
	m.mu.Lock()
	m.LastStart, m.LastEnd = start, end
	m.mu.Unlock()
	return m.respond(symbol)
}

// ParseChart uses the real parser; it has no side effects.
func (m *MockYahooClient) ParseChart(raw yahoo.Response) (yahoo.PriceChart, error) {
	return yahoo.NewFinanceClient().ParseChart(raw)
}

func (m *MockYahooClient) respond(symbol string) (yahoo.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.symbols = append(m.symbols, symbol)
	if m.err != nil {
		return yahoo.Response{}, m.err
	}
	if resp, ok := m.bySymbol[symbol]; ok {
		return resp, nil
	}
	return m.fallback, nil
}

// Symbols lists every queried symbol in call order.
func (m *MockYahooClient) Symbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.symbols...)
}

// WithError makes every query fail with err.
func (m *MockYahooClient) WithError(err error) *MockYahooClient {
	m.err = err
	return m
}

// WithResponse replaces the default chart.
func (m *MockYahooClient) WithResponse(resp yahoo.Response) *MockYahooClient {
	m.fallback = resp
	return m
}

// WithSymbolResponse registers a chart for one symbol.
func (m *MockYahooClient) WithSymbolResponse(symbol string, resp yahoo.Response) *MockYahooClient {
	m.bySymbol[symbol] = resp
	return m
}

// WithEmptyResponse makes the default chart a result without bars.
func (m *MockYahooClient) WithEmptyResponse() *MockYahooClient {
	m.fallback = Chart("TEST", "USD", time.Time{})
	return m
}

// Yesterday is midnight UTC of the previous day.
func Yesterday() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()-1, 0, 0, 0, 0, time.UTC)
}

// Prices turns closes into chart entries. Use nil entries (see Null) for missing bars.
func Prices(closes ...float64) []*float64 {
	out := make([]*float64, len(closes))
	for i := range closes {
		out[i] = &closes[i]
	}
	return out
}

// Null is a missing close, as Yahoo reports for non-trading bars.
var Null *float64

// Chart builds a daily chart for symbol with one bar per close, the first bar
// at first and each next bar one day later. A Yahoo bar sits at 14:30 UTC
// rather than midnight, so timestamps carry that offset.
func Chart(symbol, currency string, first time.Time, closes ...*float64) yahoo.Response {
	timestamps := make([]int64, len(closes))
	for i := range closes {
		timestamps[i] = first.AddDate(0, 0, i).Add(14*time.Hour + 30*time.Minute).Unix()
	}

	return yahoo.Response{
		Chart: yahoo.Chart{
			Result: []yahoo.Result{
				{
					Meta: yahoo.Meta{
						Symbol:    symbol,
						Currency:  currency,
						Shortname: symbol,
					},
					Timestamp: timestamps,
					Indicators: yahoo.IndicatorsContainer{
						Quote: []yahoo.Quote{{Close: closes}},
					},
				},
			},
		},
	}
}
