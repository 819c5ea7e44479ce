package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/rs/zerolog/log"
)

// PortfolioHandler serves cached valuations.
type PortfolioHandler struct {
	cache *service.ValuationCache
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(cache *service.ValuationCache) *PortfolioHandler {
	return &PortfolioHandler{
		cache: cache,
	}
}

// SummaryResponse is the portfolio summary in the base currency.
type SummaryResponse struct {
	BaseCurrency         string  `json:"base_currency"`
	TotalPortfolioValue  float64 `json:"total_portfolio_value"`
	TotalCostBasis       float64 `json:"total_cost_basis"`
	TotalProfitLoss      float64 `json:"total_profit_loss"`
	ProfitLossPercentage float64 `json:"profit_loss_percentage"`
}

// PortfolioResponse represents the GET /api/portfolio response
type PortfolioResponse struct {
	Summary     SummaryResponse `json:"summary"`
	LastUpdated time.Time       `json:"last_updated"`
}

// HoldingResponse is one valued holding.
type HoldingResponse struct {
	Name                 string  `json:"name"`
	Ticker               string  `json:"ticker"`
	Shares               float64 `json:"shares"`
	AveragePrice         float64 `json:"average_price"`
	LatestPrice          float64 `json:"latest_price"`
	Value                float64 `json:"value"`
	ProfitLoss           float64 `json:"profit_loss"`
	ProfitLossPercentage float64 `json:"profit_loss_percentage"`
	Account              string  `json:"account,omitempty"`
	IsAccount            bool    `json:"is_account"`
}

// HoldingsResponse represents the GET /api/portfolio/holdings response
type HoldingsResponse struct {
	BaseCurrency        string            `json:"base_currency"`
	Holdings            []HoldingResponse `json:"holdings"`
	Warnings            []string          `json:"warnings"`
	DroppedTransactions int               `json:"dropped_transactions"`
	LastUpdated         time.Time         `json:"last_updated"`
}

// Portfolio returns the summary of the last successful valuation.
//
// Endpoint: GET /api/portfolio?base_currency=USD|EUR
// Response: 200 OK with PortfolioResponse
// Error: 503 Service Unavailable before the first successful refresh
func (h *PortfolioHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	v, ok := h.valuation(w, r)
	if !ok {
		return
	}

	response.RespondJSON(w, http.StatusOK, PortfolioResponse{
		Summary:     toSummaryResponse(v.Summary),
		LastUpdated: v.ComputedAt,
	})
}

// Holdings returns every valued holding of the last successful valuation.
//
// Endpoint: GET /api/portfolio/holdings?base_currency=USD|EUR
// Response: 200 OK with HoldingsResponse
// Error: 503 Service Unavailable before the first successful refresh
func (h *PortfolioHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	v, ok := h.valuation(w, r)
	if !ok {
		return
	}

	holdings := make([]HoldingResponse, len(v.Holdings))
	for i, hv := range v.Holdings {
		holdings[i] = HoldingResponse{
			Name:                 hv.Name,
			Ticker:               hv.Ticker,
			Shares:               hv.Shares.InexactFloat64(),
			AveragePrice:         hv.AveragePrice.InexactFloat64(),
			LatestPrice:          hv.LatestPrice.InexactFloat64(),
			Value:                hv.Value.InexactFloat64(),
			ProfitLoss:           hv.ProfitLoss.InexactFloat64(),
			ProfitLossPercentage: hv.ProfitLossPercentage.InexactFloat64(),
			Account:              hv.Account,
			IsAccount:            hv.IsAccount,
		}
	}

	warnings := v.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	response.RespondJSON(w, http.StatusOK, HoldingsResponse{
		BaseCurrency:        v.BaseCurrency.String(),
		Holdings:            holdings,
		Warnings:            warnings,
		DroppedTransactions: v.DroppedTransactions,
		LastUpdated:         v.ComputedAt,
	})
}

// Refresh starts a background recomputation of every configured currency.
//
// Endpoint: POST /api/portfolio/refresh
// Response: 202 Accepted
func (h *PortfolioHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	go func() {
		if err := h.cache.Refresh(ctx); err != nil {
			log.Warn().Err(err).Msg("requested refresh finished with errors")
		}
	}()

	response.RespondJSON(w, http.StatusAccepted, map[string]string{"status": "refresh started"})
}

func (h *PortfolioHandler) valuation(w http.ResponseWriter, r *http.Request) (*model.Valuation, bool) {
	v, err := h.cache.Get(middleware.BaseCurrency(r.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrValuationNotAvailable) {
			response.RespondError(w, http.StatusServiceUnavailable, "Portfolio data is not yet available", err.Error())
			return nil, false
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to get valuation", err.Error())
		return nil, false
	}
	return v, true
}

func toSummaryResponse(s model.Summary) SummaryResponse {
	return SummaryResponse{
		BaseCurrency:         s.BaseCurrency.String(),
		TotalPortfolioValue:  s.TotalPortfolioValue.InexactFloat64(),
		TotalCostBasis:       s.TotalCostBasis.InexactFloat64(),
		TotalProfitLoss:      s.TotalProfitLoss.InexactFloat64(),
		ProfitLossPercentage: s.ProfitLossPercentage.InexactFloat64(),
	}
}
