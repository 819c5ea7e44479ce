package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/middleware"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
)

// NewRouter creates and configures the HTTP router
func NewRouter(systemService *service.SystemService, cache *service.ValuationCache, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins, cfg.Auth.HeaderName)
	r.Use(corsMiddleware.Handler)

	auth := custommiddleware.NewAPIKeyAuth(cfg.Auth.HeaderName, cfg.Auth.APIKey, cfg.Auth.TimeTokenTTL)

	// API routes
	r.Route("/api", func(r chi.Router) {
		systemHandler := handlers.NewSystemHandler(systemService)
		r.Get("/health", systemHandler.Health)

		// System namespace
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			portfolioHandler := handlers.NewPortfolioHandler(cache)
			r.Use(auth.Handler)

			r.With(custommiddleware.ValidateBaseCurrencyMiddleware).Get("/", portfolioHandler.Portfolio)
			r.With(custommiddleware.ValidateBaseCurrencyMiddleware).Get("/holdings", portfolioHandler.Holdings)
			r.Post("/refresh", portfolioHandler.Refresh)
		})
	})

	return r
}
