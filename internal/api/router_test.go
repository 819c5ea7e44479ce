package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/testutil"
)

const testAPIKey = "router-test-key"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		Auth: config.AuthConfig{HeaderName: "X-API-Key", APIKey: testAPIKey},
	}
	cache := service.NewValuationCache(&testutil.CannedComputer{}, model.SupportedCurrencies)
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	return api.NewRouter(service.NewSystemService(nil), cache, cfg)
}

// TestNewRouter checks route wiring and which routes sit behind the API key.
func TestNewRouter(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		apiKey     string
		wantStatus int
	}{
		{"health is public", http.MethodGet, "/api/health", "", http.StatusOK},
		{"system health is public", http.MethodGet, "/api/system/health", "", http.StatusOK},
		{"version is public", http.MethodGet, "/api/system/version", "", http.StatusOK},
		{"portfolio requires key", http.MethodGet, "/api/portfolio", "", http.StatusForbidden},
		{"portfolio with key", http.MethodGet, "/api/portfolio", testAPIKey, http.StatusOK},
		{"portfolio with bad currency", http.MethodGet, "/api/portfolio?base_currency=JPY", testAPIKey, http.StatusBadRequest},
		{"holdings with key", http.MethodGet, "/api/portfolio/holdings?base_currency=EUR", testAPIKey, http.StatusOK},
		{"refresh requires key", http.MethodPost, "/api/portfolio/refresh", "", http.StatusForbidden},
		{"refresh with key", http.MethodPost, "/api/portfolio/refresh", testAPIKey, http.StatusAccepted},
		{"unknown route", http.MethodGet, "/api/nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.apiKey != "" {
				req.Header.Set("X-API-Key", tt.apiKey)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("%s %s = %d, want %d: %s", tt.method, tt.path, w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}
