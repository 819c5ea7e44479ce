package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/fernet/fernet-go"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/api/response"
	"github.com/rs/zerolog/log"
)

// TimeTokenHeader carries a short-lived fernet token proving possession of the API key.
const TimeTokenHeader = "X-Time-Token"

// APIKeyAuth checks the configured API key header and, when enabled, a time token.
type APIKeyAuth struct {
	headerName   string
	apiKey       string
	timeTokenTTL time.Duration
}

// NewAPIKeyAuth creates the authentication middleware.
// A zero timeTokenTTL disables the time token check.
func NewAPIKeyAuth(headerName, apiKey string, timeTokenTTL time.Duration) *APIKeyAuth {
	return &APIKeyAuth{
		headerName:   headerName,
		apiKey:       apiKey,
		timeTokenTTL: timeTokenTTL,
	}
}

// Handler rejects requests without a valid API key with 403.
// It answers 500 when the server has no API key configured.
func (a *APIKeyAuth) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.apiKey == "" {
			log.Error().Msg("API key authentication is not configured")
			response.RespondError(w, http.StatusInternalServerError, "authentication error", "Authentication not loaded")
			return
		}

		provided := r.Header.Get(a.headerName)
		if provided == "" {
			response.RespondError(w, http.StatusForbidden, "could not validate API key", "Missing API key")
			return
		}
		if subtle.ConstantTimeCompare([]byte(provided), []byte(a.apiKey)) != 1 {
			response.RespondError(w, http.StatusForbidden, "could not validate API key", "Invalid API key")
			return
		}

		if a.timeTokenTTL > 0 {
			token := r.Header.Get(TimeTokenHeader)
			if token == "" {
				response.RespondError(w, http.StatusForbidden, "could not validate API key", "Missing Time token")
				return
			}
			if !VerifyTimeToken(a.apiKey, token, a.timeTokenTTL) {
				response.RespondError(w, http.StatusForbidden, "could not validate API key", "Time token is invalid or expired")
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// fernetKey derives the token key from the API key.
func fernetKey(apiKey string) *fernet.Key {
	k := fernet.Key(sha256.Sum256([]byte(apiKey)))
	return &k
}

// GenerateTimeToken returns a fernet token for the current time, signed with a key derived from apiKey.
// Clients send it in the X-Time-Token header.
func GenerateTimeToken(apiKey string) string {
	tok, err := fernet.EncryptAndSign([]byte(strconv.FormatInt(time.Now().Unix(), 10)), fernetKey(apiKey))
	if err != nil {
		log.Error().Err(err).Msg("failed to generate time token")
		return ""
	}
	return string(tok)
}

// VerifyTimeToken reports whether token was issued with apiKey within ttl.
func VerifyTimeToken(apiKey, token string, ttl time.Duration) bool {
	return fernet.VerifyAndDecrypt([]byte(token), ttl, []*fernet.Key{fernetKey(apiKey)}) != nil
}
