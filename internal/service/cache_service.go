package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/model"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ValuationComputer produces a fresh valuation in one base currency.
type ValuationComputer interface {
	Compute(ctx context.Context, base model.Currency) (*model.Valuation, error)
}

// ValuationCache retains the last successful valuation per base currency.
// Concurrent refreshes collapse into one computation.
type ValuationCache struct {
	computer   ValuationComputer
	currencies []model.Currency

	mu      sync.RWMutex
	entries map[model.Currency]*model.Valuation

	group singleflight.Group
}

// NewValuationCache creates a cache that refreshes every currency in currencies.
func NewValuationCache(computer ValuationComputer, currencies []model.Currency) *ValuationCache {
	return &ValuationCache{
		computer:   computer,
		currencies: currencies,
		entries:    make(map[model.Currency]*model.Valuation),
	}
}

// Get returns the last successful valuation for base.
// Returns apperrors.ErrValuationNotAvailable before the first successful refresh.
func (c *ValuationCache) Get(base model.Currency) (*model.Valuation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.entries[base]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValuationNotAvailable, base)
	}
	return v, nil
}

// Refresh recomputes every configured currency. A failed currency keeps its previous entry.
// If a refresh is already running, the caller waits for it and shares its result.
func (c *ValuationCache) Refresh(ctx context.Context) error {
	_, err, shared := c.group.Do("refresh", func() (any, error) {
		return nil, c.refresh(ctx)
	})
	if shared {
		log.Debug().Msg("joined in-flight valuation refresh")
	}
	return err
}

func (c *ValuationCache) refresh(ctx context.Context) error {
	var errs []error
	for _, base := range c.currencies {
		v, err := c.computer.Compute(ctx, base)
		if err != nil {
			log.Error().Err(err).Str("base_currency", base.String()).Msg("valuation refresh failed, keeping previous result")
			errs = append(errs, fmt.Errorf("%s: %w", base, err))
			continue
		}

		c.mu.Lock()
		c.entries[base] = v
		c.mu.Unlock()
	}
	return errors.Join(errs...)
}
