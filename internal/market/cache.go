package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CloseStore persists historical closes across process restarts.
type CloseStore interface {
	GetClose(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error)
	InsertClose(ctx context.Context, symbol string, day time.Time, price decimal.Decimal) error
}

// CachedProvider memoizes another Provider.
//
// Historical closes are cached only for days strictly before today, since the
// current day's bar can still change. Latest prices are cached for latestTTL.
// Only found values are cached.
type CachedProvider struct {
	upstream  Provider
	store     CloseStore
	closes    *lru.Cache
	latest    *lru.Cache
	latestTTL time.Duration
	now       func() time.Time
}

type latestEntry struct {
	price     decimal.Decimal
	fetchedAt time.Time
}

// CachedProviderOption configures a CachedProvider.
type CachedProviderOption func(*CachedProvider)

// WithCloseStore persists historical closes in store.
func WithCloseStore(store CloseStore) CachedProviderOption {
	return func(p *CachedProvider) {
		p.store = store
	}
}

// WithLatestTTL sets how long a latest price is reused. Zero disables latest caching.
func WithLatestTTL(ttl time.Duration) CachedProviderOption {
	return func(p *CachedProvider) {
		p.latestTTL = ttl
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) CachedProviderOption {
	return func(p *CachedProvider) {
		p.now = now
	}
}

// NewCachedProvider wraps upstream with an LRU of size entries.
func NewCachedProvider(upstream Provider, size int, opts ...CachedProviderOption) (*CachedProvider, error) {
	closes, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create close cache: %w", err)
	}
	latest, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create latest price cache: %w", err)
	}

	p := &CachedProvider{
		upstream: upstream,
		closes:   closes,
		latest:   latest,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// LatestPrice returns a cached latest price younger than the TTL, or asks upstream.
func (p *CachedProvider) LatestPrice(ctx context.Context, ticker string) (decimal.Decimal, error) {
	if p.latestTTL > 0 {
		if v, ok := p.latest.Get(ticker); ok {
			entry := v.(latestEntry)
			if p.now().Sub(entry.fetchedAt) < p.latestTTL {
				return entry.price, nil
			}
		}
	}

	price, err := p.upstream.LatestPrice(ctx, ticker)
	if err != nil {
		return decimal.Zero, err
	}
	if p.latestTTL > 0 {
		p.latest.Add(ticker, latestEntry{price: price, fetchedAt: p.now()})
	}
	return price, nil
}

// HistoricalClose consults the LRU, then the store, then upstream.
func (p *CachedProvider) HistoricalClose(ctx context.Context, ticker string, day time.Time) (decimal.Decimal, error) {
	day = Day(day)
	cacheable := day.Before(Day(p.now()))
	key := ticker + "|" + day.Format("2006-01-02")

	if cacheable {
		if v, ok := p.closes.Get(key); ok {
			return v.(decimal.Decimal), nil
		}
		if p.store != nil {
			price, err := p.store.GetClose(ctx, ticker, day)
			if err == nil {
				p.closes.Add(key, price)
				return price, nil
			}
			if !errors.Is(err, apperrors.ErrClosePriceNotFound) {
				log.Warn().Err(err).Str("symbol", ticker).Msg("close store lookup failed")
			}
		}
	}

	price, err := p.upstream.HistoricalClose(ctx, ticker, day)
	if err != nil {
		return decimal.Zero, err
	}

	if cacheable {
		p.closes.Add(key, price)
		if p.store != nil {
			if err := p.store.InsertClose(ctx, ticker, day, price); err != nil {
				log.Warn().Err(err).Str("symbol", ticker).Msg("failed to persist close")
			}
		}
	}
	return price, nil
}

// HistoricalRange is not cached.
func (p *CachedProvider) HistoricalRange(ctx context.Context, ticker string, start, end time.Time) ([]Close, error) {
	return p.upstream.HistoricalRange(ctx, ticker, start, end)
}
