package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ndewijer/Portfolio-Valuation-Backend/internal/apperrors"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// MarketCloseRepository persists daily closing prices in the market_close table.
// Prices are stored as decimal text so no precision is lost on the round trip.
type MarketCloseRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewMarketCloseRepository creates a new MarketCloseRepository with the provided database connection.
func NewMarketCloseRepository(db *sql.DB) *MarketCloseRepository {
	return &MarketCloseRepository{db: db}
}

func (r *MarketCloseRepository) WithTx(tx *sql.Tx) *MarketCloseRepository {
	return &MarketCloseRepository{
		db: r.db,
		tx: tx,
	}
}

func (r *MarketCloseRepository) getQuerier() interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// GetClose returns the stored close of symbol on day.
// Returns apperrors.ErrClosePriceNotFound when no row exists.
func (r *MarketCloseRepository) GetClose(ctx context.Context, symbol string, day time.Time) (decimal.Decimal, error) {
	query := `
		SELECT close
		FROM market_close
		WHERE symbol = ? AND date = ?
	`

	var raw string
	err := r.getQuerier().QueryRowContext(ctx, query, symbol, day.UTC().Format(dateLayout)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, apperrors.ErrClosePriceNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to query market_close: %w", err)
	}

	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse stored close %q: %w", raw, err)
	}
	return price, nil
}

// InsertClose stores a close. An existing row for the same symbol and day is kept.
func (r *MarketCloseRepository) InsertClose(ctx context.Context, symbol string, day time.Time, price decimal.Decimal) error {
	query := `
		INSERT OR IGNORE INTO market_close (id, symbol, date, close)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.getQuerier().ExecContext(ctx, query,
		uuid.New().String(),
		symbol,
		day.UTC().Format(dateLayout),
		price.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert market_close: %w", err)
	}
	return nil
}
