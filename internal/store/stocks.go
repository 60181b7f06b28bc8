package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// GetStock returns the reference record for symbol, or None when the symbol is
// unknown.
func (s *Store) GetStock(ctx context.Context, symbol string) (optional.Option[types.Stock], error) {
	query, args, err := s.sq.
		Select(
			"stock_code", "stock_name", "stock_name_short", "stock_name_en",
			"exchange", "industry", "lot_size", "allow_odd_lot", "is_active",
			"listed_date", "created_at", "updated_at",
		).
		From("stock_master").
		Where(squirrel.Eq{"stock_code": symbol}).
		ToSql()
	if err != nil {
		return optional.None[types.Stock](), errors.Wrap(errors.ErrCodeQueryFailed, "failed to build stock query", err)
	}

	var (
		stock      types.Stock
		listedDate sql.NullTime
	)

	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&stock.Symbol, &stock.Name, &stock.ShortName, &stock.EnglishName,
		&stock.Exchange, &stock.Industry, &stock.LotSize, &stock.AllowOddLot,
		&stock.IsActive, &listedDate, &stock.CreatedAt, &stock.UpdatedAt,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return optional.None[types.Stock](), nil
	}

	if err != nil {
		return optional.None[types.Stock](), errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to query stock %s", symbol)
	}

	if listedDate.Valid {
		stock.ListedDate = optional.Some(listedDate.Time)
	}

	return optional.Some(stock), nil
}

// UpsertStock inserts or replaces a reference record. Used by import tooling
// and tests; the admission path treats reference data as read-only.
func (s *Store) UpsertStock(ctx context.Context, stock types.Stock) error {
	now := time.Now().UTC()

	createdAt := stock.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	var listedDate any
	if stock.ListedDate.IsSome() {
		listedDate = stock.ListedDate.Unwrap()
	}

	query, args, err := s.sq.
		Insert("stock_master").
		Columns(
			"stock_code", "stock_name", "stock_name_short", "stock_name_en",
			"exchange", "industry", "lot_size", "allow_odd_lot", "is_active",
			"listed_date", "created_at", "updated_at",
		).
		Values(
			stock.Symbol, stock.Name, stock.ShortName, stock.EnglishName,
			stock.Exchange, stock.Industry, stock.LotSize, stock.AllowOddLot,
			stock.IsActive, listedDate, createdAt, now,
		).
		Suffix(`ON CONFLICT (stock_code) DO UPDATE SET
			stock_name = EXCLUDED.stock_name,
			stock_name_short = EXCLUDED.stock_name_short,
			stock_name_en = EXCLUDED.stock_name_en,
			exchange = EXCLUDED.exchange,
			industry = EXCLUDED.industry,
			lot_size = EXCLUDED.lot_size,
			allow_odd_lot = EXCLUDED.allow_odd_lot,
			is_active = EXCLUDED.is_active,
			listed_date = EXCLUDED.listed_date,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build stock upsert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to upsert stock %s", stock.Symbol)
	}

	return nil
}
