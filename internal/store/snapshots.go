package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// UpsertSnapshot overwrites the latest-quote row for the quote's symbol. The
// table keeps at most one row per symbol.
func (s *Store) UpsertSnapshot(ctx context.Context, quote types.Quote) error {
	query, args, err := s.sq.
		Insert("stock_quotes_snapshot").
		Columns(
			"stock_code", "current_price", "yesterday_price", "open_price",
			"high_price", "low_price", "limit_up_price", "limit_down_price",
			"change_amount", "change_percent", "total_volume", "total_value",
			"update_time",
		).
		Values(
			quote.Symbol,
			quote.CurrentPrice.String(),
			quote.PreviousClose.String(),
			quote.OpenPrice.String(),
			quote.HighPrice.String(),
			quote.LowPrice.String(),
			quote.LimitUpPrice.String(),
			quote.LimitDownPrice.String(),
			quote.ChangeAmount.String(),
			quote.ChangePercent.String(),
			quote.TotalVolume,
			bindNullDecimal(quote.TotalTurnover),
			quote.FetchedAt,
		).
		Suffix(`ON CONFLICT (stock_code) DO UPDATE SET
			current_price = EXCLUDED.current_price,
			yesterday_price = EXCLUDED.yesterday_price,
			open_price = EXCLUDED.open_price,
			high_price = EXCLUDED.high_price,
			low_price = EXCLUDED.low_price,
			limit_up_price = EXCLUDED.limit_up_price,
			limit_down_price = EXCLUDED.limit_down_price,
			change_amount = EXCLUDED.change_amount,
			change_percent = EXCLUDED.change_percent,
			total_volume = EXCLUDED.total_volume,
			total_value = EXCLUDED.total_value,
			update_time = EXCLUDED.update_time`).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build snapshot upsert", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to upsert snapshot for %s", quote.Symbol)
	}

	return nil
}

// LatestSnapshot returns the stored price band for symbol, or None when the
// symbol has never been fetched successfully.
func (s *Store) LatestSnapshot(ctx context.Context, symbol string) (optional.Option[types.PriceBandSnapshot], error) {
	query, args, err := s.sq.
		Select(
			"stock_code",
			"CAST(current_price AS VARCHAR)",
			"CAST(yesterday_price AS VARCHAR)",
			"CAST(open_price AS VARCHAR)",
			"CAST(high_price AS VARCHAR)",
			"CAST(low_price AS VARCHAR)",
			"CAST(limit_up_price AS VARCHAR)",
			"CAST(limit_down_price AS VARCHAR)",
			"CAST(change_amount AS VARCHAR)",
			"CAST(change_percent AS VARCHAR)",
			"total_volume",
			"CAST(total_value AS VARCHAR)",
			"update_time",
		).
		From("stock_quotes_snapshot").
		Where(squirrel.Eq{"stock_code": symbol}).
		ToSql()
	if err != nil {
		return optional.None[types.PriceBandSnapshot](), errors.Wrap(errors.ErrCodeQueryFailed, "failed to build snapshot query", err)
	}

	var (
		snapshot types.PriceBandSnapshot

		currentPrice, yesterdayPrice, openPrice, highPrice, lowPrice string
		limitUpPrice, limitDownPrice, changeAmount, changePercent    string
		totalValue                                                   sql.NullString
	)

	err = s.db.QueryRowContext(ctx, query, args...).Scan(
		&snapshot.Symbol,
		&currentPrice, &yesterdayPrice, &openPrice, &highPrice, &lowPrice,
		&limitUpPrice, &limitDownPrice, &changeAmount, &changePercent,
		&snapshot.TotalVolume, &totalValue, &snapshot.UpdateTime,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return optional.None[types.PriceBandSnapshot](), nil
	}

	if err != nil {
		return optional.None[types.PriceBandSnapshot](), errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to query snapshot for %s", symbol)
	}

	fields := []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{currentPrice, &snapshot.CurrentPrice},
		{yesterdayPrice, &snapshot.PreviousClose},
		{openPrice, &snapshot.OpenPrice},
		{highPrice, &snapshot.HighPrice},
		{lowPrice, &snapshot.LowPrice},
		{limitUpPrice, &snapshot.LimitUpPrice},
		{limitDownPrice, &snapshot.LimitDownPrice},
		{changeAmount, &snapshot.ChangeAmount},
		{changePercent, &snapshot.ChangePercent},
	}
	for _, f := range fields {
		value, err := parseStoredDecimal(f.raw)
		if err != nil {
			return optional.None[types.PriceBandSnapshot](), err
		}

		*f.dest = value
	}

	turnover, err := parseStoredNullDecimal(totalValue)
	if err != nil {
		return optional.None[types.PriceBandSnapshot](), err
	}

	snapshot.TotalTurnover = turnover

	return optional.Some(snapshot), nil
}
