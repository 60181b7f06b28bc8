package store

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"

	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// CreateOrder persists the ledger record and the read projection in a single
// transaction: either both rows become visible or neither does.
func (s *Store) CreateOrder(ctx context.Context, ledger types.LedgerRecord, projection types.ProjectionRecord) error {
	if ledger.OrderID != projection.OrderID {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"ledger and projection identifiers differ: %d vs %d", ledger.OrderID, projection.OrderID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransactionFailed, "failed to begin order transaction", err)
	}

	ledgerQuery, ledgerArgs, err := s.sq.
		Insert("orders_write").
		Columns(
			"order_id", "user_id", "stock_code", "order_type", "buy_sell",
			"price", "quantity", "order_status", "trade_date", "created_at",
		).
		Values(
			ledger.OrderID, ledger.UserID, ledger.Symbol, ledger.Kind, ledger.Side,
			ledger.Price.String(), ledger.Quantity, ledger.Status, ledger.TradeDate, ledger.CreatedAt,
		).
		ToSql()
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build ledger insert", err)
	}

	if _, err := tx.ExecContext(ctx, ledgerQuery, ledgerArgs...); err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeTransactionFailed, err,
			"failed to insert ledger record %d", ledger.OrderID)
	}

	projectionQuery, projectionArgs, err := s.sq.
		Insert("orders_read").
		Columns(
			"order_id", "user_id", "stock_code", "stock_name", "stock_name_short",
			"order_type", "order_type_name", "buy_sell", "buy_sell_name",
			"price", "quantity", "filled_quantity", "order_status", "order_status_name",
			"trade_date", "created_at",
		).
		Values(
			projection.OrderID, projection.UserID, projection.Symbol,
			projection.StockName, projection.StockShortName,
			projection.Kind, projection.KindLabel, projection.Side, projection.SideLabel,
			projection.Price.String(), projection.Quantity, projection.FilledQuantity,
			projection.Status, projection.StatusLabel,
			projection.TradeDate, projection.CreatedAt,
		).
		ToSql()
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build projection insert", err)
	}

	if _, err := tx.ExecContext(ctx, projectionQuery, projectionArgs...); err != nil {
		tx.Rollback()

		return errors.Wrapf(errors.ErrCodeTransactionFailed, err,
			"failed to insert projection record %d", projection.OrderID)
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrapf(errors.ErrCodeTransactionFailed, err,
			"failed to commit order %d", ledger.OrderID)
	}

	return nil
}

// projectionColumns is the select list for orders_read, with decimals cast to
// text.
var projectionColumns = []string{
	"order_id", "user_id", "stock_code", "stock_name", "stock_name_short",
	"order_type", "order_type_name", "buy_sell", "buy_sell_name",
	"CAST(price AS VARCHAR)", "quantity", "filled_quantity",
	"order_status", "order_status_name", "trade_date", "created_at",
}

func scanProjection(row squirrel.RowScanner) (types.ProjectionRecord, error) {
	var (
		record types.ProjectionRecord
		price  string
	)

	err := row.Scan(
		&record.OrderID, &record.UserID, &record.Symbol,
		&record.StockName, &record.StockShortName,
		&record.Kind, &record.KindLabel, &record.Side, &record.SideLabel,
		&price, &record.Quantity, &record.FilledQuantity,
		&record.Status, &record.StatusLabel, &record.TradeDate, &record.CreatedAt,
	)
	if err != nil {
		return types.ProjectionRecord{}, err
	}

	value, err := parseStoredDecimal(price)
	if err != nil {
		return types.ProjectionRecord{}, err
	}

	record.Price = value

	return record, nil
}

// GetOrder reads one order from the projection table. The ledger is never
// consulted on the read path.
func (s *Store) GetOrder(ctx context.Context, orderID int64) (optional.Option[types.ProjectionRecord], error) {
	query, args, err := s.sq.
		Select(projectionColumns...).
		From("orders_read").
		Where(squirrel.Eq{"order_id": orderID}).
		ToSql()
	if err != nil {
		return optional.None[types.ProjectionRecord](), errors.Wrap(errors.ErrCodeQueryFailed, "failed to build order query", err)
	}

	record, err := scanProjection(s.db.QueryRowContext(ctx, query, args...))
	if stderrors.Is(err, sql.ErrNoRows) {
		return optional.None[types.ProjectionRecord](), nil
	}

	if err != nil {
		return optional.None[types.ProjectionRecord](), errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"failed to query order %d", orderID)
	}

	return optional.Some(record), nil
}

// ListOrders reads orders from the projection table, newest first, optionally
// filtered by owning user.
func (s *Store) ListOrders(ctx context.Context, userID optional.Option[int64]) ([]types.ProjectionRecord, error) {
	builder := s.sq.
		Select(projectionColumns...).
		From("orders_read").
		OrderBy("created_at DESC")

	if userID.IsSome() {
		builder = builder.Where(squirrel.Eq{"user_id": userID.Unwrap()})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build orders query", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to list orders", err)
	}
	defer rows.Close()

	records := []types.ProjectionRecord{}

	for rows.Next() {
		record, err := scanProjection(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan order row", err)
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to iterate order rows", err)
	}

	return records, nil
}
