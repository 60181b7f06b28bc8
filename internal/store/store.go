// Package store is the durable persistence layer: reference data, price band
// snapshots, the order ledger and read projection, and the order-id sequence.
// All SQL goes through database/sql so the same store runs against PostgreSQL
// in production and DuckDB in tests.
package store

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// Store wraps the SQL database with typed accessors.
type Store struct {
	db     *sql.DB
	sq     squirrel.StatementBuilderType
	logger *logger.Logger
}

// New creates a Store on top of an opened database handle.
func New(db *sql.DB, logger *logger.Logger) *Store {
	return &Store{
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger: logger,
	}
}

// DB exposes the underlying handle for lifecycle management.
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrations are idempotent and shared between PostgreSQL and DuckDB.
// Monetary columns are DECIMAL; values travel as text between Go and the
// database so both drivers handle them without loss.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS stock_master (
		stock_code VARCHAR(10) PRIMARY KEY,
		stock_name VARCHAR(100) NOT NULL,
		stock_name_short VARCHAR(50) NOT NULL,
		stock_name_en VARCHAR(100) NOT NULL DEFAULT '',
		exchange VARCHAR(10) NOT NULL,
		industry VARCHAR(50) NOT NULL DEFAULT '',
		lot_size INTEGER NOT NULL DEFAULT 1000,
		allow_odd_lot BOOLEAN NOT NULL DEFAULT FALSE,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		listed_date DATE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS stock_quotes_snapshot (
		stock_code VARCHAR(10) PRIMARY KEY,
		current_price DECIMAL(18,4) NOT NULL,
		yesterday_price DECIMAL(18,4) NOT NULL,
		open_price DECIMAL(18,4) NOT NULL,
		high_price DECIMAL(18,4) NOT NULL,
		low_price DECIMAL(18,4) NOT NULL,
		limit_up_price DECIMAL(18,4) NOT NULL,
		limit_down_price DECIMAL(18,4) NOT NULL,
		change_amount DECIMAL(18,4) NOT NULL,
		change_percent DECIMAL(18,4) NOT NULL,
		total_volume BIGINT NOT NULL,
		total_value DECIMAL(18,4),
		update_time TIMESTAMP NOT NULL
	)`,
	`CREATE SEQUENCE IF NOT EXISTS order_id_seq`,
	`CREATE TABLE IF NOT EXISTS orders_write (
		order_id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		stock_code VARCHAR(10) NOT NULL,
		order_type SMALLINT NOT NULL,
		buy_sell SMALLINT NOT NULL,
		price DECIMAL(18,4) NOT NULL,
		quantity INTEGER NOT NULL,
		order_status SMALLINT NOT NULL,
		trade_date DATE NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders_read (
		order_id BIGINT PRIMARY KEY,
		user_id BIGINT NOT NULL,
		stock_code VARCHAR(10) NOT NULL,
		stock_name VARCHAR(100) NOT NULL,
		stock_name_short VARCHAR(50) NOT NULL,
		order_type SMALLINT NOT NULL,
		order_type_name VARCHAR(20) NOT NULL,
		buy_sell SMALLINT NOT NULL,
		buy_sell_name VARCHAR(20) NOT NULL,
		price DECIMAL(18,4) NOT NULL,
		quantity INTEGER NOT NULL,
		filled_quantity INTEGER NOT NULL DEFAULT 0,
		order_status SMALLINT NOT NULL,
		order_status_name VARCHAR(20) NOT NULL,
		trade_date DATE NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the schema. Safe to run on every startup.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(errors.ErrCodeMigrationFailed, "failed to apply migration", err)
		}
	}

	s.logger.Info("schema migrated")

	return nil
}
