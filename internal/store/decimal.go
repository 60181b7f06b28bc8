package store

import (
	"database/sql"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// Decimal columns are selected as text (CAST ... AS VARCHAR) and bound as text
// on writes, so PostgreSQL and DuckDB behave identically and no precision is
// lost in a float round-trip.

func parseStoredDecimal(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrCodeQueryFailed, err,
			"malformed decimal column value %q", raw)
	}

	return value, nil
}

func parseStoredNullDecimal(raw sql.NullString) (optional.Option[decimal.Decimal], error) {
	if !raw.Valid {
		return optional.None[decimal.Decimal](), nil
	}

	value, err := parseStoredDecimal(raw.String)
	if err != nil {
		return optional.None[decimal.Decimal](), err
	}

	return optional.Some(value), nil
}

func bindNullDecimal(value optional.Option[decimal.Decimal]) any {
	if value.IsNone() {
		return nil
	}

	return value.Unwrap().String()
}
