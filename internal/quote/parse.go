package quote

import (
	"strconv"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// isSentinel reports whether the feed encoded "no data" for this field, e.g.
// for a halted instrument.
func isSentinel(raw string) bool {
	trimmed := strings.TrimSpace(raw)

	return trimmed == "" || trimmed == "-"
}

// parsePrice parses a required monetary field. Sentinel values collapse to
// zero; anything else must be a valid decimal.
func parsePrice(raw string) (decimal.Decimal, error) {
	if isSentinel(raw) {
		return decimal.Zero, nil
	}

	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrCodeUpstreamBadResponse, err,
			"malformed price field %q", raw)
	}

	return value, nil
}

// parseVolume parses the cumulative volume field. Sentinel values collapse to
// zero.
func parseVolume(raw string) (int64, error) {
	if isSentinel(raw) {
		return 0, nil
	}

	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrCodeUpstreamBadResponse, err,
			"malformed volume field %q", raw)
	}

	return value, nil
}

// parseTurnover parses the optional cumulative turnover field. Sentinel values
// are absent, not zero.
func parseTurnover(raw string) (optional.Option[decimal.Decimal], error) {
	if isSentinel(raw) {
		return optional.None[decimal.Decimal](), nil
	}

	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return optional.None[decimal.Decimal](), errors.Wrapf(errors.ErrCodeUpstreamBadResponse, err,
			"malformed turnover field %q", raw)
	}

	return optional.Some(value), nil
}

const changePercentScale = 100

// normalizeQuote converts a raw upstream record into a Quote. Change amount
// and percent are always computed from current vs previous close; the upstream
// values for them are never trusted. Percent is zero when previous close is
// zero or absent.
func normalizeQuote(symbol string, record RawRecord, fetchedAt time.Time) (types.Quote, error) {
	current, err := parsePrice(record.CurrentPrice)
	if err != nil {
		return types.Quote{}, err
	}

	previousClose, err := parsePrice(record.PreviousClose)
	if err != nil {
		return types.Quote{}, err
	}

	open, err := parsePrice(record.OpenPrice)
	if err != nil {
		return types.Quote{}, err
	}

	high, err := parsePrice(record.HighPrice)
	if err != nil {
		return types.Quote{}, err
	}

	low, err := parsePrice(record.LowPrice)
	if err != nil {
		return types.Quote{}, err
	}

	limitUp, err := parsePrice(record.LimitUpPrice)
	if err != nil {
		return types.Quote{}, err
	}

	limitDown, err := parsePrice(record.LimitDownPrice)
	if err != nil {
		return types.Quote{}, err
	}

	volume, err := parseVolume(record.TotalVolume)
	if err != nil {
		return types.Quote{}, err
	}

	turnover, err := parseTurnover(record.TotalTurnover)
	if err != nil {
		return types.Quote{}, err
	}

	changeAmount := current.Sub(previousClose)

	changePercent := decimal.Zero
	if previousClose.IsPositive() {
		changePercent = changeAmount.
			Div(previousClose).
			Mul(decimal.NewFromInt(changePercentScale))
	}

	return types.Quote{
		Symbol:         symbol,
		CurrentPrice:   current,
		PreviousClose:  previousClose,
		OpenPrice:      open,
		HighPrice:      high,
		LowPrice:       low,
		LimitUpPrice:   limitUp,
		LimitDownPrice: limitDown,
		ChangeAmount:   changeAmount,
		ChangePercent:  changePercent,
		TotalVolume:    volume,
		TotalTurnover:  turnover,
		FetchedAt:      fetchedAt,
	}, nil
}
