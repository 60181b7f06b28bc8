package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
)

// Quote is a normalized snapshot of the upstream feed for one symbol.
// All monetary fields are exact decimals; the feed's sentinel placeholders
// have already been collapsed to zero (or None for TotalTurnover).
type Quote struct {
	Symbol         string          `json:"symbol"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
	PreviousClose  decimal.Decimal `json:"previous_close"`
	OpenPrice      decimal.Decimal `json:"open_price"`
	HighPrice      decimal.Decimal `json:"high_price"`
	LowPrice       decimal.Decimal `json:"low_price"`
	LimitUpPrice   decimal.Decimal `json:"limit_up_price"`
	LimitDownPrice decimal.Decimal `json:"limit_down_price"`
	// ChangeAmount and ChangePercent are derived locally from CurrentPrice and
	// PreviousClose, never trusted from upstream.
	ChangeAmount  decimal.Decimal                  `json:"change_amount"`
	ChangePercent decimal.Decimal                  `json:"change_percent"`
	TotalVolume   int64                            `json:"total_volume"`
	TotalTurnover optional.Option[decimal.Decimal] `json:"total_turnover"`
	FetchedAt     time.Time                        `json:"fetched_at"`
}

// PriceBandSnapshot is the durable latest-quote-per-symbol row used by order
// admission. At most one row exists per symbol; it is overwritten in place by
// every successful fetch and survives process restarts.
type PriceBandSnapshot struct {
	Symbol         string                           `json:"symbol"`
	CurrentPrice   decimal.Decimal                  `json:"current_price"`
	PreviousClose  decimal.Decimal                  `json:"previous_close"`
	OpenPrice      decimal.Decimal                  `json:"open_price"`
	HighPrice      decimal.Decimal                  `json:"high_price"`
	LowPrice       decimal.Decimal                  `json:"low_price"`
	LimitUpPrice   decimal.Decimal                  `json:"limit_up_price"`
	LimitDownPrice decimal.Decimal                  `json:"limit_down_price"`
	ChangeAmount   decimal.Decimal                  `json:"change_amount"`
	ChangePercent  decimal.Decimal                  `json:"change_percent"`
	TotalVolume    int64                            `json:"total_volume"`
	TotalTurnover  optional.Option[decimal.Decimal] `json:"total_turnover"`
	UpdateTime     time.Time                        `json:"update_time"`
}

// Contains reports whether price falls inside the [limit-down, limit-up] band,
// boundaries included.
func (s PriceBandSnapshot) Contains(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(s.LimitDownPrice) && price.LessThanOrEqual(s.LimitUpPrice)
}
