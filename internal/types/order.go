package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// OrderKind is the wire code for an order's execution type.
type OrderKind uint8

const (
	OrderKindLimit  OrderKind = 1
	OrderKindMarket OrderKind = 2
)

// Label returns the human-readable name persisted in the read projection.
func (k OrderKind) Label() string {
	if k == OrderKindLimit {
		return "Limit"
	}

	return "Market"
}

// Valid reports whether the code is a known order kind.
func (k OrderKind) Valid() bool {
	return k == OrderKindLimit || k == OrderKindMarket
}

// OrderSide is the wire code for buy/sell.
type OrderSide uint8

const (
	OrderSideBuy  OrderSide = 1
	OrderSideSell OrderSide = 2
)

// Label returns the human-readable name persisted in the read projection.
func (s OrderSide) Label() string {
	if s == OrderSideBuy {
		return "Buy"
	}

	return "Sell"
}

// Valid reports whether the code is a known order side.
func (s OrderSide) Valid() bool {
	return s == OrderSideBuy || s == OrderSideSell
}

// OrderStatus is the wire code for an order's lifecycle state. Admission leaves
// every order at OrderStatusPending; downstream settlement is external.
type OrderStatus uint8

const (
	OrderStatusPending OrderStatus = 1
)

// Label returns the human-readable name persisted in the read projection.
func (s OrderStatus) Label() string {
	return "Pending"
}

// maxOrderPrice caps admitted prices at the persisted DECIMAL(18,4) range used
// by the original schema.
var maxOrderPrice = decimal.RequireFromString("9999999.99")

// CreateOrderRequest is the inbound admission request.
type CreateOrderRequest struct {
	UserID   int64           `yaml:"user_id" json:"user_id" validate:"required,gt=0"`
	Symbol   string          `yaml:"symbol" json:"symbol" validate:"required,max=10"`
	Kind     OrderKind       `yaml:"order_type" json:"order_type" validate:"required,oneof=1 2"`
	Side     OrderSide       `yaml:"buy_sell" json:"buy_sell" validate:"required,oneof=1 2"`
	Price    decimal.Decimal `yaml:"price" json:"price"`
	Quantity int             `yaml:"quantity" json:"quantity" validate:"required,gt=0"`
}

// Validate validates the CreateOrderRequest struct.
// Decimal bounds are checked by hand; validator tags cannot compare decimals.
func (r *CreateOrderRequest) Validate() error {
	validate := validator.New()

	if err := validate.Struct(r); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOrderRequest, "invalid order request", err)
	}

	if !r.Price.IsPositive() {
		return errors.New(errors.ErrCodeInvalidPrice, "price must be greater than 0")
	}

	if r.Price.GreaterThan(maxOrderPrice) {
		return errors.Newf(errors.ErrCodeInvalidPrice, "price cannot exceed %s", maxOrderPrice)
	}

	return nil
}

// LedgerRecord is the authoritative minimal representation of an admitted
// order. It is append-only: this system never mutates it after admission.
type LedgerRecord struct {
	OrderID   int64           `json:"order_id"`
	UserID    int64           `json:"user_id"`
	Symbol    string          `json:"symbol"`
	Kind      OrderKind       `json:"order_type"`
	Side      OrderSide       `json:"buy_sell"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Status    OrderStatus     `json:"order_status"`
	TradeDate time.Time       `json:"trade_date"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProjectionRecord is the denormalized read view of an admitted order. It
// shares the identifier and core fields with the ledger record and adds
// display labels resolved at admission time.
type ProjectionRecord struct {
	OrderID        int64           `json:"order_id"`
	UserID         int64           `json:"user_id"`
	Symbol         string          `json:"symbol"`
	StockName      string          `json:"stock_name"`
	StockShortName string          `json:"stock_name_short"`
	Kind           OrderKind       `json:"order_type"`
	KindLabel      string          `json:"order_type_name"`
	Side           OrderSide       `json:"buy_sell"`
	SideLabel      string          `json:"buy_sell_name"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	FilledQuantity int             `json:"filled_quantity"`
	Status         OrderStatus     `json:"order_status"`
	StatusLabel    string          `json:"order_status_name"`
	TradeDate      time.Time       `json:"trade_date"`
	CreatedAt      time.Time       `json:"created_at"`
}

// OrderConfirmation is returned to the caller once an order is committed.
type OrderConfirmation struct {
	OrderID     int64           `json:"order_id"`
	Symbol      string          `json:"symbol"`
	StockName   string          `json:"stock_name"`
	Kind        OrderKind       `json:"order_type"`
	KindLabel   string          `json:"order_type_name"`
	Side        OrderSide       `json:"buy_sell"`
	SideLabel   string          `json:"buy_sell_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Status      OrderStatus     `json:"order_status"`
	StatusLabel string          `json:"order_status_name"`
	TradeDate   time.Time       `json:"trade_date"`
	CreatedAt   time.Time       `json:"created_at"`
}
