// Package admission decides whether an inbound order may enter the system.
// An order passes request validation, reference-data resolution, a price band
// check against the latest stored quote, and lot-size checks before it is
// assigned an identifier and committed to both order representations.
package admission

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rxtech-lab/securities-trading/internal/cache"
	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// DefaultStockCacheTTL bounds how stale cached reference data may get.
const DefaultStockCacheTTL = 5 * time.Minute

// Store is the persistence surface the admission path needs.
type Store interface {
	GetStock(ctx context.Context, symbol string) (optional.Option[types.Stock], error)
	LatestSnapshot(ctx context.Context, symbol string) (optional.Option[types.PriceBandSnapshot], error)
	NextOrderID(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, ledger types.LedgerRecord, projection types.ProjectionRecord) error
	GetOrder(ctx context.Context, orderID int64) (optional.Option[types.ProjectionRecord], error)
	ListOrders(ctx context.Context, userID optional.Option[int64]) ([]types.ProjectionRecord, error)
}

// Service runs the admission pipeline and serves order and reference reads.
type Service struct {
	store  Store
	stocks *cache.Cache[types.Stock]
	logger *logger.Logger
	now    func() time.Time
}

// NewService creates an admission service with its own reference-data cache.
func NewService(store Store, stockTTL time.Duration, logger *logger.Logger) *Service {
	return &Service{
		store:  store,
		stocks: cache.New[types.Stock](stockTTL),
		logger: logger,
		now:    time.Now,
	}
}

// resolveStock returns reference data for symbol, from cache when fresh.
func (s *Service) resolveStock(ctx context.Context, symbol string) (optional.Option[types.Stock], error) {
	if cached := s.stocks.Get(symbol); cached.IsSome() {
		return cached, nil
	}

	stock, err := s.store.GetStock(ctx, symbol)
	if err != nil {
		return optional.None[types.Stock](), err
	}

	if stock.IsSome() {
		s.stocks.Set(symbol, stock.Unwrap())
	}

	return stock, nil
}

// GetStockInfo returns the reference record for symbol, or None when the
// symbol is unknown.
func (s *Service) GetStockInfo(ctx context.Context, symbol string) (optional.Option[types.Stock], error) {
	return s.resolveStock(ctx, symbol)
}

// checkQuantity enforces the stock's own lot granularity. Odd-lot enabled
// stocks accept any positive quantity.
func checkQuantity(stock types.Stock, quantity int) error {
	if quantity <= 0 {
		return errors.New(errors.ErrCodeInvalidQuantity, "quantity must be greater than 0")
	}

	if stock.AllowOddLot {
		return nil
	}

	if stock.LotSize <= 0 || quantity%stock.LotSize != 0 {
		return errors.Newf(errors.ErrCodeInvalidQuantity,
			"quantity must be a multiple of the lot size %d", stock.LotSize)
	}

	return nil
}

// checkPriceBand rejects prices outside the latest stored [limit-down,
// limit-up] band. When no snapshot exists yet the check is skipped: the order
// proceeds rather than being rejected on missing data.
func (s *Service) checkPriceBand(ctx context.Context, symbol string, price decimal.Decimal) error {
	snapshot, err := s.store.LatestSnapshot(ctx, symbol)
	if err != nil {
		return err
	}

	if snapshot.IsNone() {
		s.logger.Debug("no price band on record, skipping band check", zap.String("symbol", symbol))

		return nil
	}

	band := snapshot.Unwrap()
	if !band.Contains(price) {
		return errors.Newf(errors.ErrCodePriceOutOfRange,
			"price %s is outside the allowed band [%s, %s]",
			price, band.LimitDownPrice, band.LimitUpPrice)
	}

	return nil
}

// CreateOrder admits one order. On success both the ledger record and the read
// projection are durably committed and the order is Pending.
func (s *Service) CreateOrder(ctx context.Context, req types.CreateOrderRequest) (types.OrderConfirmation, error) {
	if err := req.Validate(); err != nil {
		return types.OrderConfirmation{}, err
	}

	stock, err := s.resolveStock(ctx, req.Symbol)
	if err != nil {
		return types.OrderConfirmation{}, err
	}

	if stock.IsNone() {
		return types.OrderConfirmation{}, errors.Newf(errors.ErrCodeStockNotFound,
			"stock %s does not exist", req.Symbol)
	}

	if err := checkQuantity(stock.Unwrap(), req.Quantity); err != nil {
		return types.OrderConfirmation{}, err
	}

	if err := s.checkPriceBand(ctx, req.Symbol, req.Price); err != nil {
		return types.OrderConfirmation{}, err
	}

	orderID, err := s.store.NextOrderID(ctx)
	if err != nil {
		return types.OrderConfirmation{}, err
	}

	now := s.now().UTC()
	tradeDate := now.Truncate(24 * time.Hour)

	ledger := types.LedgerRecord{
		OrderID:   orderID,
		UserID:    req.UserID,
		Symbol:    req.Symbol,
		Kind:      req.Kind,
		Side:      req.Side,
		Price:     req.Price,
		Quantity:  req.Quantity,
		Status:    types.OrderStatusPending,
		TradeDate: tradeDate,
		CreatedAt: now,
	}

	projection := types.ProjectionRecord{
		OrderID:        orderID,
		UserID:         req.UserID,
		Symbol:         req.Symbol,
		StockName:      stock.Unwrap().Name,
		StockShortName: stock.Unwrap().ShortName,
		Kind:           req.Kind,
		KindLabel:      req.Kind.Label(),
		Side:           req.Side,
		SideLabel:      req.Side.Label(),
		Price:          req.Price,
		Quantity:       req.Quantity,
		Status:         types.OrderStatusPending,
		StatusLabel:    types.OrderStatusPending.Label(),
		TradeDate:      tradeDate,
		CreatedAt:      now,
	}

	if err := s.store.CreateOrder(ctx, ledger, projection); err != nil {
		return types.OrderConfirmation{}, err
	}

	s.logger.Info("order admitted",
		zap.Int64("order_id", orderID),
		zap.String("symbol", req.Symbol),
		zap.Int("quantity", req.Quantity))

	return types.OrderConfirmation{
		OrderID:     orderID,
		Symbol:      req.Symbol,
		StockName:   stock.Unwrap().Name,
		Kind:        req.Kind,
		KindLabel:   req.Kind.Label(),
		Side:        req.Side,
		SideLabel:   req.Side.Label(),
		Price:       req.Price,
		Quantity:    req.Quantity,
		Status:      types.OrderStatusPending,
		StatusLabel: types.OrderStatusPending.Label(),
		TradeDate:   tradeDate,
		CreatedAt:   now,
	}, nil
}

// GetOrder returns one admitted order from the read projection.
func (s *Service) GetOrder(ctx context.Context, orderID int64) (optional.Option[types.ProjectionRecord], error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListOrders returns admitted orders, newest first, optionally scoped to one
// user.
func (s *Service) ListOrders(ctx context.Context, userID optional.Option[int64]) ([]types.ProjectionRecord, error) {
	return s.store.ListOrders(ctx, userID)
}
