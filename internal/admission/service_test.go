package admission_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/securities-trading/internal/admission"
	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/store"
	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

type AdmissionTestSuite struct {
	suite.Suite
	db      *sql.DB
	store   *store.Store
	service *admission.Service
}

func TestAdmissionSuite(t *testing.T) {
	suite.Run(t, new(AdmissionTestSuite))
}

func (suite *AdmissionTestSuite) SetupTest() {
	db, err := sql.Open("duckdb", ":memory:")
	suite.Require().NoError(err)

	suite.db = db
	suite.store = store.New(db, logger.NewNopLogger())
	suite.Require().NoError(suite.store.Migrate(context.Background()))

	suite.service = admission.NewService(suite.store, admission.DefaultStockCacheTTL, logger.NewNopLogger())

	suite.Require().NoError(suite.store.UpsertStock(context.Background(), types.Stock{
		Symbol:    "2330",
		Name:      "Taiwan Semiconductor Manufacturing",
		ShortName: "TSMC",
		Exchange:  "TWSE",
		LotSize:   1000,
		IsActive:  true,
	}))
}

func (suite *AdmissionTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *AdmissionTestSuite) seedBand(symbol, limitDown, limitUp string) {
	suite.Require().NoError(suite.store.UpsertSnapshot(context.Background(), types.Quote{
		Symbol:         symbol,
		CurrentPrice:   decimal.RequireFromString("600"),
		PreviousClose:  decimal.RequireFromString("595"),
		OpenPrice:      decimal.RequireFromString("596"),
		HighPrice:      decimal.RequireFromString("602"),
		LowPrice:       decimal.RequireFromString("594"),
		LimitUpPrice:   decimal.RequireFromString(limitUp),
		LimitDownPrice: decimal.RequireFromString(limitDown),
		ChangeAmount:   decimal.RequireFromString("5"),
		ChangePercent:  decimal.RequireFromString("0.84"),
		TotalVolume:    25000,
		FetchedAt:      time.Now().UTC(),
	}))
}

func validRequest() types.CreateOrderRequest {
	return types.CreateOrderRequest{
		UserID:   7,
		Symbol:   "2330",
		Kind:     types.OrderKindLimit,
		Side:     types.OrderSideBuy,
		Price:    decimal.RequireFromString("600"),
		Quantity: 1000,
	}
}

func (suite *AdmissionTestSuite) TestCreateOrderAdmitted() {
	suite.seedBand("2330", "535.50", "654.50")

	confirmation, err := suite.service.CreateOrder(context.Background(), validRequest())
	suite.Require().NoError(err)

	suite.Greater(confirmation.OrderID, int64(0))
	suite.Equal(types.OrderStatusPending, confirmation.Status)
	suite.Equal("Pending", confirmation.StatusLabel)
	suite.Equal("Taiwan Semiconductor Manufacturing", confirmation.StockName)
	suite.Equal("Limit", confirmation.KindLabel)
	suite.Equal("Buy", confirmation.SideLabel)
	suite.Equal(confirmation.CreatedAt.Truncate(24*time.Hour), confirmation.TradeDate)

	// Both persisted representations carry the admitted values.
	got, err := suite.service.GetOrder(context.Background(), confirmation.OrderID)
	suite.Require().NoError(err)
	suite.Require().True(got.IsSome())
	suite.True(got.Unwrap().Price.Equal(decimal.RequireFromString("600")))
	suite.Equal(0, got.Unwrap().FilledQuantity)

	var ledgerPrice string
	suite.Require().NoError(suite.db.QueryRow(
		`SELECT CAST(price AS VARCHAR) FROM orders_write WHERE order_id = $1`, confirmation.OrderID,
	).Scan(&ledgerPrice))
	suite.True(decimal.RequireFromString(ledgerPrice).Equal(confirmation.Price))
}

func (suite *AdmissionTestSuite) TestCreateOrderUnknownStock() {
	req := validRequest()
	req.Symbol = "0000"

	_, err := suite.service.CreateOrder(context.Background(), req)
	suite.Error(err)
	suite.Equal(errors.ErrCodeStockNotFound, errors.GetCode(err))
}

func (suite *AdmissionTestSuite) TestCreateOrderPriceAboveBand() {
	suite.seedBand("2330", "535.50", "654.50")

	req := validRequest()
	req.Price = decimal.RequireFromString("700")

	_, err := suite.service.CreateOrder(context.Background(), req)
	suite.Error(err)
	suite.Equal(errors.ErrCodePriceOutOfRange, errors.GetCode(err))
}

func (suite *AdmissionTestSuite) TestCreateOrderPriceBelowBand() {
	suite.seedBand("2330", "535.50", "654.50")

	req := validRequest()
	req.Price = decimal.RequireFromString("535.49")

	_, err := suite.service.CreateOrder(context.Background(), req)
	suite.Error(err)
	suite.Equal(errors.ErrCodePriceOutOfRange, errors.GetCode(err))
}

func (suite *AdmissionTestSuite) TestCreateOrderBandEdgesAdmitted() {
	suite.seedBand("2330", "535.50", "654.50")

	for _, price := range []string{"654.50", "535.50"} {
		req := validRequest()
		req.Price = decimal.RequireFromString(price)

		_, err := suite.service.CreateOrder(context.Background(), req)
		suite.NoError(err, price)
	}
}

func (suite *AdmissionTestSuite) TestCreateOrderWithoutBandProceeds() {
	confirmation, err := suite.service.CreateOrder(context.Background(), validRequest())
	suite.NoError(err)
	suite.Greater(confirmation.OrderID, int64(0))
}

func (suite *AdmissionTestSuite) TestCreateOrderLotSizeViolation() {
	req := validRequest()
	req.Quantity = 1500

	_, err := suite.service.CreateOrder(context.Background(), req)
	suite.Error(err)
	suite.Equal(errors.ErrCodeInvalidQuantity, errors.GetCode(err))
}

func (suite *AdmissionTestSuite) TestCreateOrderOddLotAllowed() {
	suite.Require().NoError(suite.store.UpsertStock(context.Background(), types.Stock{
		Symbol:      "0050",
		Name:        "Yuanta Taiwan 50 ETF",
		ShortName:   "Yuanta 50",
		Exchange:    "TWSE",
		LotSize:     1000,
		AllowOddLot: true,
		IsActive:    true,
	}))

	req := validRequest()
	req.Symbol = "0050"
	req.Quantity = 37

	_, err := suite.service.CreateOrder(context.Background(), req)
	suite.NoError(err)
}

func (suite *AdmissionTestSuite) TestCreateOrderValidationFailures() {
	tests := []struct {
		name    string
		mutate  func(*types.CreateOrderRequest)
		wantErr errors.ErrorCode
	}{
		{"zero user", func(r *types.CreateOrderRequest) { r.UserID = 0 }, errors.ErrCodeInvalidOrderRequest},
		{"empty symbol", func(r *types.CreateOrderRequest) { r.Symbol = "" }, errors.ErrCodeInvalidOrderRequest},
		{"unknown kind", func(r *types.CreateOrderRequest) { r.Kind = 9 }, errors.ErrCodeInvalidOrderRequest},
		{"unknown side", func(r *types.CreateOrderRequest) { r.Side = 0 }, errors.ErrCodeInvalidOrderRequest},
		{"zero price", func(r *types.CreateOrderRequest) { r.Price = decimal.Zero }, errors.ErrCodeInvalidPrice},
		{"negative price", func(r *types.CreateOrderRequest) { r.Price = decimal.RequireFromString("-1") }, errors.ErrCodeInvalidPrice},
		{"excessive price", func(r *types.CreateOrderRequest) { r.Price = decimal.RequireFromString("10000000") }, errors.ErrCodeInvalidPrice},
		{"zero quantity", func(r *types.CreateOrderRequest) { r.Quantity = 0 }, errors.ErrCodeInvalidOrderRequest},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			req := validRequest()
			tc.mutate(&req)

			_, err := suite.service.CreateOrder(context.Background(), req)
			suite.Error(err)
			suite.Equal(tc.wantErr, errors.GetCode(err))
		})
	}
}

func (suite *AdmissionTestSuite) TestConcurrentAdmissionsGetDistinctIdentifiers() {
	suite.seedBand("2330", "535.50", "654.50")

	const orders = 1000

	var (
		mu  sync.Mutex
		ids = make(map[int64]struct{}, orders)
		wg  sync.WaitGroup
	)

	for i := 0; i < orders; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			confirmation, err := suite.service.CreateOrder(context.Background(), validRequest())
			suite.NoError(err)

			mu.Lock()
			ids[confirmation.OrderID] = struct{}{}
			mu.Unlock()
		}()
	}

	wg.Wait()
	suite.Len(ids, orders)
}

func (suite *AdmissionTestSuite) TestListOrdersScopedToUser() {
	ctx := context.Background()

	for _, userID := range []int64{7, 8, 7} {
		req := validRequest()
		req.UserID = userID

		_, err := suite.service.CreateOrder(ctx, req)
		suite.Require().NoError(err)
	}

	all, err := suite.service.ListOrders(ctx, optional.None[int64]())
	suite.NoError(err)
	suite.Len(all, 3)

	mine, err := suite.service.ListOrders(ctx, optional.Some[int64](8))
	suite.NoError(err)
	suite.Require().Len(mine, 1)
	suite.Equal(int64(8), mine[0].UserID)
}

func (suite *AdmissionTestSuite) TestGetStockInfoCached() {
	ctx := context.Background()

	first, err := suite.service.GetStockInfo(ctx, "2330")
	suite.NoError(err)
	suite.Require().True(first.IsSome())

	// A direct database change is invisible while the cached entry is fresh.
	_, err = suite.db.Exec(`UPDATE stock_master SET stock_name = 'renamed' WHERE stock_code = '2330'`)
	suite.Require().NoError(err)

	second, err := suite.service.GetStockInfo(ctx, "2330")
	suite.NoError(err)
	suite.Require().True(second.IsSome())
	suite.Equal(first.Unwrap().Name, second.Unwrap().Name)
}

func (suite *AdmissionTestSuite) TestGetStockInfoUnknown() {
	got, err := suite.service.GetStockInfo(context.Background(), "9999")
	suite.NoError(err)
	suite.True(got.IsNone())
}
