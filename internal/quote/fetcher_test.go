package quote_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/quote"
	"github.com/rxtech-lab/securities-trading/mocks"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

type FetcherTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	source *mocks.MockSource
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(FetcherTestSuite))
}

func (suite *FetcherTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.source = mocks.NewMockSource(suite.ctrl)
}

func (suite *FetcherTestSuite) newFetcher(maxRetries int) *quote.Fetcher {
	return quote.NewFetcher(suite.source, maxRetries, time.Millisecond, logger.NewNopLogger())
}

func dataEnvelope() quote.Envelope {
	return quote.Envelope{
		Status: quote.StatusData,
		Record: quote.RawRecord{
			CurrentPrice:   "600",
			PreviousClose:  "595",
			OpenPrice:      "596",
			HighPrice:      "602",
			LowPrice:       "594",
			LimitUpPrice:   "654.50",
			LimitDownPrice: "535.50",
			TotalVolume:    "25000",
			TotalTurnover:  "-",
		},
	}
}

func (suite *FetcherTestSuite) TestFetchSuccessFirstAttempt() {
	suite.source.EXPECT().
		Fetch(gomock.Any(), "2330").
		Return(dataEnvelope(), nil).
		Times(1)

	result, err := suite.newFetcher(2).Fetch(context.Background(), "2330")
	suite.NoError(err)
	suite.True(result.IsSome())
	suite.Equal("2330", result.Unwrap().Symbol)
}

func (suite *FetcherTestSuite) TestBusyExhaustionMakesExactlyThreeAttempts() {
	// maxRetries=2 means attempts at t=0, +1 unit, +2 units, then Unavailable.
	suite.source.EXPECT().
		Fetch(gomock.Any(), "2330").
		Return(quote.Envelope{Status: quote.StatusBusy}, nil).
		Times(3)

	result, err := suite.newFetcher(2).Fetch(context.Background(), "2330")
	suite.NoError(err)
	suite.True(result.IsNone())
}

func (suite *FetcherTestSuite) TestBusyThenRecovers() {
	gomock.InOrder(
		suite.source.EXPECT().
			Fetch(gomock.Any(), "2330").
			Return(quote.Envelope{Status: quote.StatusBusy}, nil),
		suite.source.EXPECT().
			Fetch(gomock.Any(), "2330").
			Return(dataEnvelope(), nil),
	)

	result, err := suite.newFetcher(2).Fetch(context.Background(), "2330")
	suite.NoError(err)
	suite.True(result.IsSome())
}

func (suite *FetcherTestSuite) TestTransportExhaustionIsAFault() {
	suite.source.EXPECT().
		Fetch(gomock.Any(), "2330").
		Return(quote.Envelope{}, stderrors.New("connection refused")).
		Times(3)

	result, err := suite.newFetcher(2).Fetch(context.Background(), "2330")
	suite.Error(err)
	suite.Equal(errors.ErrCodeUpstreamUnreachable, errors.GetCode(err))
	suite.True(result.IsNone())
}

func (suite *FetcherTestSuite) TestEmptyEnvelopeIsUnavailableWithoutRetry() {
	suite.source.EXPECT().
		Fetch(gomock.Any(), "2330").
		Return(quote.Envelope{Status: quote.StatusEmpty}, nil).
		Times(1)

	result, err := suite.newFetcher(2).Fetch(context.Background(), "2330")
	suite.NoError(err)
	suite.True(result.IsNone())
}

func (suite *FetcherTestSuite) TestCancellationAbortsRetries() {
	ctx, cancel := context.WithCancel(context.Background())

	suite.source.EXPECT().
		Fetch(gomock.Any(), "2330").
		DoAndReturn(func(context.Context, string) (quote.Envelope, error) {
			cancel()

			return quote.Envelope{Status: quote.StatusBusy}, nil
		}).
		Times(1)

	fetcher := quote.NewFetcher(suite.source, 5, time.Minute, logger.NewNopLogger())

	start := time.Now()
	result, err := fetcher.Fetch(ctx, "2330")
	suite.ErrorIs(err, context.Canceled)
	suite.True(result.IsNone())
	// The pending one-minute backoff must not run to completion.
	suite.Less(time.Since(start), 5*time.Second)
}

func (suite *FetcherTestSuite) TestMalformedRecordIsAFault() {
	envelope := dataEnvelope()
	envelope.Record.CurrentPrice = "garbage"

	suite.source.EXPECT().
		Fetch(gomock.Any(), "2330").
		Return(envelope, nil).
		Times(1)

	result, err := suite.newFetcher(2).Fetch(context.Background(), "2330")
	suite.Error(err)
	suite.Equal(errors.ErrCodeUpstreamBadResponse, errors.GetCode(err))
	suite.True(result.IsNone())
}
