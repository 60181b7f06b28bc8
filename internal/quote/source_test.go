package quote_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/quote"
	"github.com/rxtech-lab/securities-trading/internal/quote/feedtest"
)

type TwseSourceTestSuite struct {
	suite.Suite
	feed   *feedtest.Server
	source *quote.TwseSource
}

func TestTwseSourceSuite(t *testing.T) {
	suite.Run(t, new(TwseSourceTestSuite))
}

func (suite *TwseSourceTestSuite) SetupTest() {
	suite.feed = feedtest.NewServer()
	suite.source = quote.NewTwseSource(suite.feed.URL(), "tse", logger.NewNopLogger())
}

func (suite *TwseSourceTestSuite) TearDownTest() {
	suite.feed.Close()
}

func (suite *TwseSourceTestSuite) TestFetchData() {
	suite.feed.SetRecord("2330", feedtest.Record{
		"z":  "600",
		"y":  "595",
		"o":  "596",
		"h":  "602",
		"l":  "594",
		"u":  "654.50",
		"w":  "535.50",
		"v":  "25000",
		"tv": "-",
	})

	envelope, err := suite.source.Fetch(context.Background(), "2330")
	suite.NoError(err)
	suite.Equal(quote.StatusData, envelope.Status)
	suite.Equal("600", envelope.Record.CurrentPrice)
	suite.Equal("595", envelope.Record.PreviousClose)
	suite.Equal("654.50", envelope.Record.LimitUpPrice)
	suite.Equal("535.50", envelope.Record.LimitDownPrice)
	suite.Equal("-", envelope.Record.TotalTurnover)
}

func (suite *TwseSourceTestSuite) TestFetchBusy() {
	suite.feed.SetBusy(1)

	envelope, err := suite.source.Fetch(context.Background(), "2330")
	suite.NoError(err)
	suite.Equal(quote.StatusBusy, envelope.Status)
}

func (suite *TwseSourceTestSuite) TestFetchEmptyEnvelope() {
	envelope, err := suite.source.Fetch(context.Background(), "0000")
	suite.NoError(err)
	suite.Equal(quote.StatusEmpty, envelope.Status)
}

func (suite *TwseSourceTestSuite) TestFetchTransportFailure() {
	suite.feed.Close()

	_, err := suite.source.Fetch(context.Background(), "2330")
	suite.Error(err)
}
