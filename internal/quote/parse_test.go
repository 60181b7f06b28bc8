package quote

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

type ParseTestSuite struct {
	suite.Suite
}

func TestParseSuite(t *testing.T) {
	suite.Run(t, new(ParseTestSuite))
}

func (suite *ParseTestSuite) TestParsePriceSentinels() {
	for _, raw := range []string{"", "-", " ", " - "} {
		value, err := parsePrice(raw)
		suite.NoError(err, "raw=%q", raw)
		suite.True(value.IsZero(), "raw=%q", raw)
	}
}

func (suite *ParseTestSuite) TestParsePriceValue() {
	value, err := parsePrice("654.50")
	suite.NoError(err)
	suite.True(value.Equal(decimal.RequireFromString("654.50")))
}

func (suite *ParseTestSuite) TestParsePriceMalformed() {
	_, err := parsePrice("abc")
	suite.Error(err)
	suite.Equal(errors.ErrCodeUpstreamBadResponse, errors.GetCode(err))
}

func (suite *ParseTestSuite) TestParseVolumeSentinels() {
	for _, raw := range []string{"", "-"} {
		value, err := parseVolume(raw)
		suite.NoError(err)
		suite.Equal(int64(0), value)
	}
}

func (suite *ParseTestSuite) TestParseTurnoverSentinelIsAbsent() {
	for _, raw := range []string{"", "-"} {
		value, err := parseTurnover(raw)
		suite.NoError(err)
		suite.True(value.IsNone())
	}
}

func (suite *ParseTestSuite) TestParseTurnoverValue() {
	value, err := parseTurnover("123456789.5")
	suite.NoError(err)
	suite.True(value.IsSome())
	suite.True(value.Unwrap().Equal(decimal.RequireFromString("123456789.5")))
}

func (suite *ParseTestSuite) TestNormalizeQuoteComputesChangeLocally() {
	fetchedAt := time.Date(2024, 3, 1, 5, 30, 0, 0, time.UTC)

	quote, err := normalizeQuote("2330", RawRecord{
		CurrentPrice:   "600",
		PreviousClose:  "595",
		OpenPrice:      "596",
		HighPrice:      "602",
		LowPrice:       "594",
		LimitUpPrice:   "654.50",
		LimitDownPrice: "535.50",
		TotalVolume:    "25000",
		TotalTurnover:  "15000000000",
	}, fetchedAt)

	suite.NoError(err)
	suite.Equal("2330", quote.Symbol)
	suite.True(quote.ChangeAmount.Equal(decimal.NewFromInt(5)))

	expectedPercent := decimal.NewFromInt(5).
		Div(decimal.NewFromInt(595)).
		Mul(decimal.NewFromInt(100))
	suite.True(quote.ChangePercent.Equal(expectedPercent))
	suite.Equal(int64(25000), quote.TotalVolume)
	suite.True(quote.TotalTurnover.IsSome())
	suite.Equal(fetchedAt, quote.FetchedAt)
}

func (suite *ParseTestSuite) TestNormalizeQuoteHaltedInstrument() {
	// A halted instrument reports sentinel prices; required numerics collapse
	// to zero and change percent stays zero because previous close is zero.
	quote, err := normalizeQuote("9999", RawRecord{
		CurrentPrice:   "-",
		PreviousClose:  "-",
		OpenPrice:      "",
		HighPrice:      "-",
		LowPrice:       "-",
		LimitUpPrice:   "-",
		LimitDownPrice: "-",
		TotalVolume:    "-",
		TotalTurnover:  "-",
	}, time.Now().UTC())

	suite.NoError(err)
	suite.True(quote.CurrentPrice.IsZero())
	suite.True(quote.ChangeAmount.IsZero())
	suite.True(quote.ChangePercent.IsZero())
	suite.Equal(int64(0), quote.TotalVolume)
	suite.True(quote.TotalTurnover.IsNone())
}

func (suite *ParseTestSuite) TestNormalizeQuoteMalformedField() {
	_, err := normalizeQuote("2330", RawRecord{
		CurrentPrice:  "not-a-number",
		PreviousClose: "595",
	}, time.Now().UTC())

	suite.Error(err)
	suite.Equal(errors.ErrCodeUpstreamBadResponse, errors.GetCode(err))
}
