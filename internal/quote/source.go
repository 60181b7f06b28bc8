package quote

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// FetchStatus classifies a single upstream response.
type FetchStatus string

const (
	// StatusData means the envelope carries one raw record.
	StatusData FetchStatus = "DATA"
	// StatusBusy is the feed's explicit transient-unavailable signal. The
	// fetcher retries it on its fixed schedule.
	StatusBusy FetchStatus = "BUSY"
	// StatusEmpty means the feed answered but has no record for the symbol.
	StatusEmpty FetchStatus = "EMPTY"
)

// RawRecord holds the string-typed fields of one upstream data record. A
// missing or halted value arrives as an empty string or the "-" placeholder,
// never as an absent field.
type RawRecord struct {
	CurrentPrice   string
	PreviousClose  string
	OpenPrice      string
	HighPrice      string
	LowPrice       string
	LimitUpPrice   string
	LimitDownPrice string
	TotalVolume    string
	TotalTurnover  string
}

// Envelope is the outcome of one upstream call. Transport failures are
// reported as errors by Source.Fetch instead.
type Envelope struct {
	Status FetchStatus
	Record RawRecord
}

// Source abstracts the upstream quote feed.
type Source interface {
	// Fetch requests the raw quote record for symbol. A transient "busy"
	// condition and an empty result are reported through the envelope status;
	// only transport-level failures return an error.
	Fetch(ctx context.Context, symbol string) (Envelope, error)
}

const defaultRequestTimeout = 10 * time.Second

// TwseSource fetches quotes from a TWSE-style HTTP feed. Requests are keyed by
// exchange+symbol and return a JSON envelope with zero or one record of
// string-typed fields.
type TwseSource struct {
	client   *resty.Client
	exchange string
	logger   *logger.Logger
}

// NewTwseSource creates a Source backed by the feed at baseURL.
func NewTwseSource(baseURL string, exchange string, logger *logger.Logger) *TwseSource {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultRequestTimeout)

	return &TwseSource{
		client:   client,
		exchange: exchange,
		logger:   logger,
	}
}

type twseRecord struct {
	Z  string `json:"z"`  // current price
	Y  string `json:"y"`  // previous close
	O  string `json:"o"`  // open
	H  string `json:"h"`  // high
	L  string `json:"l"`  // low
	U  string `json:"u"`  // limit up
	W  string `json:"w"`  // limit down
	V  string `json:"v"`  // cumulative volume
	Tv string `json:"tv"` // cumulative turnover, optional
}

type twseResponse struct {
	MsgArray []twseRecord `json:"msgArray"`
}

// Fetch implements Source.
func (s *TwseSource) Fetch(ctx context.Context, symbol string) (Envelope, error) {
	var body twseResponse

	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("ex_ch", fmt.Sprintf("%s_%s.tw", s.exchange, symbol)).
		SetResult(&body).
		Get("/stock/api/getStockInfo.jsp")
	if err != nil {
		return Envelope{}, err
	}

	if resp.StatusCode() == 503 {
		s.logger.Warn("quote feed busy", zap.String("symbol", symbol))

		return Envelope{Status: StatusBusy}, nil
	}

	if resp.IsError() {
		return Envelope{}, errors.Newf(errors.ErrCodeUpstreamBadResponse,
			"quote feed returned status %d for %s", resp.StatusCode(), symbol)
	}

	if len(body.MsgArray) == 0 {
		return Envelope{Status: StatusEmpty}, nil
	}

	record := body.MsgArray[0]

	return Envelope{
		Status: StatusData,
		Record: RawRecord{
			CurrentPrice:   record.Z,
			PreviousClose:  record.Y,
			OpenPrice:      record.O,
			HighPrice:      record.H,
			LowPrice:       record.L,
			LimitUpPrice:   record.U,
			LimitDownPrice: record.W,
			TotalVolume:    record.V,
			TotalTurnover:  record.Tv,
		},
	}, nil
}
