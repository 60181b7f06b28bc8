package quote

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/types"
	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// errUpstreamBusy marks a transient "service busy" response inside the retry
// loop. Exhausting retries on it yields Unavailable, not a fault.
var errUpstreamBusy = stderrors.New("quote feed busy")

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 2
	// DefaultRetryDelayUnit scales the attempt-indexed wait: 1 unit after the
	// first attempt, 2 units after the second, and so on.
	DefaultRetryDelayUnit = time.Second
)

// ladderBackOff waits attempt*unit between tries and stops after maxRetries
// retries, giving the fixed 1s, 2s, ... schedule.
type ladderBackOff struct {
	attempt    int
	maxRetries int
	unit       time.Duration
}

func (b *ladderBackOff) NextBackOff() time.Duration {
	if b.attempt >= b.maxRetries {
		return backoff.Stop
	}

	b.attempt++

	return time.Duration(b.attempt) * b.unit
}

func (b *ladderBackOff) Reset() {
	b.attempt = 0
}

// Fetcher wraps a Source with bounded retry and defensive parsing. It produces
// a normalized Quote, or None when the feed has no data to give.
type Fetcher struct {
	source     Source
	maxRetries int
	delayUnit  time.Duration
	logger     *logger.Logger
	now        func() time.Time
}

// NewFetcher creates a Fetcher retrying up to maxRetries times with the
// attempt-indexed delay schedule delayUnit, 2*delayUnit, ...
func NewFetcher(source Source, maxRetries int, delayUnit time.Duration, logger *logger.Logger) *Fetcher {
	return &Fetcher{
		source:     source,
		maxRetries: maxRetries,
		delayUnit:  delayUnit,
		logger:     logger,
		now:        time.Now,
	}
}

// Fetch returns the normalized quote for symbol, or None when the feed is busy
// past the retry budget or has no record for the symbol. Transport failures
// that survive the retry budget surface as an UpstreamUnreachable fault.
// Cancelling ctx aborts in-flight retries promptly.
func (f *Fetcher) Fetch(ctx context.Context, symbol string) (optional.Option[types.Quote], error) {
	var envelope Envelope

	operation := func() error {
		env, err := f.source.Fetch(ctx, symbol)
		if err != nil {
			f.logger.Warn("quote fetch attempt failed",
				zap.String("symbol", symbol),
				zap.Error(err))

			return err
		}

		if env.Status == StatusBusy {
			return errUpstreamBusy
		}

		envelope = env

		return nil
	}

	ladder := &ladderBackOff{maxRetries: f.maxRetries, unit: f.delayUnit}

	err := backoff.Retry(operation, backoff.WithContext(ladder, ctx))
	if err != nil {
		if stderrors.Is(err, errUpstreamBusy) {
			f.logger.Warn("quote feed busy past retry budget", zap.String("symbol", symbol))

			return optional.None[types.Quote](), nil
		}

		if ctx.Err() != nil {
			return optional.None[types.Quote](), ctx.Err()
		}

		return optional.None[types.Quote](), errors.Wrapf(errors.ErrCodeUpstreamUnreachable, err,
			"quote feed unreachable for %s", symbol)
	}

	if envelope.Status == StatusEmpty {
		return optional.None[types.Quote](), nil
	}

	quote, err := normalizeQuote(symbol, envelope.Record, f.now().UTC())
	if err != nil {
		return optional.None[types.Quote](), err
	}

	return optional.Some(quote), nil
}
