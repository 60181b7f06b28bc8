package quote

import (
	"context"

	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/rxtech-lab/securities-trading/internal/cache"
	"github.com/rxtech-lab/securities-trading/internal/logger"
	"github.com/rxtech-lab/securities-trading/internal/types"
)

// SnapshotStore persists the latest successful quote per symbol for the order
// admission path.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, quote types.Quote) error
}

// Service is the read-through quote pipeline: TTL cache in front of the
// fetcher, with every fresh fetch mirrored into the durable snapshot store.
type Service struct {
	fetcher   *Fetcher
	cache     *cache.Cache[types.Quote]
	snapshots SnapshotStore
	logger    *logger.Logger
}

// NewService wires the quote pipeline. The cache is shared, constructed by the
// caller, and carries the quote TTL.
func NewService(fetcher *Fetcher, quoteCache *cache.Cache[types.Quote], snapshots SnapshotStore, logger *logger.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		cache:     quoteCache,
		snapshots: snapshots,
		logger:    logger,
	}
}

// GetQuote returns the cached quote when fresh, otherwise fetches upstream.
// Unavailable results are never cached, so a temporarily-down feed is retried
// on the very next call. Concurrent misses for the same symbol may each fetch
// independently; last-writer-wins is correct because the value is a pure
// function of upstream data.
func (s *Service) GetQuote(ctx context.Context, symbol string) (optional.Option[types.Quote], error) {
	if cached := s.cache.Get(symbol); cached.IsSome() {
		return cached, nil
	}

	fetched, err := s.fetcher.Fetch(ctx, symbol)
	if err != nil {
		return optional.None[types.Quote](), err
	}

	if fetched.IsNone() {
		s.logger.Warn("quote unavailable", zap.String("symbol", symbol))

		return optional.None[types.Quote](), nil
	}

	quote := fetched.Unwrap()
	s.cache.Set(symbol, quote)

	if err := s.snapshots.UpsertSnapshot(ctx, quote); err != nil {
		return optional.None[types.Quote](), err
	}

	s.logger.Info("quote refreshed",
		zap.String("symbol", symbol),
		zap.String("current_price", quote.CurrentPrice.String()))

	return optional.Some(quote), nil
}
