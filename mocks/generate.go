package mocks

//go:generate mockgen -destination=./mock_quote_source.go -package=mocks github.com/rxtech-lab/securities-trading/internal/quote Source
//go:generate mockgen -destination=./mock_snapshot_store.go -package=mocks github.com/rxtech-lab/securities-trading/internal/quote SnapshotStore
