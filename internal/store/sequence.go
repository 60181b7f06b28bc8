package store

import (
	"context"

	"github.com/rxtech-lab/securities-trading/pkg/errors"
)

// NextOrderID allocates the next order identifier from the database sequence.
// The sequence is the single source of uniqueness: it is atomic on the server,
// so identifiers never collide or get reused across concurrent callers or
// multiple service instances.
func (s *Store) NextOrderID(ctx context.Context) (int64, error) {
	var id int64

	err := s.db.QueryRowContext(ctx, `SELECT nextval('order_id_seq')`).Scan(&id)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeSequenceFailed, "failed to allocate order id", err)
	}

	return id, nil
}
