package store

import (
	"context"
	"fmt"
)

// MarkEventProcessed records a payment-provider event id and reports whether
// it was seen for the first time. Providers redeliver webhook events, so the
// premium upgrade keys its side effect off this check.
func (s *Store) MarkEventProcessed(ctx context.Context, eventID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_events (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`, eventID)
	if err != nil {
		return false, fmt.Errorf("record payment event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected == 1, nil
}
