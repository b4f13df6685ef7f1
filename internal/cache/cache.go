package cache

import (
	"context"
	"time"
)

// DispatchLog records successful dispatches for observability. The drip
// idempotency guard never reads it; last_sent_on in the store is the
// source of truth.
type DispatchLog interface {
	StoreSent(ctx context.Context, email string, day int, sentAt time.Time) error
}
