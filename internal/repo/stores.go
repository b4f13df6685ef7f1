package repo

import (
	"context"
	"errors"
	"time"

	"github.com/kfarkas-hq/dripfeed/internal/model"
)

// ErrNotFound is returned by keyed lookups when no row matches.
var ErrNotFound = errors.New("not found")

type SubscriberStore interface {
	All(ctx context.Context) ([]model.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (model.Subscriber, error)

	// Upsert inserts a new subscriber or, for an existing email, updates
	// name/phone/track/enrolled. SubscribedOn, LastSentOn and the
	// unsubscribed flag are never touched on update.
	Upsert(ctx context.Context, sub model.Subscriber) error

	SetUnsubscribed(ctx context.Context, email string) error

	// UpdateLastSent advances last_sent_on to sentOn. The update is
	// conditional: it only applies when the stored value is unset or
	// earlier, so the timestamp never moves backwards even if two runs
	// overlap.
	UpdateLastSent(ctx context.Context, email string, sentOn time.Time) error
}

type TemplateStore interface {
	All(ctx context.Context) ([]model.Template, error)
}
