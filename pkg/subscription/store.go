package subscription

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the persistence port for subscriptions.
// A professional has a single logical subscription; superseding is done by
// renewal in place, never by inserting a second row.
type Store interface {
	// FindActiveByProfessional returns the professional's currently relevant subscription.
	// Returns (nil, nil) when the professional has none.
	FindActiveByProfessional(ctx context.Context, professionalID uuid.UUID) (*Subscription, error)

	// Create persists a new subscription.
	// Returns ErrSubscriptionAlreadyExists if the professional already has one.
	Create(ctx context.Context, sub *Subscription) error

	// Save updates an existing subscription identified by ID.
	// Returns ErrSubscriptionNotFound if no such record exists.
	Save(ctx context.Context, sub *Subscription) error
}
