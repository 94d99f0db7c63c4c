package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/pg"
)

// UserPaymentConfirmer flags that a user completed checkout.
// The flag is one-way: confirming twice keeps the first timestamp.
type UserPaymentConfirmer interface {
	Confirm(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// ConfirmerFunc adapts a function to UserPaymentConfirmer.
type ConfirmerFunc func(ctx context.Context, userID uuid.UUID, at time.Time) error

func (f ConfirmerFunc) Confirm(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return f(ctx, userID, at)
}

// PostgresConfirmer writes confirmations to payment_confirmations.
type PostgresConfirmer struct {
	db pg.Querier
}

func NewPostgresConfirmer(db pg.Querier) *PostgresConfirmer {
	if db == nil {
		panic("billing: postgres querier is required")
	}
	return &PostgresConfirmer{db: db}
}

const insertConfirmation = `
	INSERT INTO payment_confirmations (user_id, confirmed_at)
	VALUES ($1, $2)
	ON CONFLICT (user_id) DO NOTHING
`

func (c *PostgresConfirmer) Confirm(ctx context.Context, userID uuid.UUID, at time.Time) error {
	_, err := c.db.Exec(ctx, insertConfirmation, userID, at)
	return err
}
