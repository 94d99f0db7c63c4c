package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/pg"
)

// PostgresStore persists subscriptions in the subscriptions table.
// The table carries a unique index on professional_id, which turns concurrent
// creates for the same professional into ErrSubscriptionAlreadyExists.
type PostgresStore struct {
	db pg.Querier
}

func NewPostgresStore(db pg.Querier) *PostgresStore {
	if db == nil {
		panic("subscription: postgres querier is required")
	}
	return &PostgresStore{db: db}
}

const selectSubscription = `
	SELECT id, professional_id, price, status, start_date, end_date, created_at, updated_at
	FROM subscriptions
	WHERE professional_id = $1
	ORDER BY (status = 'active') DESC, end_date DESC
	LIMIT 1
`

func (p *PostgresStore) FindActiveByProfessional(ctx context.Context, professionalID uuid.UUID) (*Subscription, error) {
	var sub Subscription
	err := p.db.QueryRow(ctx, selectSubscription, professionalID).Scan(
		&sub.ID,
		&sub.ProfessionalID,
		&sub.Price,
		&sub.Status,
		&sub.StartDate,
		&sub.EndDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

const insertSubscription = `
	INSERT INTO subscriptions (id, professional_id, price, status, start_date, end_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

func (p *PostgresStore) Create(ctx context.Context, sub *Subscription) error {
	_, err := p.db.Exec(ctx, insertSubscription,
		sub.ID,
		sub.ProfessionalID,
		sub.Price,
		sub.Status,
		sub.StartDate,
		sub.EndDate,
		sub.CreatedAt,
		sub.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrSubscriptionAlreadyExists, err)
		}
		return err
	}
	return nil
}

const updateSubscription = `
	UPDATE subscriptions
	SET price = $2, status = $3, start_date = $4, end_date = $5, updated_at = $6
	WHERE id = $1
`

func (p *PostgresStore) Save(ctx context.Context, sub *Subscription) error {
	tag, err := p.db.Exec(ctx, updateSubscription,
		sub.ID,
		sub.Price,
		sub.Status,
		sub.StartDate,
		sub.EndDate,
		sub.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
