package billing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/pg"
)

// PostgresLedger stores payments in the payments table.
// A unique index on reference backs ErrDuplicatePayment.
type PostgresLedger struct {
	db pg.Querier
}

func NewPostgresLedger(db pg.Querier) *PostgresLedger {
	if db == nil {
		panic("billing: postgres querier is required")
	}
	return &PostgresLedger{db: db}
}

const insertPayment = `
	INSERT INTO payments (id, professional_id, subscription_id, type, amount, paid_at, method, notes, reference, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

func (l *PostgresLedger) Create(ctx context.Context, p *Payment) error {
	_, err := l.db.Exec(ctx, insertPayment,
		p.ID,
		p.ProfessionalID,
		p.SubscriptionID,
		p.Type,
		p.Amount,
		p.PaidAt,
		p.Method,
		p.Notes,
		p.Reference,
		p.CreatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errors.Join(ErrDuplicatePayment, err)
		}
		return err
	}
	return nil
}

const selectPayments = `
	SELECT id, professional_id, subscription_id, type, amount, paid_at, method, notes, reference, created_at
	FROM payments
	WHERE professional_id = $1
	ORDER BY paid_at DESC
`

func (l *PostgresLedger) ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]Payment, error) {
	rows, err := l.db.Query(ctx, selectPayments, professionalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(
			&p.ID,
			&p.ProfessionalID,
			&p.SubscriptionID,
			&p.Type,
			&p.Amount,
			&p.PaidAt,
			&p.Method,
			&p.Notes,
			&p.Reference,
			&p.CreatedAt,
		); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
