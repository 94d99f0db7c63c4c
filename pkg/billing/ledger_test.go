package billing_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/practice/pkg/billing"
)

func TestMemoryLedger(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := billing.NewMemoryLedger()
	profID := uuid.New()

	older := &billing.Payment{ID: uuid.New(), ProfessionalID: profID, Amount: 100, PaidAt: jan1, Reference: ptr("txn_a")}
	newer := &billing.Payment{ID: uuid.New(), ProfessionalID: profID, Amount: 200, PaidAt: feb1, Reference: ptr("txn_b")}
	manual := &billing.Payment{ID: uuid.New(), ProfessionalID: profID, Amount: 300, PaidAt: jan15}
	other := &billing.Payment{ID: uuid.New(), ProfessionalID: uuid.New(), Amount: 400, PaidAt: mar1}

	for _, p := range []*billing.Payment{older, newer, manual, other} {
		require.NoError(t, l.Create(ctx, p))
	}

	// Payments without a reference never collide.
	require.NoError(t, l.Create(ctx, &billing.Payment{ID: uuid.New(), ProfessionalID: uuid.New(), PaidAt: jan1}))

	dup := &billing.Payment{ID: uuid.New(), ProfessionalID: profID, Amount: 999, PaidAt: mar1, Reference: ptr("txn_a")}
	assert.ErrorIs(t, l.Create(ctx, dup), billing.ErrDuplicatePayment)

	got, err := l.ListByProfessional(ctx, profID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, newer.ID, got[0].ID)
	assert.Equal(t, manual.ID, got[1].ID)
	assert.Equal(t, older.ID, got[2].ID)

	assert.Len(t, l.All(), 5)
}
