package subscription_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/practice/pkg/subscription"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := subscription.NewMemoryStore()
	sub := activeSub(jan1, feb1)

	got, err := store.FindActiveByProfessional(ctx, sub.ProfessionalID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Create(ctx, sub))

	dup := activeSub(jan1, feb1)
	dup.ProfessionalID = sub.ProfessionalID
	assert.ErrorIs(t, store.Create(ctx, dup), subscription.ErrSubscriptionAlreadyExists)

	// Returned records are copies.
	got, err = store.FindActiveByProfessional(ctx, sub.ProfessionalID)
	require.NoError(t, err)
	got.Price = 1
	again, err := store.FindActiveByProfessional(ctx, sub.ProfessionalID)
	require.NoError(t, err)
	assert.Equal(t, sub.Price, again.Price)

	got.Status = subscription.StatusCanceled
	require.NoError(t, store.Save(ctx, got))
	again, err = store.FindActiveByProfessional(ctx, sub.ProfessionalID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusCanceled, again.Status)

	missing := activeSub(jan1, feb1)
	missing.ID = uuid.New()
	assert.ErrorIs(t, store.Save(ctx, missing), subscription.ErrSubscriptionNotFound)
}
