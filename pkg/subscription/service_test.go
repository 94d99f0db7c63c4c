package subscription_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/practice/pkg/subscription"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) FindActiveByProfessional(ctx context.Context, professionalID uuid.UUID) (*subscription.Subscription, error) {
	args := m.Called(ctx, professionalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *mockStore) Save(ctx context.Context, sub *subscription.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

var (
	jan1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb1 = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mar1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func newTestService(t *testing.T) (*subscription.Service, *subscription.MemoryStore, *testClock) {
	t.Helper()

	store := subscription.NewMemoryStore()
	clock := &testClock{now: jan1.Add(time.Hour)}
	svc := subscription.NewService(store, subscription.WithClock(clock.Now))
	return svc, store, clock
}

func TestNewService(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		subscription.NewService(nil)
	})
	assert.NotPanics(t, func() {
		subscription.NewService(subscription.NewMemoryStore(), subscription.WithLogger(nil), subscription.WithClock(nil))
	})
}

func TestService_CreateSubscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("creates active subscription", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		professionalID := uuid.New()

		sub, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: professionalID,
			Price:          4900,
			StartDate:      jan1,
			EndDate:        feb1,
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, sub.ID)
		assert.Equal(t, subscription.StatusActive, sub.Status)
		assert.Equal(t, int64(4900), sub.Price)
		assert.Equal(t, jan1, sub.StartDate)
		assert.Equal(t, feb1, sub.EndDate)
		assert.Nil(t, sub.UpdatedAt)

		stored, err := store.FindActiveByProfessional(ctx, professionalID)
		require.NoError(t, err)
		assert.Equal(t, sub, stored)
	})

	t.Run("second create conflicts and keeps one record", func(t *testing.T) {
		t.Parallel()

		svc, store, _ := newTestService(t)
		professionalID := uuid.New()
		params := subscription.CreateParams{ProfessionalID: professionalID, Price: 4900, StartDate: jan1, EndDate: feb1}

		first, err := svc.CreateSubscription(ctx, params)
		require.NoError(t, err)

		_, err = svc.CreateSubscription(ctx, params)
		assert.ErrorIs(t, err, subscription.ErrSubscriptionAlreadyExists)

		stored, err := store.FindActiveByProfessional(ctx, professionalID)
		require.NoError(t, err)
		assert.Equal(t, first.ID, stored.ID)
	})

	t.Run("create after cancel reactivates the same subscription", func(t *testing.T) {
		t.Parallel()

		svc, store, clock := newTestService(t)
		professionalID := uuid.New()
		first, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: professionalID,
			Price:          4900,
			StartDate:      jan1,
			EndDate:        feb1,
		})
		require.NoError(t, err)

		jan10 := jan1.AddDate(0, 0, 9)
		clock.Set(jan10)
		_, err = svc.CancelSubscription(ctx, professionalID)
		require.NoError(t, err)

		again, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: professionalID,
			Price:          5900,
			StartDate:      jan10,
			EndDate:        jan10.AddDate(0, 1, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, first.ID, again.ID)
		assert.Equal(t, subscription.StatusActive, again.Status)
		assert.Equal(t, int64(5900), again.Price)
		assert.Equal(t, jan10, again.StartDate)
		require.NotNil(t, again.UpdatedAt)

		stored, err := store.FindActiveByProfessional(ctx, professionalID)
		require.NoError(t, err)
		assert.Equal(t, again, stored)

		report, err := svc.CheckStatus(ctx, professionalID)
		require.NoError(t, err)
		assert.Equal(t, subscription.TierActive, report.Tier)
	})

	t.Run("rejects malformed window", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: uuid.New(),
			StartDate:      feb1,
			EndDate:        feb1,
		})
		assert.ErrorIs(t, err, subscription.ErrInvalidPeriod)
	})

	t.Run("rejects missing professional and negative price", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.CreateSubscription(ctx, subscription.CreateParams{StartDate: jan1, EndDate: feb1})
		assert.ErrorIs(t, err, subscription.ErrMissingProfessionalID)

		_, err = svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: uuid.New(),
			Price:          -1,
			StartDate:      jan1,
			EndDate:        feb1,
		})
		assert.ErrorIs(t, err, subscription.ErrNegativePrice)
	})

	t.Run("store level conflict is reported as already exists", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		professionalID := uuid.New()
		store.On("FindActiveByProfessional", mock.Anything, professionalID).Return(nil, nil)
		store.On("Create", mock.Anything, mock.AnythingOfType("*subscription.Subscription")).
			Return(errors.Join(subscription.ErrSubscriptionAlreadyExists, errors.New("23505")))

		svc := subscription.NewService(store)
		_, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: professionalID,
			StartDate:      jan1,
			EndDate:        feb1,
		})
		assert.ErrorIs(t, err, subscription.ErrSubscriptionAlreadyExists)
		store.AssertExpectations(t)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		t.Parallel()

		store := &mockStore{}
		dbErr := errors.New("connection reset")
		store.On("FindActiveByProfessional", mock.Anything, mock.Anything).Return(nil, dbErr)

		svc := subscription.NewService(store)
		_, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: uuid.New(),
			StartDate:      jan1,
			EndDate:        feb1,
		})
		assert.ErrorIs(t, err, dbErr)
		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_RenewSubscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	setup := func(t *testing.T) (*subscription.Service, *subscription.Subscription, *testClock) {
		t.Helper()
		svc, _, clock := newTestService(t)
		sub, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: uuid.New(),
			Price:          4900,
			StartDate:      jan1,
			EndDate:        feb1,
		})
		require.NoError(t, err)
		return svc, sub, clock
	}

	t.Run("overlapping window is rejected", func(t *testing.T) {
		t.Parallel()

		svc, sub, _ := setup(t)
		_, err := svc.RenewSubscription(ctx, subscription.RenewParams{
			ProfessionalID: sub.ProfessionalID,
			StartDate:      time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			EndDate:        time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		})
		assert.ErrorIs(t, err, subscription.ErrRenewalPeriodInvalid)

		report, err := svc.CheckStatus(ctx, sub.ProfessionalID)
		require.NoError(t, err)
		assert.Equal(t, feb1, report.Subscription.EndDate)
	})

	t.Run("adjacent window is accepted in place", func(t *testing.T) {
		t.Parallel()

		svc, sub, clock := setup(t)
		clock.Set(feb1.Add(-time.Hour))

		renewed, err := svc.RenewSubscription(ctx, subscription.RenewParams{
			ProfessionalID: sub.ProfessionalID,
			StartDate:      feb1,
			EndDate:        mar1,
		})
		require.NoError(t, err)
		assert.Equal(t, sub.ID, renewed.ID)
		assert.Equal(t, feb1, renewed.StartDate)
		assert.Equal(t, mar1, renewed.EndDate)
		require.NotNil(t, renewed.UpdatedAt)
		assert.Equal(t, feb1.Add(-time.Hour), *renewed.UpdatedAt)
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		t.Parallel()

		svc, sub, _ := setup(t)
		_, err := svc.RenewSubscription(ctx, subscription.RenewParams{
			ProfessionalID: sub.ProfessionalID,
			StartDate:      mar1,
			EndDate:        feb1,
		})
		assert.ErrorIs(t, err, subscription.ErrRenewalPeriodInvalid)
	})

	t.Run("price kept unless provided", func(t *testing.T) {
		t.Parallel()

		svc, sub, _ := setup(t)
		renewed, err := svc.RenewSubscription(ctx, subscription.RenewParams{
			ProfessionalID: sub.ProfessionalID,
			StartDate:      feb1,
			EndDate:        mar1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(4900), renewed.Price)

		price := int64(5900)
		renewed, err = svc.RenewSubscription(ctx, subscription.RenewParams{
			ProfessionalID: sub.ProfessionalID,
			StartDate:      mar1,
			EndDate:        mar1.AddDate(0, 1, 0),
			Price:          &price,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5900), renewed.Price)
	})

	t.Run("renewal reactivates a canceled subscription", func(t *testing.T) {
		t.Parallel()

		svc, sub, _ := setup(t)
		_, err := svc.CancelSubscription(ctx, sub.ProfessionalID)
		require.NoError(t, err)

		renewed, err := svc.RenewSubscription(ctx, subscription.RenewParams{
			ProfessionalID: sub.ProfessionalID,
			StartDate:      feb1,
			EndDate:        mar1,
		})
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, renewed.Status)
		assert.Equal(t, sub.ID, renewed.ID)
	})

	t.Run("missing subscription", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.RenewSubscription(ctx, subscription.RenewParams{
			ProfessionalID: uuid.New(),
			StartDate:      feb1,
			EndDate:        mar1,
		})
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})
}

func TestService_CancelSubscription(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("cancel is idempotent and blocks access", func(t *testing.T) {
		t.Parallel()

		svc, _, clock := newTestService(t)
		sub, err := svc.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: uuid.New(),
			StartDate:      jan1,
			EndDate:        feb1,
		})
		require.NoError(t, err)

		clock.Set(jan1.Add(48 * time.Hour))

		canceled, err := svc.CancelSubscription(ctx, sub.ProfessionalID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusCanceled, canceled.Status)

		clock.Set(jan1.Add(72 * time.Hour))
		again, err := svc.CancelSubscription(ctx, sub.ProfessionalID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusCanceled, again.Status)
		assert.Equal(t, canceled.UpdatedAt, again.UpdatedAt)

		report, err := svc.CheckStatus(ctx, sub.ProfessionalID)
		require.NoError(t, err)
		assert.Equal(t, subscription.TierBlocked, report.Tier)
	})

	t.Run("missing subscription", func(t *testing.T) {
		t.Parallel()

		svc, _, _ := newTestService(t)
		_, err := svc.CancelSubscription(ctx, uuid.New())
		assert.ErrorIs(t, err, subscription.ErrSubscriptionNotFound)
	})
}

func TestService_EnforceAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _, clock := newTestService(t)

	sub, err := svc.CreateSubscription(ctx, subscription.CreateParams{
		ProfessionalID: uuid.New(),
		StartDate:      jan1,
		EndDate:        feb1,
	})
	require.NoError(t, err)
	id := sub.ProfessionalID

	// Subtests share the clock, so they run sequentially.
	t.Run("active", func(t *testing.T) {
		clock.Set(jan1.Add(24 * time.Hour))
		assert.NoError(t, svc.EnforceAccess(ctx, id, subscription.OperationRead))
		assert.NoError(t, svc.EnforceAccess(ctx, id, subscription.OperationWrite))
	})

	t.Run("grace", func(t *testing.T) {
		clock.Set(feb1.Add(24 * time.Hour))
		assert.NoError(t, svc.EnforceAccess(ctx, id, subscription.OperationRead))
		assert.ErrorIs(t, svc.EnforceAccess(ctx, id, subscription.OperationWrite), subscription.ErrReadOnly)

		report, err := svc.CheckStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, subscription.TierGraceReadOnly, report.Tier)
		assert.Equal(t, feb1.Add(subscription.DefaultGracePeriod), report.GraceEndsAt)
		assert.Equal(t, 0, report.DaysRemaining)
	})

	t.Run("blocked", func(t *testing.T) {
		clock.Set(feb1.Add(8 * 24 * time.Hour))
		assert.ErrorIs(t, svc.EnforceAccess(ctx, id, subscription.OperationRead), subscription.ErrAccessBlocked)
		assert.ErrorIs(t, svc.EnforceAccess(ctx, id, subscription.OperationWrite), subscription.ErrAccessBlocked)
	})

	t.Run("missing", func(t *testing.T) {
		assert.ErrorIs(t, svc.EnforceAccess(ctx, uuid.New(), subscription.OperationRead), subscription.ErrSubscriptionNotFound)
	})

	t.Run("custom grace resolver", func(t *testing.T) {
		custom := subscription.NewService(subscription.NewMemoryStore(),
			subscription.WithClock(func() time.Time { return feb1.Add(72 * time.Hour) }),
			subscription.WithResolver(subscription.NewResolver(subscription.WithGracePeriod(48*time.Hour))),
		)
		created, err := custom.CreateSubscription(ctx, subscription.CreateParams{
			ProfessionalID: uuid.New(),
			StartDate:      jan1,
			EndDate:        feb1,
		})
		require.NoError(t, err)
		assert.ErrorIs(t, custom.EnforceAccess(ctx, created.ProfessionalID, subscription.OperationRead), subscription.ErrAccessBlocked)
	})
}
