package subscription_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/practice/pkg/subscription"
)

func TestOperationForMethod(t *testing.T) {
	t.Parallel()

	for _, m := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		assert.Equal(t, subscription.OperationRead, subscription.OperationForMethod(m), m)
	}
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		assert.Equal(t, subscription.OperationWrite, subscription.OperationForMethod(m), m)
	}
}

func TestRequireAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	graceNow := feb1.Add(48 * time.Hour)

	svc := subscription.NewService(subscription.NewMemoryStore(),
		subscription.WithClock(func() time.Time { return graceNow }),
	)
	sub, err := svc.CreateSubscription(ctx, subscription.CreateParams{
		ProfessionalID: uuid.New(),
		StartDate:      jan1,
		EndDate:        feb1,
	})
	require.NoError(t, err)

	fromHeader := func(r *http.Request) (uuid.UUID, error) {
		return uuid.Parse(r.Header.Get("X-Professional-ID"))
	}

	var seenTier subscription.AccessTier
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTier, _ = subscription.GetTierFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := subscription.RequireAccess(svc, fromHeader)(next)

	serve := func(method string, id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/v1/practice/patients", nil)
		req.Header.Set("X-Professional-ID", id)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("read passes during grace", func(t *testing.T) {
		rec := serve(http.MethodGet, sub.ProfessionalID.String())
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, subscription.TierGraceReadOnly, seenTier)
	})

	t.Run("write is read-only during grace", func(t *testing.T) {
		rec := serve(http.MethodPost, sub.ProfessionalID.String())
		assert.Equal(t, http.StatusForbidden, rec.Code)

		var body struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "subscription_read_only", body.Error.Code)
	})

	t.Run("unknown professional is not found", func(t *testing.T) {
		rec := serve(http.MethodGet, uuid.NewString())
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unidentified request is unauthorized", func(t *testing.T) {
		rec := serve(http.MethodGet, "not-a-uuid")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

type failingChecker struct{}

func (failingChecker) CheckAccess(context.Context, uuid.UUID, subscription.OperationKind) (subscription.AccessTier, error) {
	return subscription.TierBlocked, errors.New("db down")
}

func TestRequireAccess_InternalError(t *testing.T) {
	t.Parallel()

	handler := subscription.RequireAccess(failingChecker{}, func(*http.Request) (uuid.UUID, error) {
		return uuid.New(), nil
	})(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestRequireAccess_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		subscription.RequireAccess(nil, func(*http.Request) (uuid.UUID, error) { return uuid.Nil, nil })
	})
	assert.Panics(t, func() { subscription.RequireAccess(failingChecker{}, nil) })
}

func TestIsReadOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.False(t, subscription.IsReadOnly(ctx))
	assert.True(t, subscription.IsReadOnly(subscription.SetTierToContext(ctx, subscription.TierGraceReadOnly)))
	assert.False(t, subscription.IsReadOnly(subscription.SetTierToContext(ctx, subscription.TierActive)))
}
