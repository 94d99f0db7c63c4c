package billing_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicflow/practice/pkg/billing"
)

const (
	testProfessionalID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	testUserID         = "0f8fad5b-d9cb-469f-a165-70867728950e"
)

const transactionCompleted = `{
	"event_id": "evt_01hv8x",
	"event_type": "transaction.completed",
	"occurred_at": "2024-02-01T00:00:05Z",
	"data": {
		"id": "txn_01hv8w",
		"custom_data": {"professional_id": "` + testProfessionalID + `", "user_id": "` + testUserID + `"},
		"billed_at": "2024-02-01T00:00:01Z",
		"billing_period": {"starts_at": "2024-02-01T00:00:00Z", "ends_at": "2024-03-01T00:00:00Z"},
		"details": {"totals": {"grand_total": "4900", "total": "4900"}},
		"items": [{"price": {"id": "pri_monthly"}, "quantity": 1}],
		"payments": [
			{"status": "error", "method_details": {"type": "paypal"}},
			{"status": "captured", "captured_at": "2024-02-01T00:00:03Z", "method_details": {"type": "card"}}
		]
	}
}`

func TestParsePaddleEvent(t *testing.T) {
	t.Parallel()

	profID := uuid.MustParse(testProfessionalID)
	userID := uuid.MustParse(testUserID)

	t.Run("transaction completed", func(t *testing.T) {
		t.Parallel()

		ev, err := billing.ParsePaddleEvent([]byte(transactionCompleted))
		require.NoError(t, err)

		inv, ok := ev.(billing.InvoiceSucceeded)
		require.True(t, ok, "got %T", ev)
		assert.Equal(t, billing.KindInvoiceSucceeded, inv.Kind())
		assert.Equal(t, "evt_01hv8x", inv.Meta().ID)
		assert.Equal(t, profID, inv.ProfessionalID)
		assert.Equal(t, userID, inv.UserID)
		assert.Equal(t, int64(4900), inv.Amount)
		assert.Equal(t, "txn_01hv8w", inv.Reference)
		assert.Equal(t, "card", inv.Method)
		assert.Equal(t, "pri_monthly", inv.PriceID)
		require.NotNil(t, inv.PeriodStart)
		require.NotNil(t, inv.PeriodEnd)
		require.NotNil(t, inv.PaidAt)
		assert.True(t, inv.PeriodStart.Equal(feb1))
		assert.True(t, inv.PeriodEnd.Equal(mar1))
		assert.True(t, inv.PaidAt.Equal(feb1.Add(3*time.Second)))
	})

	t.Run("transaction paid", func(t *testing.T) {
		t.Parallel()

		payload := `{"event_id":"evt_1","event_type":"transaction.paid","occurred_at":"2024-01-01T00:00:00Z",
			"data":{"id":"txn_1","updated_at":"2024-01-01T00:00:02Z","custom_data":{"user_id":"` + testUserID + `"}}}`
		ev, err := billing.ParsePaddleEvent([]byte(payload))
		require.NoError(t, err)

		cc, ok := ev.(billing.CheckoutCompleted)
		require.True(t, ok, "got %T", ev)
		assert.Equal(t, userID, cc.UserID)
		assert.Equal(t, uuid.Nil, cc.ProfessionalID)
		require.NotNil(t, cc.ConfirmedAt)
		assert.True(t, cc.ConfirmedAt.Equal(jan1.Add(2*time.Second)))
	})

	t.Run("payment failed", func(t *testing.T) {
		t.Parallel()

		payload := `{"event_id":"evt_2","event_type":"transaction.payment_failed","data":{"id":"txn_2"}}`
		ev, err := billing.ParsePaddleEvent([]byte(payload))
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceFailed{EventMeta: billing.EventMeta{ID: "evt_2"}, Reference: "txn_2"}, ev)
	})

	t.Run("subscription canceled", func(t *testing.T) {
		t.Parallel()

		payload := `{"event_id":"evt_3","event_type":"subscription.canceled",
			"data":{"id":"sub_3","custom_data":{"professional_id":"` + testProfessionalID + `"}}}`
		ev, err := billing.ParsePaddleEvent([]byte(payload))
		require.NoError(t, err)

		del, ok := ev.(billing.SubscriptionDeleted)
		require.True(t, ok, "got %T", ev)
		assert.Equal(t, profID, del.ProfessionalID)
		assert.Equal(t, "sub_3", del.Reference)
	})

	t.Run("ignored event type", func(t *testing.T) {
		t.Parallel()

		ev, err := billing.ParsePaddleEvent([]byte(`{"event_id":"evt_4","event_type":"customer.updated","data":{}}`))
		require.NoError(t, err)
		assert.Nil(t, ev)
	})

	t.Run("unparseable professional id still yields the invoice", func(t *testing.T) {
		t.Parallel()

		payload := `{"event_id":"evt_5","event_type":"transaction.completed",
			"data":{"id":"txn_5","custom_data":{"professional_id":"nope","user_id":"also-nope"},
			"details":{"totals":{"grand_total":"4900"}}}}`
		ev, err := billing.ParsePaddleEvent([]byte(payload))
		require.NoError(t, err)

		inv, ok := ev.(billing.InvoiceSucceeded)
		require.True(t, ok, "got %T", ev)
		assert.Equal(t, uuid.Nil, inv.ProfessionalID)
		assert.Equal(t, uuid.Nil, inv.UserID)
		assert.Equal(t, "nope", inv.RawProfessionalID)
		assert.Equal(t, int64(4900), inv.Amount)
		assert.Equal(t, "txn_5", inv.Reference)
	})

	t.Run("malformed payloads", func(t *testing.T) {
		t.Parallel()

		cases := map[string]string{
			"not json":        `{`,
			"bad amount":      `{"event_type":"transaction.completed","data":{"details":{"totals":{"grand_total":"49.00"}}}}`,
			"data not object": `{"event_type":"transaction.completed","data":[]}`,
		}
		for name, payload := range cases {
			_, err := billing.ParsePaddleEvent([]byte(payload))
			assert.ErrorIs(t, err, billing.ErrMalformedEvent, name)
		}
	})
}

func TestNewPaddleProvider(t *testing.T) {
	t.Parallel()

	_, err := billing.NewPaddleProvider(billing.PaddleConfig{WebhookSecret: "secret"})
	assert.ErrorIs(t, err, billing.ErrMissingPaddleAPIKey)

	_, err = billing.NewPaddleProvider(billing.PaddleConfig{APIKey: "key"})
	assert.ErrorIs(t, err, billing.ErrMissingPaddleWebhookSecret)

	_, err = billing.NewPaddleProvider(billing.PaddleConfig{APIKey: "key", WebhookSecret: "secret", Environment: "staging"})
	assert.ErrorIs(t, err, billing.ErrInvalidPaddleEnvironment)

	p, err := billing.NewPaddleProvider(billing.PaddleConfig{APIKey: "key", WebhookSecret: "secret", Environment: "sandbox"})
	require.NoError(t, err)
	assert.Equal(t, "paddle", p.Name())
}

func paddleSignature(secret string, ts time.Time, body []byte) string {
	stamp := fmt.Sprintf("%d", ts.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(stamp + ":" + string(body)))
	return "ts=" + stamp + ";h1=" + hex.EncodeToString(mac.Sum(nil))
}

func TestPaddleProvider_VerifyAndNormalizeEvent(t *testing.T) {
	t.Parallel()

	const secret = "pdl_ntfset_test"
	p, err := billing.NewPaddleProvider(billing.PaddleConfig{APIKey: "key", WebhookSecret: secret, Environment: "sandbox"})
	require.NoError(t, err)
	ctx := context.Background()
	body := []byte(transactionCompleted)

	t.Run("valid signature", func(t *testing.T) {
		t.Parallel()

		ev, err := p.VerifyAndNormalizeEvent(ctx, body, paddleSignature(secret, time.Now(), body))
		require.NoError(t, err)
		assert.Equal(t, billing.KindInvoiceSucceeded, ev.Kind())
	})

	t.Run("missing signature", func(t *testing.T) {
		t.Parallel()

		_, err := p.VerifyAndNormalizeEvent(ctx, body, "")
		assert.ErrorIs(t, err, billing.ErrWebhookVerificationFailed)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()

		_, err := p.VerifyAndNormalizeEvent(ctx, body, paddleSignature("other", time.Now(), body))
		assert.ErrorIs(t, err, billing.ErrWebhookVerificationFailed)
	})

	t.Run("tampered body", func(t *testing.T) {
		t.Parallel()

		sig := paddleSignature(secret, time.Now(), body)
		_, err := p.VerifyAndNormalizeEvent(ctx, append([]byte(" "), body...), sig)
		assert.ErrorIs(t, err, billing.ErrWebhookVerificationFailed)
	})
}
