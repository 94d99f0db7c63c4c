package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"
)

// PaddleSignatureHeader carries the webhook signature.
const PaddleSignatureHeader = "Paddle-Signature"

// PaddleConfig holds configuration for the Paddle provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements PaymentProvider on Paddle Billing.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider builds a client for the sandbox or production API.
func NewPaddleProvider(cfg PaddleConfig) (*PaddleProvider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingPaddleAPIKey
	}
	if cfg.WebhookSecret == "" {
		return nil, ErrMissingPaddleWebhookSecret
	}

	var (
		client *paddle.SDK
		err    error
	)
	switch strings.ToLower(cfg.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(cfg.APIKey)
	case "production", "":
		client, err = paddle.New(cfg.APIKey)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaddleEnvironment, cfg.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(cfg.WebhookSecret),
	}, nil
}

func (p *PaddleProvider) Name() string { return "paddle" }

// CreateCheckoutSession creates a Paddle transaction and returns its hosted checkout link.
func (p *PaddleProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	if params.PriceID == "" {
		return nil, fmt.Errorf("%w: price id is required", ErrCheckoutFailed)
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  params.PriceID,
		Quantity: 1,
	})

	req := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			"professional_id": params.ProfessionalID.String(),
			"user_id":         params.UserID.String(),
		},
	}
	if params.Email != "" {
		req.CustomData["email"] = params.Email
	}
	if params.SuccessURL != "" {
		req.Checkout = &paddle.TransactionCheckout{URL: paddle.PtrTo(params.SuccessURL)}
	}

	txn, err := p.client.TransactionsClient.CreateTransaction(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrCheckoutFailed, err)
	}
	if txn.Checkout == nil || txn.Checkout.URL == nil {
		return nil, fmt.Errorf("%w: no checkout url returned", ErrCheckoutFailed)
	}

	return &CheckoutSession{ID: txn.ID, URL: *txn.Checkout.URL}, nil
}

// VerifyAndNormalizeEvent checks the Paddle-Signature HMAC and parses the payload.
func (p *PaddleProvider) VerifyAndNormalizeEvent(ctx context.Context, payload []byte, signature string) (ProviderEvent, error) {
	if signature == "" {
		return nil, ErrWebhookVerificationFailed
	}

	// The SDK verifier works on requests, so rebuild one around the raw body.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set(PaddleSignatureHeader, signature)

	ok, err := p.verifier.Verify(req)
	if err != nil {
		return nil, errors.Join(ErrWebhookVerificationFailed, err)
	}
	if !ok {
		return nil, ErrWebhookVerificationFailed
	}

	return ParsePaddleEvent(payload)
}

type paddleNotification struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

type paddleCustomData struct {
	ProfessionalID string `json:"professional_id"`
	UserID         string `json:"user_id"`
}

type paddleTransaction struct {
	ID             string            `json:"id"`
	SubscriptionID string            `json:"subscription_id"`
	CustomData     *paddleCustomData `json:"custom_data"`
	BilledAt       *time.Time        `json:"billed_at"`
	UpdatedAt      *time.Time        `json:"updated_at"`
	BillingPeriod  *struct {
		StartsAt *time.Time `json:"starts_at"`
		EndsAt   *time.Time `json:"ends_at"`
	} `json:"billing_period"`
	Details *struct {
		Totals *struct {
			GrandTotal string `json:"grand_total"`
			Total      string `json:"total"`
		} `json:"totals"`
	} `json:"details"`
	Items []struct {
		PriceID string `json:"price_id"`
		Price   *struct {
			ID string `json:"id"`
		} `json:"price"`
	} `json:"items"`
	Payments []struct {
		Status        string     `json:"status"`
		CapturedAt    *time.Time `json:"captured_at"`
		MethodDetails *struct {
			Type string `json:"type"`
		} `json:"method_details"`
	} `json:"payments"`
}

type paddleSubscription struct {
	ID         string            `json:"id"`
	CustomData *paddleCustomData `json:"custom_data"`
	CanceledAt *time.Time        `json:"canceled_at"`
}

// ParsePaddleEvent converts an already verified Paddle notification.
// Event types the service does not act on yield (nil, nil).
//
//	transaction.paid            -> CheckoutCompleted
//	transaction.completed       -> InvoiceSucceeded
//	transaction.payment_failed  -> InvoiceFailed
//	subscription.canceled       -> SubscriptionDeleted
func ParsePaddleEvent(payload []byte) (ProviderEvent, error) {
	var n paddleNotification
	if err := json.Unmarshal(payload, &n); err != nil {
		return nil, errors.Join(ErrMalformedEvent, err)
	}

	switch n.EventType {
	case "transaction.paid", "transaction.completed", "transaction.payment_failed":
		var txn paddleTransaction
		if err := json.Unmarshal(n.Data, &txn); err != nil {
			return nil, errors.Join(ErrMalformedEvent, err)
		}
		return paddleTransactionEvent(n.EventType, paddleMeta(n, txn.CustomData), txn)

	case "subscription.canceled":
		var sub paddleSubscription
		if err := json.Unmarshal(n.Data, &sub); err != nil {
			return nil, errors.Join(ErrMalformedEvent, err)
		}
		return SubscriptionDeleted{EventMeta: paddleMeta(n, sub.CustomData), Reference: sub.ID}, nil

	default:
		return nil, nil
	}
}

func paddleTransactionEvent(eventType string, meta EventMeta, txn paddleTransaction) (ProviderEvent, error) {
	switch eventType {
	case "transaction.paid":
		return CheckoutCompleted{EventMeta: meta, ConfirmedAt: txn.UpdatedAt}, nil

	case "transaction.payment_failed":
		return InvoiceFailed{EventMeta: meta, Reference: txn.ID}, nil
	}

	ev := InvoiceSucceeded{
		EventMeta: meta,
		Reference: txn.ID,
		PaidAt:    txn.BilledAt,
	}

	if txn.Details != nil && txn.Details.Totals != nil {
		total := txn.Details.Totals.GrandTotal
		if total == "" {
			total = txn.Details.Totals.Total
		}
		amount, err := strconv.ParseInt(total, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: grand_total %q", ErrMalformedEvent, total)
		}
		ev.Amount = amount
	}

	if txn.BillingPeriod != nil {
		ev.PeriodStart = txn.BillingPeriod.StartsAt
		ev.PeriodEnd = txn.BillingPeriod.EndsAt
	}

	if len(txn.Items) > 0 {
		ev.PriceID = txn.Items[0].PriceID
		if ev.PriceID == "" && txn.Items[0].Price != nil {
			ev.PriceID = txn.Items[0].Price.ID
		}
	}

	for _, pay := range txn.Payments {
		if pay.Status != "captured" {
			continue
		}
		if pay.MethodDetails != nil {
			ev.Method = pay.MethodDetails.Type
		}
		if pay.CapturedAt != nil {
			ev.PaidAt = pay.CapturedAt
		}
		break
	}

	return ev, nil
}

// paddleMeta never rejects an event over its custom data: an id that is not a
// UUID is kept raw and the event proceeds without it, so a paid invoice is
// still recorded as an unlinked payment.
func paddleMeta(n paddleNotification, cd *paddleCustomData) EventMeta {
	meta := EventMeta{ID: n.EventID, OccurredAt: n.OccurredAt}
	if cd == nil {
		return meta
	}

	if cd.ProfessionalID != "" {
		if id, err := uuid.Parse(cd.ProfessionalID); err == nil {
			meta.ProfessionalID = id
		} else {
			meta.RawProfessionalID = cd.ProfessionalID
		}
	}
	if cd.UserID != "" {
		if id, err := uuid.Parse(cd.UserID); err == nil {
			meta.UserID = id
		}
	}
	return meta
}
