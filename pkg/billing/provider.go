package billing

import (
	"context"

	"github.com/google/uuid"
)

// PaymentProvider is the port to a hosted billing provider.
type PaymentProvider interface {
	// Name is a short lowercase label such as "paddle".
	Name() string

	// CreateCheckoutSession starts a hosted checkout for one catalog price.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error)

	// VerifyAndNormalizeEvent authenticates a webhook delivery and converts it
	// into a ProviderEvent. It returns a nil event for kinds the service does
	// not act on, and ErrWebhookVerificationFailed for forged payloads.
	VerifyAndNormalizeEvent(ctx context.Context, payload []byte, signature string) (ProviderEvent, error)
}

// CheckoutParams identifies who is buying which price.
// ProfessionalID and UserID round-trip through the provider's custom data
// and come back on every webhook for the resulting transaction.
type CheckoutParams struct {
	ProfessionalID uuid.UUID
	UserID         uuid.UUID
	PriceID        string
	Email          string
	SuccessURL     string
}

// CheckoutSession is a hosted checkout the user is redirected to.
type CheckoutSession struct {
	ID  string
	URL string
}
