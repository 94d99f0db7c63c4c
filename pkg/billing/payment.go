package billing

import (
	"time"

	"github.com/google/uuid"
)

// PaymentType classifies what a payment paid for.
type PaymentType string

const (
	PaymentTypeSubscription PaymentType = "subscription"
	PaymentTypeAddon        PaymentType = "addon"
	PaymentTypeOther        PaymentType = "other"
)

// Payment is an immutable ledger entry for money received.
// SubscriptionID is nil when the payment could not be tied to a subscription;
// such rows are kept for manual reconciliation.
type Payment struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	SubscriptionID *uuid.UUID
	Type           PaymentType
	Amount         int64 // minor units
	PaidAt         time.Time
	Method         string
	Notes          *string
	Reference      *string // provider reference, unique across the ledger
	CreatedAt      time.Time
}

// IsLinked reports whether the payment is attached to a subscription.
func (p *Payment) IsLinked() bool {
	return p.SubscriptionID != nil
}
