package billing

import (
	"time"

	"github.com/google/uuid"
)

// EventKind names a ProviderEvent variant in logs and metrics.
type EventKind string

const (
	KindCheckoutCompleted   EventKind = "checkout_completed"
	KindInvoiceSucceeded    EventKind = "invoice_succeeded"
	KindInvoiceFailed       EventKind = "invoice_failed"
	KindSubscriptionDeleted EventKind = "subscription_deleted"
)

// ProviderEvent is a verified, provider-neutral billing event.
// The set of variants is closed: only types in this package implement it,
// and Processor handles each of them in an exhaustive type switch.
type ProviderEvent interface {
	Kind() EventKind
	Meta() EventMeta
	providerEvent()
}

// EventMeta carries the fields every provider event has.
type EventMeta struct {
	ID             string // provider's delivery id, used for deduplication
	ProfessionalID uuid.UUID
	UserID         uuid.UUID
	OccurredAt     time.Time

	// RawProfessionalID holds a provider-supplied professional id that could
	// not be parsed; ProfessionalID is uuid.Nil in that case.
	RawProfessionalID string
}

func (m EventMeta) Meta() EventMeta { return m }

// CheckoutCompleted means the user finished the hosted checkout.
type CheckoutCompleted struct {
	EventMeta
	ConfirmedAt *time.Time
}

// InvoiceSucceeded means money for a billing period was collected.
// Nil optional fields fall back to processing-time defaults.
type InvoiceSucceeded struct {
	EventMeta
	Amount      int64
	PeriodStart *time.Time
	PeriodEnd   *time.Time
	PaidAt      *time.Time
	Reference   string
	Method      string
	PriceID     string
}

// InvoiceFailed means a collection attempt failed. It never mutates state.
type InvoiceFailed struct {
	EventMeta
	Reference string
}

// SubscriptionDeleted means the provider ended the recurring billing.
type SubscriptionDeleted struct {
	EventMeta
	Reference string
}

func (CheckoutCompleted) Kind() EventKind   { return KindCheckoutCompleted }
func (InvoiceSucceeded) Kind() EventKind    { return KindInvoiceSucceeded }
func (InvoiceFailed) Kind() EventKind       { return KindInvoiceFailed }
func (SubscriptionDeleted) Kind() EventKind { return KindSubscriptionDeleted }

func (CheckoutCompleted) providerEvent()   {}
func (InvoiceSucceeded) providerEvent()    {}
func (InvoiceFailed) providerEvent()       {}
func (SubscriptionDeleted) providerEvent() {}
