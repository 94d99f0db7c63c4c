package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/logger"
	"github.com/clinicflow/practice/pkg/subscription"
)

// Lifecycle is the subscription surface the processor drives.
// *subscription.Service implements it.
type Lifecycle interface {
	CreateSubscription(ctx context.Context, p subscription.CreateParams) (*subscription.Subscription, error)
	RenewSubscription(ctx context.Context, p subscription.RenewParams) (*subscription.Subscription, error)
	CancelSubscription(ctx context.Context, professionalID uuid.UUID) (*subscription.Subscription, error)
}

const defaultClaimTimeout = 5 * time.Second

// Processor applies verified provider events to subscriptions and the ledger.
//
// Subscription bookkeeping is best effort: a rejected create or renewal is
// logged and the event still succeeds. Recording money is not: when the ledger
// or the confirmer cannot persist, HandleProviderEvent returns the error so the
// transport answers non-2xx and the provider redelivers.
type Processor struct {
	lifecycle Lifecycle
	ledger    Ledger
	confirmer UserPaymentConfirmer
	dedup     Deduplicator
	catalog   *Catalog
	provider  string
	// claimTimeout bounds each Complete or Release call.
	claimTimeout time.Duration
	now          func() time.Time
	log          *slog.Logger
}

// NewProcessor wires the processor. Lifecycle, ledger and confirmer are required.
func NewProcessor(lifecycle Lifecycle, ledger Ledger, confirmer UserPaymentConfirmer, opts ...ProcessorOption) *Processor {
	if lifecycle == nil {
		panic("billing: Lifecycle is required")
	}
	if ledger == nil {
		panic("billing: Ledger is required")
	}
	if confirmer == nil {
		panic("billing: UserPaymentConfirmer is required")
	}

	p := &Processor{
		lifecycle:    lifecycle,
		ledger:       ledger,
		confirmer:    confirmer,
		provider:     "provider",
		claimTimeout: defaultClaimTimeout,
		now:          func() time.Time { return time.Now().UTC() },
		log:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleProviderEvent processes one event. A nil event, an event already seen
// by the deduplicator and an invoice failure are acknowledged without effect.
func (p *Processor) HandleProviderEvent(ctx context.Context, event ProviderEvent) error {
	if event == nil {
		return nil
	}

	meta := event.Meta()
	log := p.log.With(
		logger.Component("billing"),
		logger.Provider(p.provider),
		logger.EventKind(string(event.Kind())),
		logger.EventID(meta.ID),
		logger.ProfessionalID(meta.ProfessionalID),
	)

	claimed := p.claim(ctx, log, meta.ID)
	if !claimed {
		log.InfoContext(ctx, "duplicate provider event skipped")
		return nil
	}

	// The claim is released on error and on panic, so the redelivery is
	// processed again even when ctx has already expired.
	processed := false
	defer func() {
		if !processed {
			p.settleClaim(ctx, log, meta.ID, false)
		}
	}()

	if err := p.dispatch(ctx, log, event); err != nil {
		return err
	}
	processed = true
	p.settleClaim(ctx, log, meta.ID, true)
	return nil
}

// settleClaim completes or releases an event claim on a context detached from
// the request, which may already be canceled or past its deadline.
func (p *Processor) settleClaim(ctx context.Context, log *slog.Logger, eventID string, done bool) {
	if p.dedup == nil || eventID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.claimTimeout)
	defer cancel()

	settle, action := p.dedup.Release, "release"
	if done {
		settle, action = p.dedup.Complete, "complete"
	}
	if err := settle(ctx, eventID); err != nil {
		log.WarnContext(ctx, "failed to settle event claim", slog.String("action", action), logger.Error(err))
	}
}

func (p *Processor) dispatch(ctx context.Context, log *slog.Logger, event ProviderEvent) error {
	switch ev := event.(type) {
	case CheckoutCompleted:
		return p.handleCheckoutCompleted(ctx, log, ev)
	case InvoiceSucceeded:
		return p.handleInvoiceSucceeded(ctx, log, ev)
	case InvoiceFailed:
		log.InfoContext(ctx, "invoice payment failed, no action taken", referenceAttr(ev.Reference))
		return nil
	case SubscriptionDeleted:
		p.handleSubscriptionDeleted(ctx, log, ev)
		return nil
	default:
		log.WarnContext(ctx, "unhandled provider event", slog.String("type", fmt.Sprintf("%T", event)))
		return nil
	}
}

// claim reports whether processing should go ahead. A deduplicator outage
// does not stop processing; the ledger's unique reference still applies.
func (p *Processor) claim(ctx context.Context, log *slog.Logger, eventID string) bool {
	if p.dedup == nil || eventID == "" {
		return true
	}
	ok, err := p.dedup.Claim(ctx, eventID)
	if err != nil {
		log.WarnContext(ctx, "event deduplication unavailable", logger.Error(err))
		return true
	}
	return ok
}

func (p *Processor) handleCheckoutCompleted(ctx context.Context, log *slog.Logger, ev CheckoutCompleted) error {
	if ev.UserID == uuid.Nil {
		log.WarnContext(ctx, "checkout completed without a user id, ignoring")
		return nil
	}

	at := p.now()
	if ev.ConfirmedAt != nil {
		at = ev.ConfirmedAt.UTC()
	}

	if err := p.confirmer.Confirm(ctx, ev.UserID, at); err != nil {
		log.ErrorContext(ctx, "failed to confirm user payment", logger.UserID(ev.UserID), logger.Error(err))
		return fmt.Errorf("failed to confirm user payment: %w", err)
	}

	log.InfoContext(ctx, "user payment confirmed", logger.UserID(ev.UserID))
	return nil
}

func (p *Processor) handleInvoiceSucceeded(ctx context.Context, log *slog.Logger, ev InvoiceSucceeded) error {
	now := p.now()

	periodStart := now
	if ev.PeriodStart != nil {
		periodStart = ev.PeriodStart.UTC()
	}
	periodEnd := periodStart.Add(p.defaultPeriod(ev.PriceID))
	if ev.PeriodEnd != nil {
		periodEnd = ev.PeriodEnd.UTC()
	}
	paidAt := now
	if ev.PaidAt != nil {
		paidAt = ev.PaidAt.UTC()
	}

	var subscriptionID *uuid.UUID
	if ev.ProfessionalID == uuid.Nil {
		log.WarnContext(ctx, "invoice without a professional id, recording unlinked payment",
			slog.String("raw_professional_id", ev.RawProfessionalID))
	} else {
		subscriptionID = p.ensureActiveSubscription(ctx, log, ev.ProfessionalID, ev.Amount, periodStart, periodEnd)
	}

	payment := &Payment{
		ID:             uuid.New(),
		ProfessionalID: ev.ProfessionalID,
		SubscriptionID: subscriptionID,
		Type:           PaymentTypeSubscription,
		Amount:         ev.Amount,
		PaidAt:         paidAt,
		Method:         ev.Method,
		Notes:          p.notes(ev.Reference),
		Reference:      optional(ev.Reference),
		CreatedAt:      now,
	}
	if payment.Method == "" {
		payment.Method = "unknown"
	}

	if err := p.ledger.Create(ctx, payment); err != nil {
		if errors.Is(err, ErrDuplicatePayment) {
			log.InfoContext(ctx, "payment already recorded", referenceAttr(ev.Reference))
			return nil
		}
		log.ErrorContext(ctx, "failed to record payment",
			slog.Int64("amount", ev.Amount),
			referenceAttr(ev.Reference),
			logger.Error(err),
		)
		return fmt.Errorf("failed to record payment: %w", err)
	}

	attrs := []any{logger.PaymentID(payment.ID), slog.Int64("amount", payment.Amount)}
	if subscriptionID != nil {
		attrs = append(attrs, logger.SubscriptionID(*subscriptionID))
	}
	log.InfoContext(ctx, "payment recorded", attrs...)
	return nil
}

// ensureActiveSubscription creates the subscription or, when one exists, renews
// it for the paid period. It returns nil when neither step succeeds.
func (p *Processor) ensureActiveSubscription(ctx context.Context, log *slog.Logger, professionalID uuid.UUID, price int64, start, end time.Time) *uuid.UUID {
	created, err := p.lifecycle.CreateSubscription(ctx, subscription.CreateParams{
		ProfessionalID: professionalID,
		Price:          price,
		StartDate:      start,
		EndDate:        end,
	})
	if err == nil {
		return &created.ID
	}
	if !errors.Is(err, subscription.ErrSubscriptionAlreadyExists) {
		log.WarnContext(ctx, "failed to create subscription for paid invoice", logger.Error(err))
		return nil
	}

	renewed, err := p.lifecycle.RenewSubscription(ctx, subscription.RenewParams{
		ProfessionalID: professionalID,
		StartDate:      start,
		EndDate:        end,
		Price:          &price,
	})
	if err != nil {
		log.WarnContext(ctx, "failed to renew subscription for paid invoice",
			slog.Time("period_start", start),
			slog.Time("period_end", end),
			logger.Error(err),
		)
		return nil
	}
	return &renewed.ID
}

func (p *Processor) handleSubscriptionDeleted(ctx context.Context, log *slog.Logger, ev SubscriptionDeleted) {
	if _, err := p.lifecycle.CancelSubscription(ctx, ev.ProfessionalID); err != nil {
		log.WarnContext(ctx, "failed to cancel subscription", referenceAttr(ev.Reference), logger.Error(err))
		return
	}
	log.InfoContext(ctx, "subscription canceled by provider", referenceAttr(ev.Reference))
}

func (p *Processor) defaultPeriod(priceID string) time.Duration {
	if p.catalog != nil && priceID != "" {
		if plan, err := p.catalog.PlanByPriceID(priceID); err == nil {
			return plan.Period()
		}
	}
	return DefaultPeriodDays * 24 * time.Hour
}

func (p *Processor) notes(reference string) *string {
	if reference == "" {
		return nil
	}
	n := p.provider + " reference " + reference
	return &n
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func referenceAttr(ref string) slog.Attr {
	return slog.String("reference", ref)
}
