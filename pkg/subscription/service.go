package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/clinicflow/practice/pkg/logger"
)

// CreateParams describes a brand new billing relationship.
type CreateParams struct {
	ProfessionalID uuid.UUID
	Price          int64
	StartDate      time.Time
	EndDate        time.Time
}

// RenewParams describes the next billing window for an existing subscription.
// A nil Price keeps the stored price.
type RenewParams struct {
	ProfessionalID uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	Price          *int64
}

// StatusReport combines the stored subscription with its tier at CheckedAt.
type StatusReport struct {
	Subscription  *Subscription
	Tier          AccessTier
	CheckedAt     time.Time
	GraceEndsAt   time.Time
	DaysRemaining int
}

// Service owns every mutation of subscription records and the access checks
// derived from them. No other component writes subscriptions.
type Service struct {
	store    Store
	resolver Resolver
	now      func() time.Time
	log      *slog.Logger
}

// NewService creates a Service backed by store.
// Panics if store is nil to fail fast during initialization.
func NewService(store Store, opts ...ServiceOption) *Service {
	if store == nil {
		panic("subscription: Store is required")
	}

	s := &Service{
		store:    store,
		resolver: NewResolver(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CreateSubscription starts an active subscription for a professional without
// an active one. A canceled, expired or pending record is reactivated in place
// with the new window and price, so the professional keeps a single identity.
func (s *Service) CreateSubscription(ctx context.Context, p CreateParams) (*Subscription, error) {
	if p.ProfessionalID == uuid.Nil {
		return nil, ErrMissingProfessionalID
	}
	if p.Price < 0 {
		return nil, ErrNegativePrice
	}
	if !p.EndDate.After(p.StartDate) {
		return nil, ErrInvalidPeriod
	}

	existing, err := s.store.FindActiveByProfessional(ctx, p.ProfessionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if existing != nil {
		if existing.IsActive() {
			return nil, ErrSubscriptionAlreadyExists
		}
		return s.reactivate(ctx, existing, p)
	}

	now := s.now()
	sub := &Subscription{
		ID:             uuid.New(),
		ProfessionalID: p.ProfessionalID,
		Price:          p.Price,
		Status:         StatusActive,
		StartDate:      p.StartDate.UTC(),
		EndDate:        p.EndDate.UTC(),
		CreatedAt:      now,
	}

	// The store reports a concurrent insert for the same professional as
	// ErrSubscriptionAlreadyExists, which callers treat as recoverable.
	if err := s.store.Create(ctx, sub); err != nil {
		if errors.Is(err, ErrSubscriptionAlreadyExists) {
			return nil, ErrSubscriptionAlreadyExists
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.log.InfoContext(ctx, "subscription created",
		logger.Component("subscription"),
		logger.ProfessionalID(sub.ProfessionalID),
		logger.SubscriptionID(sub.ID),
		slog.Time("end_date", sub.EndDate),
	)

	return sub, nil
}

func (s *Service) reactivate(ctx context.Context, existing *Subscription, p CreateParams) (*Subscription, error) {
	updated := existing.clone()
	updated.Status = StatusActive
	updated.Price = p.Price
	updated.StartDate = p.StartDate.UTC()
	updated.EndDate = p.EndDate.UTC()
	updated.touch(s.now())

	if err := s.store.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save reactivated subscription: %w", err)
	}

	s.log.InfoContext(ctx, "subscription reactivated",
		logger.Component("subscription"),
		logger.ProfessionalID(updated.ProfessionalID),
		logger.SubscriptionID(updated.ID),
		slog.String("previous_status", string(existing.Status)),
		slog.Time("end_date", updated.EndDate),
	)

	return updated, nil
}

// RenewSubscription moves the existing subscription to the next billing window.
// The new window must be well formed and must not start before the current one ends.
func (s *Service) RenewSubscription(ctx context.Context, p RenewParams) (*Subscription, error) {
	sub, err := s.lookup(ctx, p.ProfessionalID)
	if err != nil {
		return nil, err
	}

	if !p.EndDate.After(p.StartDate) {
		return nil, ErrRenewalPeriodInvalid
	}
	if p.StartDate.Before(sub.EndDate) {
		return nil, ErrRenewalPeriodInvalid
	}
	if p.Price != nil && *p.Price < 0 {
		return nil, ErrNegativePrice
	}

	// A paid renewal reactivates the same identity whatever its status was.
	updated := sub.clone()
	updated.Status = StatusActive
	updated.StartDate = p.StartDate.UTC()
	updated.EndDate = p.EndDate.UTC()
	if p.Price != nil {
		updated.Price = *p.Price
	}
	updated.touch(s.now())

	if err := s.store.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save renewed subscription: %w", err)
	}

	s.log.InfoContext(ctx, "subscription renewed",
		logger.Component("subscription"),
		logger.ProfessionalID(updated.ProfessionalID),
		logger.SubscriptionID(updated.ID),
		slog.Time("start_date", updated.StartDate),
		slog.Time("end_date", updated.EndDate),
	)

	return updated, nil
}

// CancelSubscription marks the professional's subscription canceled.
// Canceling an already canceled subscription succeeds without changing access.
func (s *Service) CancelSubscription(ctx context.Context, professionalID uuid.UUID) (*Subscription, error) {
	sub, err := s.lookup(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	if sub.IsCanceled() {
		return sub, nil
	}

	updated := sub.clone()
	updated.Status = StatusCanceled
	updated.touch(s.now())

	if err := s.store.Save(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save canceled subscription: %w", err)
	}

	s.log.InfoContext(ctx, "subscription canceled",
		logger.Component("subscription"),
		logger.ProfessionalID(updated.ProfessionalID),
		logger.SubscriptionID(updated.ID),
		slog.String("previous_status", string(sub.Status)),
	)

	return updated, nil
}

// CheckStatus reports the stored subscription together with its current tier.
func (s *Service) CheckStatus(ctx context.Context, professionalID uuid.UUID) (*StatusReport, error) {
	sub, err := s.lookup(ctx, professionalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	return &StatusReport{
		Subscription:  sub,
		Tier:          s.resolver.Resolve(sub, now),
		CheckedAt:     now,
		GraceEndsAt:   sub.GraceLimit(s.resolver.GracePeriod()),
		DaysRemaining: sub.DaysRemainingAt(now),
	}, nil
}

// EnforceAccess decides whether the professional may perform op right now.
// Returns ErrSubscriptionNotFound, ErrReadOnly or ErrAccessBlocked on denial.
func (s *Service) EnforceAccess(ctx context.Context, professionalID uuid.UUID, op OperationKind) error {
	_, err := s.CheckAccess(ctx, professionalID, op)
	return err
}

// CheckAccess is EnforceAccess that also reports the resolved tier.
// The tier is meaningful only when the subscription exists.
func (s *Service) CheckAccess(ctx context.Context, professionalID uuid.UUID, op OperationKind) (AccessTier, error) {
	sub, err := s.lookup(ctx, professionalID)
	if err != nil {
		return TierBlocked, err
	}

	tier := s.resolver.Resolve(sub, s.now())
	if err := tier.Allows(op); err != nil {
		s.log.DebugContext(ctx, "access denied",
			logger.Component("subscription"),
			logger.ProfessionalID(professionalID),
			slog.String("tier", string(tier)),
			slog.String("operation", string(op)),
		)
		return tier, err
	}

	return tier, nil
}

func (s *Service) lookup(ctx context.Context, professionalID uuid.UUID) (*Subscription, error) {
	if professionalID == uuid.Nil {
		return nil, ErrMissingProfessionalID
	}

	sub, err := s.store.FindActiveByProfessional(ctx, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up subscription: %w", err)
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}

	return sub, nil
}
