// Package subscription owns a professional's recurring billing relationship and
// decides what the professional may do with the practice right now.
//
// A professional has one logical Subscription. It is created active, moved to
// the next billing window in place by RenewSubscription and marked canceled by
// CancelSubscription. The record is never deleted, so its ID stays stable and
// payments can keep pointing at it across billing cycles.
//
// # Access tiers
//
// Resolve derives an AccessTier from a subscription snapshot and a clock:
//
//   - TierActive while the billing window is running (EndDate inclusive)
//   - TierGraceReadOnly for DefaultGracePeriod (seven days) after EndDate
//   - TierBlocked before StartDate, after the grace window, or whenever the
//     stored status is not active
//
// Tiers are computed on every call and never persisted.
//
// # Enforcement
//
// Service.EnforceAccess answers the question for a professional and an
// OperationKind. Reads pass in the grace window, writes fail with ErrReadOnly.
// RequireAccess wraps the same check as net/http middleware and derives the
// operation from the request method:
//
//	svc := subscription.NewService(subscription.NewPostgresStore(pool),
//		subscription.WithLogger(log),
//	)
//	r.Group(func(r chi.Router) {
//		r.Use(subscription.RequireAccess(svc, professionalFromToken))
//		r.Mount("/v1/practice", practiceRoutes)
//	})
//
// # Errors
//
// Callers branch with errors.Is on the sentinel errors in errors.go.
// ErrSubscriptionNotFound and ErrSubscriptionAlreadyExists are expected
// outcomes of lookups and creates, not failures of the store.
package subscription
