package subscription

import "time"

// Resolver converts a subscription snapshot into an access tier.
// The zero value is not usable; construct with NewResolver.
type Resolver struct {
	grace time.Duration
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithGracePeriod overrides the read-only window that follows EndDate.
// Non-positive durations are ignored.
func WithGracePeriod(d time.Duration) ResolverOption {
	return func(r *Resolver) {
		if d > 0 {
			r.grace = d
		}
	}
}

// NewResolver returns a Resolver using DefaultGracePeriod unless overridden.
func NewResolver(opts ...ResolverOption) Resolver {
	r := Resolver{grace: DefaultGracePeriod}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// GracePeriod returns the configured grace window.
func (r Resolver) GracePeriod() time.Duration {
	return r.grace
}

// Resolve classifies sub at now. The checks run in a fixed order:
// non-active status, window not yet begun, inside the window, inside grace.
// A nil subscription resolves to TierBlocked; callers that need to tell
// "missing" apart must check for nil first and report ErrSubscriptionNotFound.
func (r Resolver) Resolve(sub *Subscription, now time.Time) AccessTier {
	if sub == nil {
		return TierBlocked
	}

	graceLimit := sub.GraceLimit(r.grace)

	switch {
	case !sub.IsActive():
		return TierBlocked
	case now.Before(sub.StartDate):
		return TierBlocked
	case !now.After(sub.EndDate):
		return TierActive
	case !now.After(graceLimit):
		return TierGraceReadOnly
	default:
		return TierBlocked
	}
}

// Resolve classifies sub at now with the default seven day grace period.
func Resolve(sub *Subscription, now time.Time) AccessTier {
	return NewResolver().Resolve(sub, now)
}

// Allows reports whether tier permits op, returning the access-denied kind otherwise.
func (t AccessTier) Allows(op OperationKind) error {
	switch t {
	case TierActive:
		return nil
	case TierGraceReadOnly:
		if op == OperationRead {
			return nil
		}
		return ErrReadOnly
	default:
		return ErrAccessBlocked
	}
}
