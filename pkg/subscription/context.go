package subscription

import "context"

type tierCtxKey struct{}

// SetTierToContext stores the tier resolved by RequireAccess for downstream handlers.
func SetTierToContext(ctx context.Context, tier AccessTier) context.Context {
	return context.WithValue(ctx, tierCtxKey{}, tier)
}

// GetTierFromContext returns the tier stored by RequireAccess.
func GetTierFromContext(ctx context.Context) (AccessTier, bool) {
	tier, ok := ctx.Value(tierCtxKey{}).(AccessTier)
	return tier, ok
}

// IsReadOnly reports whether the request runs in the post-expiry grace window,
// so handlers can show a renewal banner without a second lookup.
func IsReadOnly(ctx context.Context) bool {
	tier, ok := GetTierFromContext(ctx)
	return ok && tier == TierGraceReadOnly
}
