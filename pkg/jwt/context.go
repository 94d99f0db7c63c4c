package jwt

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type claimsCtxKey struct{}

func SetClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey{}, claims)
}

func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsCtxKey{}).(*Claims)
	return claims, ok && claims != nil
}

// ProfessionalIDFromRequest returns the professional the authenticated caller acts for.
// It has the shape subscription.RequireAccess expects.
func ProfessionalIDFromRequest(r *http.Request) (uuid.UUID, error) {
	claims, ok := GetClaims(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	return claims.ProfessionalID, nil
}
