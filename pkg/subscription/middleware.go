package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// AccessChecker is satisfied by *Service.
type AccessChecker interface {
	CheckAccess(ctx context.Context, professionalID uuid.UUID, op OperationKind) (AccessTier, error)
}

// ProfessionalIDFunc resolves the acting professional from an authenticated request.
type ProfessionalIDFunc func(r *http.Request) (uuid.UUID, error)

// OperationForMethod maps an HTTP method to the operation kind it performs.
// Safe methods read, everything else writes.
func OperationForMethod(method string) OperationKind {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return OperationRead
	default:
		return OperationWrite
	}
}

// RequireAccess returns middleware that gates every request on the professional's
// subscription. Denied requests get a JSON error body and never reach next.
func RequireAccess(checker AccessChecker, professionalID ProfessionalIDFunc) func(http.Handler) http.Handler {
	if checker == nil {
		panic("subscription: AccessChecker is required")
	}
	if professionalID == nil {
		panic("subscription: ProfessionalIDFunc is required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := professionalID(r)
			if err != nil {
				writeAccessError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			tier, err := checker.CheckAccess(r.Context(), id, OperationForMethod(r.Method))
			if err != nil {
				status, code := accessErrorStatus(err)
				writeAccessError(w, status, code, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetTierToContext(r.Context(), tier)))
		})
	}
}

func accessErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSubscriptionNotFound):
		return http.StatusNotFound, "subscription_not_found"
	case errors.Is(err, ErrReadOnly):
		return http.StatusForbidden, "subscription_read_only"
	case errors.Is(err, ErrAccessBlocked):
		return http.StatusForbidden, "subscription_blocked"
	case errors.Is(err, ErrMissingProfessionalID):
		return http.StatusUnauthorized, "unauthorized"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

type accessErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeAccessError(w http.ResponseWriter, status int, code string, err error) {
	var body accessErrorBody
	body.Error.Code = code
	body.Error.Message = http.StatusText(status)
	if status < http.StatusInternalServerError {
		body.Error.Message = err.Error()
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
