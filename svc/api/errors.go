package api

import (
	"errors"
	"net/http"

	"github.com/clinicflow/practice/pkg/billing"
	"github.com/clinicflow/practice/pkg/jwt"
	"github.com/clinicflow/practice/pkg/subscription"
)

var (
	ErrInvalidRequestBody = errors.New("invalid request body")
	ErrRequestTooLarge    = errors.New("request body too large")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrMissingDependency  = errors.New("api: required dependency is missing")
)

// errorMapping is checked in order with errors.Is; the first match wins.
var errorMapping = []struct {
	err    error
	status int
	code   string
}{
	{subscription.ErrSubscriptionNotFound, http.StatusNotFound, "subscription_not_found"},
	{subscription.ErrSubscriptionAlreadyExists, http.StatusConflict, "subscription_exists"},
	{subscription.ErrRenewalPeriodInvalid, http.StatusBadRequest, "renewal_period_invalid"},
	{subscription.ErrInvalidPeriod, http.StatusBadRequest, "invalid_period"},
	{subscription.ErrNegativePrice, http.StatusBadRequest, "invalid_price"},
	{subscription.ErrReadOnly, http.StatusForbidden, "subscription_read_only"},
	{subscription.ErrAccessBlocked, http.StatusForbidden, "subscription_blocked"},
	{subscription.ErrMissingProfessionalID, http.StatusUnauthorized, "unauthorized"},
	{billing.ErrPlanNotFound, http.StatusNotFound, "plan_not_found"},
	{billing.ErrWebhookVerificationFailed, http.StatusUnauthorized, "invalid_signature"},
	{billing.ErrMalformedEvent, http.StatusBadRequest, "malformed_event"},
	{billing.ErrProviderUnavailable, http.StatusServiceUnavailable, "provider_unavailable"},
	{billing.ErrCheckoutFailed, http.StatusBadGateway, "checkout_failed"},
	{jwt.ErrMissingToken, http.StatusUnauthorized, "unauthorized"},
	{ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
	{ErrRequestTooLarge, http.StatusRequestEntityTooLarge, "request_too_large"},
	{ErrInvalidRequestBody, http.StatusBadRequest, "invalid_request"},
}

// classify returns the HTTP status and error code for err.
func classify(err error) (int, string) {
	for _, m := range errorMapping {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal_error"
}
