package subscription

import "errors"

var (
	ErrSubscriptionNotFound      = errors.New("subscription not found")
	ErrSubscriptionAlreadyExists = errors.New("subscription already exists")
	ErrRenewalPeriodInvalid      = errors.New("subscription renewal period is invalid")
	ErrInvalidPeriod             = errors.New("subscription end date must be after start date")

	// Access-denied kinds returned by EnforceAccess.
	ErrReadOnly      = errors.New("subscription is in grace period: read-only access")
	ErrAccessBlocked = errors.New("subscription access blocked")

	ErrMissingProfessionalID = errors.New("professional ID is required")
	ErrNegativePrice         = errors.New("subscription price cannot be negative")
)

// IsAccessDenied reports whether err is one of the access-denied kinds.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrReadOnly) || errors.Is(err, ErrAccessBlocked)
}
