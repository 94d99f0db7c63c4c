package billing

import "errors"

var (
	ErrDuplicatePayment           = errors.New("payment with this provider reference already recorded")
	ErrPlanNotFound               = errors.New("billing plan not found")
	ErrInvalidPlanCatalog         = errors.New("invalid billing plan catalog")
	ErrWebhookVerificationFailed  = errors.New("webhook signature verification failed")
	ErrMalformedEvent             = errors.New("malformed provider event")
	ErrProviderUnavailable        = errors.New("payment provider unavailable")
	ErrCheckoutFailed             = errors.New("failed to create checkout session")
	ErrMissingPaddleAPIKey        = errors.New("paddle API key is required")
	ErrMissingPaddleWebhookSecret = errors.New("paddle webhook secret is required")
	ErrInvalidPaddleEnvironment   = errors.New("invalid paddle environment")
)
