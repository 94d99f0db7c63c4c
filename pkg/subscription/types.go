package subscription

import "time"

// Status represents the stored billing state of a subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusExpired  Status = "expired"
	StatusCanceled Status = "canceled"
	StatusPending  Status = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusCanceled, StatusPending:
		return true
	}
	return false
}

// AccessTier is the operational permission level derived from a subscription
// snapshot at a point in time. It is never persisted.
type AccessTier string

const (
	TierActive        AccessTier = "active"
	TierGraceReadOnly AccessTier = "grace_read_only"
	TierBlocked       AccessTier = "blocked"
)

// OperationKind classifies a guarded operation for access enforcement.
type OperationKind string

const (
	OperationRead  OperationKind = "read"
	OperationWrite OperationKind = "write"
)

// DefaultGracePeriod is how long read access survives after the billing window ends.
const DefaultGracePeriod = 7 * 24 * time.Hour
