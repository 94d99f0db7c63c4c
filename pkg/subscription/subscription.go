package subscription

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is one professional's recurring billing relationship.
// Renewals mutate the record in place, so ID stays stable across billing cycles.
type Subscription struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	Price          int64 // current period amount in minor units
	Status         Status
	StartDate      time.Time // inclusive
	EndDate        time.Time // always after StartDate
	CreatedAt      time.Time
	UpdatedAt      *time.Time // nil until the first mutation
}

func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

func (s *Subscription) IsCanceled() bool {
	return s.Status == StatusCanceled
}

// GraceLimit returns the last instant of the read-only grace window.
func (s *Subscription) GraceLimit(grace time.Duration) time.Time {
	return s.EndDate.Add(grace)
}

// DaysRemainingAt returns the number of whole days left in the billing window at now.
// Returns 0 once the window has ended.
func (s *Subscription) DaysRemainingAt(now time.Time) int {
	remaining := s.EndDate.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Hours() / 24)
}

func (s *Subscription) touch(now time.Time) {
	s.UpdatedAt = &now
}

// clone returns a copy that shares no pointers with s.
func (s *Subscription) clone() *Subscription {
	if s == nil {
		return nil
	}
	c := *s
	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}
