package subscription

import (
	"log/slog"
	"time"
)

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithClock replaces the time source, mainly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger used for lifecycle records.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithResolver replaces the default seven day grace resolver.
// Use NewResolver(WithGracePeriod(...)) for plan or practice specific windows.
func WithResolver(r Resolver) ServiceOption {
	return func(s *Service) {
		if r.grace > 0 {
			s.resolver = r
		}
	}
}
