package billing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/clinicflow/practice/pkg/logger"
)

// BreakerConfig tunes the circuit breaker around outbound provider calls.
type BreakerConfig struct {
	MaxRequests      uint32        `env:"BILLING_BREAKER_MAX_REQUESTS" envDefault:"1"`
	Interval         time.Duration `env:"BILLING_BREAKER_INTERVAL" envDefault:"1m"`
	Timeout          time.Duration `env:"BILLING_BREAKER_TIMEOUT" envDefault:"30s"`
	FailureThreshold uint32        `env:"BILLING_BREAKER_FAILURE_THRESHOLD" envDefault:"5"`
}

// BreakerProvider guards checkout creation with a circuit breaker. While the
// breaker is open, calls fail fast with ErrProviderUnavailable.
// Webhook verification is local and passes straight through.
type BreakerProvider struct {
	next PaymentProvider
	cb   *gobreaker.CircuitBreaker[*CheckoutSession]
}

// NewBreakerProvider wraps next. A nil log discards state change messages.
func NewBreakerProvider(next PaymentProvider, cfg BreakerConfig, log *slog.Logger) *BreakerProvider {
	if next == nil {
		panic("billing: PaymentProvider is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	settings := gobreaker.Settings{
		Name:        next.Name() + ":checkout",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations say nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				logger.Component("billing"),
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &BreakerProvider{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[*CheckoutSession](settings),
	}
}

func (b *BreakerProvider) Name() string { return b.next.Name() }

func (b *BreakerProvider) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	session, err := b.cb.Execute(func() (*CheckoutSession, error) {
		return b.next.CreateCheckoutSession(ctx, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrProviderUnavailable, err)
	}
	return session, err
}

func (b *BreakerProvider) VerifyAndNormalizeEvent(ctx context.Context, payload []byte, signature string) (ProviderEvent, error) {
	return b.next.VerifyAndNormalizeEvent(ctx, payload, signature)
}

// State reports the breaker state, for readiness probes.
func (b *BreakerProvider) State() gobreaker.State { return b.cb.State() }
