package api

import "time"

// Config holds HTTP surface settings.
type Config struct {
	CORSOrigins      []string      `env:"API_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RequestTimeout   time.Duration `env:"API_REQUEST_TIMEOUT" envDefault:"30s"`
	MaxBodyBytes     int64         `env:"API_MAX_BODY_BYTES" envDefault:"1048576"`
	ReadinessTimeout time.Duration `env:"API_READINESS_TIMEOUT" envDefault:"3s"`

	// Webhook deliveries are limited per client address.
	WebhookRPS     float64       `env:"API_WEBHOOK_RPS" envDefault:"20"`
	WebhookBurst   int           `env:"API_WEBHOOK_BURST" envDefault:"40"`
	WebhookIdleTTL time.Duration `env:"API_WEBHOOK_LIMITER_IDLE_TTL" envDefault:"10m"`
}

func (c Config) withDefaults() Config {
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.ReadinessTimeout <= 0 {
		c.ReadinessTimeout = 3 * time.Second
	}
	if c.WebhookRPS <= 0 {
		c.WebhookRPS = 20
	}
	if c.WebhookBurst <= 0 {
		c.WebhookBurst = 40
	}
	return c
}
