package billing

import (
	"log/slog"
	"time"
)

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithProviderName sets the provider label used in logs and payment notes.
func WithProviderName(name string) ProcessorOption {
	return func(p *Processor) {
		if name != "" {
			p.provider = name
		}
	}
}

// WithDeduplicator skips deliveries whose event id was already claimed.
func WithDeduplicator(d Deduplicator) ProcessorOption {
	return func(p *Processor) {
		p.dedup = d
	}
}

// WithCatalog lets the plan's period length replace the default thirty days
// when an invoice omits its period end.
func WithCatalog(c *Catalog) ProcessorOption {
	return func(p *Processor) {
		p.catalog = c
	}
}

func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

func WithProcessorLogger(l *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}
