package billing

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Ledger is the append-only store of payments.
type Ledger interface {
	// Create records p. Returns ErrDuplicatePayment when another payment
	// already carries the same non-nil Reference.
	Create(ctx context.Context, p *Payment) error

	// ListByProfessional returns the professional's payments, newest first.
	ListByProfessional(ctx context.Context, professionalID uuid.UUID) ([]Payment, error)
}

// MemoryLedger is an in-process Ledger for tests and development.
type MemoryLedger struct {
	mu       sync.RWMutex
	payments []Payment
	refs     map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{refs: make(map[string]struct{})}
}

func (l *MemoryLedger) Create(_ context.Context, p *Payment) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if p.Reference != nil {
		if _, ok := l.refs[*p.Reference]; ok {
			return ErrDuplicatePayment
		}
		l.refs[*p.Reference] = struct{}{}
	}

	l.payments = append(l.payments, *p)
	return nil
}

func (l *MemoryLedger) ListByProfessional(_ context.Context, professionalID uuid.UUID) ([]Payment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Payment
	for _, p := range l.payments {
		if p.ProfessionalID == professionalID {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b Payment) int {
		return b.PaidAt.Compare(a.PaidAt)
	})
	return out, nil
}

// All returns every recorded payment in insertion order.
func (l *MemoryLedger) All() []Payment {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.payments)
}
