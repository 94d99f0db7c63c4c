package subscription

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and single-node development.
type MemoryStore struct {
	mu             sync.RWMutex
	byID           map[uuid.UUID]*Subscription
	byProfessional map[uuid.UUID]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:           make(map[uuid.UUID]*Subscription),
		byProfessional: make(map[uuid.UUID]uuid.UUID),
	}
}

func (m *MemoryStore) FindActiveByProfessional(_ context.Context, professionalID uuid.UUID) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byProfessional[professionalID]
	if !ok {
		return nil, nil
	}
	return m.byID[id].clone(), nil
}

func (m *MemoryStore) Create(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byProfessional[sub.ProfessionalID]; ok {
		return ErrSubscriptionAlreadyExists
	}
	if _, ok := m.byID[sub.ID]; ok {
		return ErrSubscriptionAlreadyExists
	}

	m.byID[sub.ID] = sub.clone()
	m.byProfessional[sub.ProfessionalID] = sub.ID
	return nil
}

func (m *MemoryStore) Save(_ context.Context, sub *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[sub.ID]; !ok {
		return ErrSubscriptionNotFound
	}

	m.byID[sub.ID] = sub.clone()
	return nil
}
