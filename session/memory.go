package session

import (
	"context"
	"sync"
)

// InMemoryStore is a Store that lives for the process only. It backs tests
// and cookie-mode deployments, where tokens never leave the auth service.
type InMemoryStore struct {
	mu      sync.RWMutex
	session *Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

var _ Store = (*InMemoryStore)(nil)

func (m *InMemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.session = &cp
	return nil
}

func (m *InMemoryStore) Load(_ context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	cp := *m.session
	return &cp, nil
}

func (m *InMemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}
