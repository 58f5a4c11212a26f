package main

import (
	"context"
	"sync"
)

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, session Session) (Session, error) {
	if session.ID == "" || session.Board.IsZero() {
		return Session{}, ErrPersistence
	}
	m.mu.Lock()
	m.sessions[session.ID] = session.Clone()
	m.mu.Unlock()
	return session.Clone(), nil
}

func (m *MemoryStore) Close() error {
	return nil
}
