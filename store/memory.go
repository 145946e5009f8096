package store

import (
	"context"
	"sync"

	"github.com/Crzzy98/BTG"
)

// Memory is an in-process session.CredentialStore with the same
// contract as the durable store. It backs tests and hosts that keep
// credentials out of disk storage.
type Memory struct {
	mu    sync.Mutex
	creds *session.Credentials
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save implements session.CredentialStore.
func (m *Memory) Save(_ context.Context, creds session.Credentials) error {
	if err := creds.Validate(); err != nil {
		return session.WrapKind(err, session.KindStorage, "refusing to persist partial credentials")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	clone := creds
	m.creds = &clone
	return nil
}

// Load implements session.CredentialStore.
func (m *Memory) Load(context.Context) (*session.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.creds == nil {
		return nil, nil
	}
	clone := *m.creds
	return &clone, nil
}

// Clear implements session.CredentialStore.
func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds = nil
	return nil
}
