package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/johnquangdev/standup-assistant/internal/domain/services"
)

// FakeTickets records issue tracker calls
type FakeTickets struct {
	mu          sync.Mutex
	Transitions map[string]string
	Comments    map[string][]string
	StatusErr   error
	CommentErr  error
}

func NewFakeTickets() *FakeTickets {
	return &FakeTickets{
		Transitions: map[string]string{},
		Comments:    map[string][]string{},
	}
}

func (f *FakeTickets) UpdateStatus(_ context.Context, itemID, transitionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StatusErr != nil {
		return f.StatusErr
	}
	f.Transitions[itemID] = transitionID
	return nil
}

func (f *FakeTickets) AddComment(_ context.Context, itemID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CommentErr != nil {
		return f.CommentErr
	}
	f.Comments[itemID] = append(f.Comments[itemID], text)
	return nil
}

// FakeNotifier records sent email
type FakeNotifier struct {
	mu   sync.Mutex
	Sent []services.Email
	Err  error
}

func (f *FakeNotifier) Send(_ context.Context, email services.Email) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.Sent = append(f.Sent, email)
	return nil
}

func (f *FakeNotifier) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sent)
}

// MemoryArtifacts is an in-memory object store
type MemoryArtifacts struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Types   map[string]string
	PutErr  error
}

func NewMemoryArtifacts() *MemoryArtifacts {
	return &MemoryArtifacts{Objects: map[string][]byte{}, Types: map[string]string{}}
}

func (m *MemoryArtifacts) Put(_ context.Context, key, contentType string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.Objects[key] = append([]byte(nil), data...)
	m.Types[key] = contentType
	return nil
}

func (m *MemoryArtifacts) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (m *MemoryArtifacts) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "http://artifacts.local/" + key, nil
}

// Keys lists stored object keys
func (m *MemoryArtifacts) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	return keys
}
