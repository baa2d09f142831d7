package testutil

import (
	"testing"
	"time"

	"github.com/johnquangdev/standup-assistant/internal/infrastructure/cache"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
)

// NewStateStore returns a state store over a memory backend closed at test end
func NewStateStore(t testing.TB) (*statestore.Store, *cache.MemoryStore) {
	t.Helper()
	mem := cache.NewMemoryStore()
	t.Cleanup(func() { _ = mem.Close() })
	return statestore.New(mem, time.Hour, nil), mem
}
