package statestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/infrastructure/metrics"
)

// DefaultTTL applies when a Store is built without an explicit TTL
const DefaultTTL = time.Hour

// Well-known per-call keys
const (
	KeyStatus         = "status"
	KeyCallResults    = "call_results"
	KeyOverallSummary = "overall_summary"
	KeyStatusReport   = "status_report"
	KeyMinutes        = "mom"
	KeyEgress         = "egress"
	KeyPhase          = "phase"
	KeyRoomEvents     = "room_events"
)

// Backend is the raw key-value store behind a Store
type Backend interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, key string) error
}

// Store namespaces JSON values by call ID. Failures are logged and counted,
// never returned, so a broken backend cannot abort a call.
type Store struct {
	backend Backend
	ttl     time.Duration
	logger  *zap.Logger
}

// New creates a state store. ttl <= 0 selects DefaultTTL.
func New(backend Backend, ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, ttl: ttl, logger: logger}
}

// Key builds the namespaced backend key for a call
func Key(callID uuid.UUID, key string) string {
	return fmt.Sprintf("call:%s:%s", callID, key)
}

func ProcessedResponseKey(name string) string {
	return "processed_response:" + name
}

func BlockerKey(id string) string {
	return "blocker:" + id
}

func DelayKey(id string) string {
	return "delay:" + id
}

func MissingDeveloperKey(name string) string {
	return "missing_developer:" + strings.ToLower(strings.TrimSpace(name))
}

// Put stores value under the call namespace with the default TTL
func (s *Store) Put(ctx context.Context, callID uuid.UUID, key string, value any) bool {
	return s.PutTTL(ctx, callID, key, value, s.ttl)
}

// PutTTL stores value with an explicit TTL and reports whether it was written
func (s *Store) PutTTL(ctx context.Context, callID uuid.UUID, key string, value any, ttl time.Duration) bool {
	if s == nil || s.backend == nil {
		return false
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.fail("encode", callID, key, err)
		return false
	}
	if err := s.backend.Set(ctx, Key(callID, key), data, ttl); err != nil {
		s.fail("set", callID, key, err)
		return false
	}
	return true
}

// Get decodes the stored value into dest. It returns false when the key is
// absent, expired or unreadable.
func (s *Store) Get(ctx context.Context, callID uuid.UUID, key string, dest any) bool {
	raw, ok := s.GetRaw(ctx, callID, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		s.fail("decode", callID, key, err)
		return false
	}
	return true
}

// GetRaw returns the stored JSON document
func (s *Store) GetRaw(ctx context.Context, callID uuid.UUID, key string) (json.RawMessage, bool) {
	if s == nil || s.backend == nil {
		return nil, false
	}
	data, ok, err := s.backend.Get(ctx, Key(callID, key))
	if err != nil {
		s.fail("get", callID, key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return json.RawMessage(data), true
}

func (s *Store) Delete(ctx context.Context, callID uuid.UUID, key string) {
	if s == nil || s.backend == nil {
		return
	}
	if err := s.backend.Delete(ctx, Key(callID, key)); err != nil {
		s.fail("delete", callID, key, err)
	}
}

func (s *Store) fail(op string, callID uuid.UUID, key string, err error) {
	metrics.StateError(op)
	s.logger.Warn("⚠️ State store operation failed",
		zap.String("op", op),
		zap.String("call_id", callID.String()),
		zap.String("key", key),
		zap.Error(err),
	)
}
