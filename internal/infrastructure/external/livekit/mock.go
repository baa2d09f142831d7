package livekit

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

// Script maps a participant to the answers they give, in order. Participants
// without answers left stay silent.
type Script map[string][]string

func (s Script) lookup(name string) string {
	for k := range s {
		if strings.EqualFold(strings.TrimSpace(k), strings.TrimSpace(name)) {
			return k
		}
	}
	return ""
}

// MockSessionFactory hands out scripted sessions for dry runs
type MockSessionFactory struct {
	script Script
	logger *zap.Logger
}

func NewMockSessionFactory(script Script, logger *zap.Logger) *MockSessionFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MockSessionFactory{script: script, logger: logger}
}

func (f *MockSessionFactory) Open(_ context.Context, call *entities.Call) (services.MeetingSession, error) {
	remaining := Script{}
	for k, v := range f.script {
		remaining[k] = append([]string(nil), v...)
	}
	f.logger.Info("🚧 Using scripted meeting session", zap.String("room", call.RoomName))
	return &MockSession{
		script:   remaining,
		activity: make(chan entities.VoiceActivity, 64),
		logger:   f.logger,
	}, nil
}

// MockSession answers capture windows from a script. The "audio" it returns
// is the answer text, to be paired with a passthrough transcriber.
type MockSession struct {
	mu       sync.Mutex
	script   Script
	current  string
	activity chan entities.VoiceActivity
	spoken   []string
	closed   bool
	logger   *zap.Logger
}

func (m *MockSession) Speak(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spoken = append(m.spoken, text)
	m.logger.Info("🗣️ "+text, callcontext.Fields(ctx)...)
	return ctx.Err()
}

// StartCapture plays the next scripted answer of the participant in ctx
func (m *MockSession) StartCapture(ctx context.Context) error {
	name, _ := callcontext.GetParticipant(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = ""
	key := m.script.lookup(name)
	if key == "" || len(m.script[key]) == 0 {
		return nil
	}
	m.current = m.script[key][0]
	m.script[key] = m.script[key][1:]
	if strings.TrimSpace(m.current) == "" || m.closed {
		return nil
	}

	now := time.Now()
	m.activity <- entities.VoiceActivity{Kind: entities.VoiceSpeaking, Speaker: name, At: now}
	m.activity <- entities.VoiceActivity{Kind: entities.VoiceEndOfTurn, Speaker: name, At: now}
	return nil
}

func (m *MockSession) StopCapture(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	answer := m.current
	m.current = ""
	if strings.TrimSpace(answer) == "" {
		return nil, nil
	}
	return []byte(answer), nil
}

func (m *MockSession) Activity() <-chan entities.VoiceActivity {
	return m.activity
}

func (m *MockSession) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.activity)
	}
	return nil
}

// Spoken returns every line the bot said
func (m *MockSession) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.spoken...)
}
