package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
)

// Turn is one scripted capture window
type Turn struct {
	Speaker string
	Text    string
	// Silent emits no voice activity and captures nothing
	Silent bool
	// Mumble emits speech activity but captures no audio
	Mumble bool
}

// FakeSession plays scripted turns: each StartCapture consumes the next one
type FakeSession struct {
	mu       sync.Mutex
	turns    []Turn
	current  *Turn
	activity chan entities.VoiceActivity
	Spoken   []string
	Closed   int
	// SpeakErrAt fails the nth Speak call (1-based); 0 disables
	SpeakErrAt int
	SpeakErr   error
	speaks     int
}

func NewFakeSession(turns ...Turn) *FakeSession {
	return &FakeSession{
		turns:    turns,
		activity: make(chan entities.VoiceActivity, 64),
		SpeakErr: errors.New("session dropped"),
	}
}

func (s *FakeSession) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speaks++
	if s.SpeakErrAt > 0 && s.speaks == s.SpeakErrAt {
		return s.SpeakErr
	}
	s.Spoken = append(s.Spoken, text)
	return ctx.Err()
}

func (s *FakeSession) StartCapture(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turn := Turn{Silent: true}
	if len(s.turns) > 0 {
		turn = s.turns[0]
		s.turns = s.turns[1:]
	}
	s.current = &turn
	if !turn.Silent {
		now := time.Now()
		s.activity <- entities.VoiceActivity{Kind: entities.VoiceSpeaking, Speaker: turn.Speaker, At: now}
		s.activity <- entities.VoiceActivity{Kind: entities.VoiceEndOfTurn, Speaker: turn.Speaker, At: now}
	}
	return nil
}

func (s *FakeSession) StopCapture(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turn := s.current
	s.current = nil
	if turn == nil || turn.Silent || turn.Mumble || turn.Text == "" {
		return nil, nil
	}
	return []byte(turn.Text), nil
}

func (s *FakeSession) Activity() <-chan entities.VoiceActivity {
	return s.activity
}

func (s *FakeSession) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed++
	return nil
}

// SpokenTexts returns a copy of everything spoken
func (s *FakeSession) SpokenTexts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.Spoken...)
}

// FakeSessionFactory hands out a fixed session
type FakeSessionFactory struct {
	Session services.MeetingSession
	Err     error
	Opened  int
}

func (f *FakeSessionFactory) Open(context.Context, *entities.Call) (services.MeetingSession, error) {
	f.Opened++
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Session, nil
}
