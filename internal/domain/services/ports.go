package services

import (
	"context"
	"time"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/pkg/ai"
)

// LanguageModel completes chat prompts
type LanguageModel interface {
	Complete(ctx context.Context, messages []ai.Message, opts ai.CompletionOptions) (string, error)
}

// SpeechService synthesizes and recognizes speech without ever failing
type SpeechService interface {
	TextToSpeech(ctx context.Context, text string, voice ai.VoiceParams) []byte
	SpeechToText(ctx context.Context, audio []byte, cfg ai.TranscribeConfig) ai.Transcript
}

// MeetingSession is the bot's presence in a live call
type MeetingSession interface {
	Speak(ctx context.Context, text string) error
	StartCapture(ctx context.Context) error
	// StopCapture returns the captured audio, nil when nothing was recorded
	StopCapture(ctx context.Context) ([]byte, error)
	// Activity streams voice activity while capturing; nil when unsupported
	Activity() <-chan entities.VoiceActivity
	// Close releases the session and tolerates repeated calls
	Close(ctx context.Context) error
}

// SessionFactory opens a meeting session for a call
type SessionFactory interface {
	Open(ctx context.Context, call *entities.Call) (MeetingSession, error)
}

// TicketSystem updates the issue tracker
type TicketSystem interface {
	UpdateStatus(ctx context.Context, itemID, transitionID string) error
	AddComment(ctx context.Context, itemID, text string) error
}

// Email is one outbound notification
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Notifier sends email notifications
type Notifier interface {
	Send(ctx context.Context, email Email) error
}

// ArtifactStore keeps call artifacts in object storage
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
