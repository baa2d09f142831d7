package livekit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	livekit "github.com/livekit/protocol/livekit"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	usecaseErrors "github.com/johnquangdev/standup-assistant/internal/usecase/errors"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/ai"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

// wordsPerSecond paces speech so capture does not start while the bot talks
const wordsPerSecond = 2.5

// SessionConfig tunes a live meeting session
type SessionConfig struct {
	SpeechTopic   string
	EndOfTurnGap  time.Duration
	CaptureWait   time.Duration
	PresignExpiry time.Duration
	Voice         ai.VoiceParams
	// PaceSpeech waits roughly as long as the spoken text takes to play
	PaceSpeech bool
}

// SpeechPacket is the data message carrying one spoken line
type SpeechPacket struct {
	Seq      int    `json:"seq"`
	Text     string `json:"text"`
	AudioURL string `json:"audio_url,omitempty"`
}

// publisher sends data packets into the room
type publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Disconnect()
}

// Session is the bot's presence in a LiveKit room
type Session struct {
	call      *entities.Call
	room      publisher
	recorder  Recorder
	artifacts services.ArtifactStore
	speech    services.SpeechService
	state     *statestore.Store
	cfg       SessionConfig
	speakers  *speakerTracker
	logger    *zap.Logger
	onClose   func(ctx context.Context)

	mu        sync.Mutex
	seq       int
	captures  int
	egressID  string
	captureAt string
	closed    bool
}

func newSession(
	call *entities.Call,
	room publisher,
	recorder Recorder,
	artifacts services.ArtifactStore,
	speech services.SpeechService,
	state *statestore.Store,
	cfg SessionConfig,
	logger *zap.Logger,
) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.EndOfTurnGap <= 0 {
		cfg.EndOfTurnGap = 4 * time.Second
	}
	if cfg.CaptureWait <= 0 {
		cfg.CaptureWait = 30 * time.Second
	}
	if cfg.PresignExpiry <= 0 {
		cfg.PresignExpiry = time.Hour
	}
	return &Session{
		call:      call,
		room:      room,
		recorder:  recorder,
		artifacts: artifacts,
		speech:    speech,
		state:     state,
		cfg:       cfg,
		speakers:  newSpeakerTracker(cfg.EndOfTurnGap),
		logger:    logger,
	}
}

func (s *Session) objectKey(kind string, n int, ext string) string {
	return fmt.Sprintf("calls/%s/%s/%s/%03d.%s", s.call.Team, s.call.ID, kind, n, ext)
}

// Speak synthesizes text, uploads the audio and announces it with a caption.
// Without audio the caption is still published.
func (s *Session) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return usecaseErrors.ErrSessionClosed
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	packet := SpeechPacket{Seq: seq, Text: text}
	if audio := s.speech.TextToSpeech(ctx, text, s.cfg.Voice); len(audio) > 0 && s.artifacts != nil {
		key := s.objectKey("speech", seq, "mp3")
		if err := s.artifacts.Put(ctx, key, "audio/mpeg", audio); err != nil {
			s.logger.Warn("⚠️ Failed to upload speech audio", zap.String("key", key), zap.Error(err))
		} else if url, err := s.artifacts.PresignedURL(ctx, key, s.cfg.PresignExpiry); err == nil {
			packet.AudioURL = url
		}
	}

	payload, err := json.Marshal(packet)
	if err != nil {
		return fmt.Errorf("failed to encode speech packet: %w", err)
	}
	if err := s.room.Publish(ctx, s.cfg.SpeechTopic, payload); err != nil {
		return fmt.Errorf("failed to publish speech: %w", err)
	}

	s.logger.Debug("🗣️ Spoke", append(callcontext.Fields(ctx),
		zap.Int("seq", seq), zap.Bool("audio", packet.AudioURL != ""))...)

	if s.cfg.PaceSpeech {
		return pause(ctx, speakingTime(text))
	}
	return nil
}

func speakingTime(text string) time.Duration {
	words := len(strings.Fields(text))
	return time.Duration(float64(words) / wordsPerSecond * float64(time.Second))
}

func pause(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StartCapture begins recording the room audio
func (s *Session) StartCapture(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return usecaseErrors.ErrSessionClosed
	}
	s.captures++
	key := s.objectKey("capture", s.captures, "ogg")
	s.mu.Unlock()

	info, err := s.recorder.Start(ctx, s.call.RoomName, key)
	if err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}

	s.mu.Lock()
	s.egressID = info.GetEgressId()
	s.captureAt = key
	s.mu.Unlock()

	s.saveEgress(ctx, info)
	s.speakers.setEnabled(true)
	return nil
}

// StopCapture ends the recording and downloads it. A recording that never
// lands in storage counts as nothing captured.
func (s *Session) StopCapture(ctx context.Context) ([]byte, error) {
	s.speakers.setEnabled(false)

	s.mu.Lock()
	egressID, key := s.egressID, s.captureAt
	s.egressID, s.captureAt = "", ""
	s.mu.Unlock()
	if egressID == "" {
		return nil, usecaseErrors.ErrCaptureNotStarted
	}

	info, err := s.recorder.Stop(ctx, egressID)
	if err != nil {
		s.logger.Warn("⚠️ Failed to stop capture", append(callcontext.Fields(ctx),
			zap.String("egress_id", egressID), zap.Error(err))...)
	} else {
		s.saveEgress(ctx, info)
	}

	audio, err := s.fetch(ctx, key)
	if err != nil {
		s.logger.Warn("⏳ Captured audio not available", append(callcontext.Fields(ctx),
			zap.String("key", key), zap.Error(err))...)
		return nil, nil
	}
	return audio, nil
}

// fetch polls storage until the egress upload completes
func (s *Session) fetch(ctx context.Context, key string) ([]byte, error) {
	if s.artifacts == nil {
		return nil, errors.New("no artifact store")
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = s.cfg.CaptureWait

	var audio []byte
	err := backoff.Retry(func() error {
		data, err := s.artifacts.Get(ctx, key)
		if err != nil {
			return err
		}
		if len(data) == 0 {
			return errors.New("empty recording")
		}
		audio = data
		return nil
	}, backoff.WithContext(bo, ctx))
	return audio, err
}

func (s *Session) saveEgress(ctx context.Context, info *livekit.EgressInfo) {
	if info == nil {
		return
	}
	raw, err := protojson.Marshal(info)
	if err != nil {
		return
	}
	s.state.Put(ctx, s.call.ID, statestore.KeyEgress, json.RawMessage(raw))
}

func (s *Session) Activity() <-chan entities.VoiceActivity {
	return s.speakers.out
}

// Close leaves the room; repeated calls are no-ops
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	egressID := s.egressID
	s.egressID = ""
	s.mu.Unlock()

	if egressID != "" {
		if _, err := s.recorder.Stop(ctx, egressID); err != nil {
			s.logger.Warn("⚠️ Failed to stop capture on close", zap.String("egress_id", egressID), zap.Error(err))
		}
	}
	s.speakers.close()
	s.room.Disconnect()
	if s.onClose != nil {
		s.onClose(ctx)
	}

	s.logger.Info("👋 Left meeting room",
		zap.String("call_id", s.call.ID.String()),
		zap.String("room", s.call.RoomName),
	)
	return nil
}
