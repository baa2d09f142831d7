package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// VoiceParams selects the synthesized voice
type VoiceParams struct {
	Voice    string
	Language string
}

// TranscribeConfig tunes speech recognition for one request
type TranscribeConfig struct {
	Language      string
	SpeakerLabels bool
}

// Segment is one speaker-attributed piece of a transcript
type Segment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Transcript is the result of speech recognition
type Transcript struct {
	Text     string    `json:"transcript"`
	Segments []Segment `json:"segments"`
}

// IsEmpty reports whether nothing intelligible was recognized
func (t Transcript) IsEmpty() bool {
	return strings.TrimSpace(t.Text) == ""
}

// Synthesizer renders text to audio
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice VoiceParams) ([]byte, error)
}

// Transcriber turns audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, cfg TranscribeConfig) (Transcript, error)
}

// SpeechService combines synthesis and recognition and never fails:
// backend errors are logged and degrade to empty results.
type SpeechService struct {
	synth       Synthesizer
	transcriber Transcriber
	logger      *zap.Logger
}

// NewSpeechService creates a degrading speech facade; either backend may be nil
func NewSpeechService(synth Synthesizer, transcriber Transcriber, logger *zap.Logger) *SpeechService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SpeechService{synth: synth, transcriber: transcriber, logger: logger}
}

// TextToSpeech returns synthesized audio, or nil when synthesis is unavailable
func (s *SpeechService) TextToSpeech(ctx context.Context, text string, voice VoiceParams) []byte {
	if s.synth == nil || strings.TrimSpace(text) == "" {
		return nil
	}
	audio, err := s.synth.Synthesize(ctx, text, voice)
	if err != nil {
		s.logger.Warn("⚠️ Text-to-speech failed, continuing without audio", zap.Error(err))
		return nil
	}
	return audio
}

// SpeechToText returns the transcript, or an empty one when recognition fails
func (s *SpeechService) SpeechToText(ctx context.Context, audio []byte, cfg TranscribeConfig) Transcript {
	if s.transcriber == nil || len(audio) == 0 {
		return Transcript{Segments: []Segment{}}
	}
	t, err := s.transcriber.Transcribe(ctx, audio, cfg)
	if err != nil {
		s.logger.Warn("⚠️ Speech-to-text failed, treating as no response", zap.Error(err))
		return Transcript{Segments: []Segment{}}
	}
	if t.Segments == nil {
		t.Segments = []Segment{}
	}
	return t
}

// PassthroughTranscriber treats the audio payload as UTF-8 text.
// Used with scripted meeting sessions in dry runs.
type PassthroughTranscriber struct{}

func (PassthroughTranscriber) Transcribe(_ context.Context, audio []byte, _ TranscribeConfig) (Transcript, error) {
	text := strings.TrimSpace(string(audio))
	return Transcript{Text: text, Segments: []Segment{{Text: text}}}, nil
}
