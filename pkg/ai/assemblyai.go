package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// AssemblyAITranscriber transcribes captured audio with the AssemblyAI SDK
type AssemblyAITranscriber struct {
	client *aai.Client
}

// NewAssemblyAITranscriber creates a transcriber using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAITranscriber(cfg *config.AssemblyAIConfig) *AssemblyAITranscriber {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	return &AssemblyAITranscriber{client: aai.NewClient(apiKey)}
}

// NewAssemblyAITranscriberWithBaseURL points the SDK at another endpoint
func NewAssemblyAITranscriberWithBaseURL(apiKey, baseURL string) *AssemblyAITranscriber {
	return &AssemblyAITranscriber{
		client: aai.NewClientWithOptions(
			aai.WithAPIKey(apiKey),
			aai.WithBaseURL(baseURL),
		),
	}
}

// Transcribe uploads the audio and waits for the finished transcript
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audio []byte, cfg TranscribeConfig) (Transcript, error) {
	uploadURL, err := t.client.Upload(ctx, bytes.NewReader(audio))
	if err != nil {
		return Transcript{}, fmt.Errorf("failed to upload to AssemblyAI: %w", err)
	}

	params := &aai.TranscriptOptionalParams{
		SpeakerLabels: aai.Bool(cfg.SpeakerLabels),
	}
	if cfg.Language != "" {
		params.LanguageCode = aai.TranscriptLanguageCode(cfg.Language)
	}

	transcript, err := t.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return Transcript{}, fmt.Errorf("AssemblyAI transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return Transcript{}, fmt.Errorf("AssemblyAI error: %s", msg)
	}

	return toTranscript(transcript), nil
}

func toTranscript(tr aai.Transcript) Transcript {
	out := Transcript{Segments: []Segment{}}
	if tr.Text != nil {
		out.Text = strings.TrimSpace(*tr.Text)
	}
	for _, u := range tr.Utterances {
		seg := Segment{}
		if u.Speaker != nil {
			seg.Speaker = *u.Speaker
		}
		if u.Text != nil {
			seg.Text = *u.Text
		}
		out.Segments = append(out.Segments, seg)
	}
	return out
}
