package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// Message is one chat turn sent to the language model
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// System builds a system message
func System(content string) Message {
	return Message{Role: "system", Content: content}
}

// User builds a user message
func User(content string) Message {
	return Message{Role: "user", Content: content}
}

// CompletionOptions overrides the client defaults for one request
type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// GroqClient is a minimal client for Groq's OpenAI-compatible API
type GroqClient struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	ttsModel    string
	ttsVoice    string
	retry       callcontext.RetryPolicy
	client      *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	g := &GroqClient{
		baseURL:     "https://api.groq.com/openai/v1",
		model:       "llama-3.3-70b-versatile",
		temperature: 0.3,
		maxTokens:   800,
		ttsModel:    "playai-tts",
		ttsVoice:    "Fritz-PlayAI",
		retry:       callcontext.DefaultRetryPolicy,
		client:      &http.Client{Timeout: 60 * time.Second},
	}
	if cfg != nil {
		g.apiKey = cfg.APIKey
		if cfg.BaseURL != "" {
			g.baseURL = strings.TrimRight(cfg.BaseURL, "/")
		}
		if cfg.Model != "" {
			g.model = cfg.Model
		}
		if cfg.Temperature > 0 {
			g.temperature = cfg.Temperature
		}
		if cfg.MaxTokens > 0 {
			g.maxTokens = cfg.MaxTokens
		}
		if cfg.TTSModel != "" {
			g.ttsModel = cfg.TTSModel
		}
		if cfg.TTSVoice != "" {
			g.ttsVoice = cfg.TTSVoice
		}
		if cfg.Timeout > 0 {
			g.client.Timeout = cfg.Timeout
		}
	}
	if g.apiKey == "" {
		g.apiKey = os.Getenv("GROQ_API_KEY")
	}
	return g
}

// WithRetryPolicy replaces the retry policy, mostly for tests
func (g *GroqClient) WithRetryPolicy(p callcontext.RetryPolicy) *GroqClient {
	g.retry = p
	return g
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends a chat completion and returns the assistant content
func (g *GroqClient) Complete(ctx context.Context, messages []Message, opts CompletionOptions) (string, error) {
	reqBody := ChatRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}
	if opts.Model != "" {
		reqBody.Model = opts.Model
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	var content string
	err = callcontext.Retry(ctx, g.retry, func() error {
		body, err := g.post(ctx, "/chat/completions", "application/json", b)
		if err != nil {
			return err
		}
		var cr ChatResponse
		if err := json.Unmarshal(body, &cr); err != nil {
			return fmt.Errorf("invalid groq response: %w", err)
		}
		if len(cr.Choices) == 0 {
			return fmt.Errorf("empty response from groq")
		}
		content = cr.Choices[0].Message.Content
		return nil
	})
	return content, err
}

// speechRequest is the payload for /audio/speech
type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format"`
}

// Synthesize renders text to WAV audio
func (g *GroqClient) Synthesize(ctx context.Context, text string, voice VoiceParams) ([]byte, error) {
	req := speechRequest{
		Model:          g.ttsModel,
		Input:          text,
		Voice:          g.ttsVoice,
		ResponseFormat: "wav",
	}
	if voice.Voice != "" {
		req.Voice = voice.Voice
	}
	b, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	var audio []byte
	err = callcontext.Retry(ctx, g.retry, func() error {
		body, err := g.post(ctx, "/audio/speech", "application/json", b)
		if err != nil {
			return err
		}
		audio = body
		return nil
	})
	return audio, err
}

func (g *GroqClient) post(ctx context.Context, path, contentType string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("groq returned status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
