package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/johnquangdev/standup-assistant/pkg/ai"
)

type llmRule struct {
	match string
	reply string
	err   error
}

// FakeLLM answers prompts with canned replies. The first rule whose
// substring occurs in the system or user prompt wins.
type FakeLLM struct {
	mu      sync.Mutex
	rules   []llmRule
	Default string
	Err     error
	prompts []string
}

func NewFakeLLM() *FakeLLM {
	return &FakeLLM{}
}

// On registers a reply for prompts containing match
func (f *FakeLLM) On(match, reply string) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, llmRule{match: match, reply: reply})
	return f
}

// Fail makes prompts containing match return err
func (f *FakeLLM) Fail(match string, err error) *FakeLLM {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, llmRule{match: match, err: err})
	return f
}

func (f *FakeLLM) Complete(ctx context.Context, messages []ai.Message, _ ai.CompletionOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var b strings.Builder
	for _, m := range messages {
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	text := b.String()

	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, text)
	for _, r := range f.rules {
		if strings.Contains(text, r.match) {
			return r.reply, r.err
		}
	}
	return f.Default, f.Err
}

// Prompts returns every prompt seen so far
func (f *FakeLLM) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// PromptsContaining counts prompts that include substr
func (f *FakeLLM) PromptsContaining(substr string) int {
	n := 0
	for _, p := range f.Prompts() {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}
