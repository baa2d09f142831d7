// Package prompt wraps the language model for the call workers. A failed
// completion is reported as an error and handled by the caller's lenient
// fallback, so no worker ever aborts on a model outage.
package prompt

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/standup-assistant/pkg/ai"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

// ErrNoModel is returned when no language model is wired
var ErrNoModel = errors.New("no language model configured")

// Asker sends system+user prompts on behalf of one worker
type Asker struct {
	model     services.LanguageModel
	component string
	opts      ai.CompletionOptions
	logger    *zap.Logger
}

// NewAsker creates an Asker. component labels logs and fallback metrics.
func NewAsker(model services.LanguageModel, component string, logger *zap.Logger) *Asker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Asker{
		model:     model,
		component: component,
		opts:      ai.CompletionOptions{Temperature: 0.3},
		logger:    logger,
	}
}

// WithTemperature overrides the sampling temperature
func (a *Asker) WithTemperature(t float64) *Asker {
	cp := *a
	cp.opts.Temperature = t
	return &cp
}

// Ask returns the trimmed reply text
func (a *Asker) Ask(ctx context.Context, maxTokens int, system, user string) (string, error) {
	if a.model == nil {
		return "", ErrNoModel
	}
	opts := a.opts
	opts.MaxTokens = maxTokens

	reply, err := a.model.Complete(ctx, []ai.Message{ai.System(system), ai.User(user)}, opts)
	if err != nil {
		fields := append(callcontext.Fields(ctx), zap.String("component", a.component), zap.Error(err))
		a.logger.Warn("⚠️ Language model call failed, using defaults", fields...)
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Fallback records that a reply was replaced with defaults
func (a *Asker) Fallback(ctx context.Context, err error) {
	metrics.Fallback(a.component)
	fields := append(callcontext.Fields(ctx), zap.String("component", a.component))
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	a.logger.Debug("Model reply replaced with defaults", fields...)
}

