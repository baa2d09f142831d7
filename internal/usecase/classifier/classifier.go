package classifier

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/metrics"
	"github.com/johnquangdev/standup-assistant/internal/usecase/lenient"
	"github.com/johnquangdev/standup-assistant/internal/usecase/prompt"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

const systemPrompt = `You are an assistant analyzing daily standup responses from team members.
Detect:
1. Blockers: issues preventing progress
2. Delays: tasks taking longer than expected
3. Whether the response is relevant to the standup

Reply with one JSON object with these fields:
- is_relevant: boolean (true if the response discusses work)
- has_blocker: boolean
- blocker_description: string ("" if none)
- has_delay: boolean
- delay_description: string ("" if none)

Examples of blockers:
- "I'm blocked by the API team"
- "I can't proceed until the database is set up"
- "Waiting for credentials from DevOps"

Examples of delays:
- "The task is taking longer than expected"
- "I need another day to complete this"
- "I won't be able to finish by the end of the sprint"

A relevant response covers work completed, in progress or planned, or mentions blockers.
"I have nothing to report" is not relevant.

Example reply:
{"is_relevant": true, "has_blocker": true, "blocker_description": "Waiting for DB credentials for PROJ-42", "has_delay": false, "delay_description": ""}`

var requiredFields = []string{"is_relevant", "has_blocker", "has_delay"}

// BlockerHandler escalates a detected blocker
type BlockerHandler interface {
	Handle(ctx context.Context, callID uuid.UUID, participant, description string) entities.Blocker
}

// DelayHandler analyzes a detected delay
type DelayHandler interface {
	Handle(ctx context.Context, callID uuid.UUID, participant, description string) entities.Delay
}

// Classifier turns a captured utterance into a verdict and routes
// blockers and delays to their handlers
type Classifier struct {
	asker    *prompt.Asker
	blockers BlockerHandler
	delays   DelayHandler
	state    *statestore.Store
	logger   *zap.Logger
}

func New(model services.LanguageModel, blockers BlockerHandler, delays DelayHandler, state *statestore.Store, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		asker:    prompt.NewAsker(model, "classifier", logger).WithTemperature(0),
		blockers: blockers,
		delays:   delays,
		state:    state,
		logger:   logger,
	}
}

// ParseVerdict extracts a verdict from a model reply. Missing fields take
// their defaults; text fills in an empty blocker or delay description.
func ParseVerdict(reply, text string) lenient.Result[entities.Verdict] {
	res := lenient.DecodeObject(reply, entities.DefaultVerdict(), requiredFields...)
	v := res.Value
	v.BlockerDescription = strings.TrimSpace(v.BlockerDescription)
	v.DelayDescription = strings.TrimSpace(v.DelayDescription)
	if v.HasBlocker && v.BlockerDescription == "" {
		v.BlockerDescription = text
	}
	if v.HasDelay && v.DelayDescription == "" {
		v.DelayDescription = text
	}
	if !v.HasBlocker {
		v.BlockerDescription = ""
	}
	if !v.HasDelay {
		v.DelayDescription = ""
	}
	res.Value = v
	return res
}

// Classify returns the verdict for one utterance. The result is always complete.
func (c *Classifier) Classify(ctx context.Context, text string) lenient.Result[entities.Verdict] {
	reply, err := c.asker.Ask(ctx, 500, systemPrompt, "Analyze this standup response:\n\n"+text)
	if err != nil {
		c.asker.Fallback(ctx, err)
		return lenient.Default(entities.DefaultVerdict(), err)
	}
	res := ParseVerdict(reply, text)
	if res.Fallback {
		c.asker.Fallback(ctx, res.Err)
	}
	return res
}

// Process classifies a response, runs the blocker and delay handlers
// it calls for and stores the processed result
func (c *Classifier) Process(ctx context.Context, callID uuid.UUID, rec entities.ResponseRecord) entities.ProcessedResponse {
	res := c.Classify(ctx, rec.Text)
	out := entities.ProcessedResponse{
		Response: rec,
		Verdict:  res.Value,
		Outcome:  res.Value.Outcome(),
		Fallback: res.Fallback,
	}

	if out.Verdict.HasBlocker && c.blockers != nil {
		b := c.blockers.Handle(ctx, callID, rec.Participant, out.Verdict.BlockerDescription)
		out.Blocker = &b
	}
	if out.Verdict.HasDelay && c.delays != nil {
		d := c.delays.Handle(ctx, callID, rec.Participant, out.Verdict.DelayDescription)
		out.Delay = &d
	}

	c.state.Put(ctx, callID, statestore.ProcessedResponseKey(rec.Participant), out)
	metrics.Classified(string(out.Outcome))

	fields := append(callcontext.Fields(ctx),
		zap.String("outcome", string(out.Outcome)),
		zap.Bool("fallback", out.Fallback),
	)
	c.logger.Info("📝 Response classified", fields...)
	return out
}
