package conductor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/usecase/prompt"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/ai"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

// Phase is the conductor's position in the call protocol
type Phase string

const (
	PhaseNotStarted   Phase = "not_started"
	PhaseIntroducing  Phase = "introducing"
	PhaseParticipants Phase = "per_participant"
	PhaseConcluding   Phase = "concluding"
	PhaseClosed       Phase = "closed"
	PhaseErrorClosing Phase = "error_closing"
)

// ResponseProcessor classifies a captured response
type ResponseProcessor interface {
	Process(ctx context.Context, callID uuid.UUID, rec entities.ResponseRecord) entities.ProcessedResponse
}

// Config holds turn-taking limits
type Config struct {
	ResponseTimeout time.Duration
	SilenceTimeout  time.Duration
	MaxQuestions    int
	Language        string
}

// DefaultConfig mirrors the STANDUP_ defaults
func DefaultConfig() Config {
	return Config{
		ResponseTimeout: 2 * time.Minute,
		SilenceTimeout:  time.Minute,
		MaxQuestions:    3,
	}
}

// Conductor runs the standup protocol over a meeting session
type Conductor struct {
	asker     *prompt.Asker
	processor ResponseProcessor
	speech    services.SpeechService
	state     *statestore.Store
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

func New(
	model services.LanguageModel,
	processor ResponseProcessor,
	speech services.SpeechService,
	state *statestore.Store,
	cfg Config,
	logger *zap.Logger,
) *Conductor {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.ResponseTimeout <= 0 {
		cfg.ResponseTimeout = def.ResponseTimeout
	}
	if cfg.SilenceTimeout <= 0 {
		cfg.SilenceTimeout = def.SilenceTimeout
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = def.MaxQuestions
	}
	return &Conductor{
		asker:     prompt.NewAsker(model, "conductor", logger).WithTemperature(0.7),
		processor: processor,
		speech:    speech,
		state:     state,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// Run conducts the call and always closes the session. On a session
// failure the partial results are returned together with the error.
func (c *Conductor) Run(ctx context.Context, call *entities.Call, session services.MeetingSession) (*entities.CallResults, error) {
	results := entities.NewCallResults()
	c.enter(ctx, call.ID, PhaseNotStarted)

	if err := c.run(ctx, call, session, results); err != nil {
		c.enter(ctx, call.ID, PhaseErrorClosing)
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			c.logger.Warn("⚠️ Session close failed after error", zap.Error(closeErr))
		}
		c.saveResults(ctx, call.ID, results)
		c.logger.Error("❌ Standup call aborted",
			append(callcontext.Fields(ctx), zap.Error(err))...)
		return results, err
	}

	if err := session.Close(ctx); err != nil {
		c.logger.Warn("⚠️ Session close failed", zap.Error(err))
	}
	c.enter(ctx, call.ID, PhaseClosed)
	c.saveResults(ctx, call.ID, results)

	c.logger.Info("✅ Standup call conducted",
		append(callcontext.Fields(ctx),
			zap.Int("responses", len(results.Responses)),
			zap.Int("missing", len(results.MissingDevelopers)),
			zap.Int("blockers", len(results.Blockers)),
			zap.Int("delays", len(results.Delays)),
		)...)
	return results, nil
}

func (c *Conductor) run(ctx context.Context, call *entities.Call, session services.MeetingSession, results *entities.CallResults) error {
	c.enter(ctx, call.ID, PhaseIntroducing)
	if err := c.speak(ctx, session, c.introduction(ctx, call)); err != nil {
		return err
	}

	c.enter(ctx, call.ID, PhaseParticipants)
	for _, name := range call.ParticipantNames() {
		if err := ctx.Err(); err != nil {
			return err
		}
		pctx := callcontext.WithParticipant(ctx, name)
		if err := c.interview(pctx, call, session, name, results); err != nil {
			return err
		}
		c.saveResults(ctx, call.ID, results)
	}

	c.enter(ctx, call.ID, PhaseConcluding)
	return c.speak(ctx, session, c.conclusion(ctx, call, results))
}

// interview asks one participant their questions. A timeout or an empty
// capture marks them missing and moves on to the next question without
// repeating the unanswered one.
func (c *Conductor) interview(ctx context.Context, call *entities.Call, session services.MeetingSession, name string, results *entities.CallResults) error {
	for _, q := range c.questions(ctx, call, name) {
		results.AddQuestion(entities.Question{Participant: name, Text: q, Timestamp: c.now()})
		if err := c.speak(ctx, session, q); err != nil {
			return err
		}

		text, outcome, err := c.capture(ctx, session, name)
		if err != nil {
			return err
		}
		if outcome != outcomeCaptured {
			results.AddMissing(name)
			c.logger.Warn("⚠️ No response, moving on",
				append(callcontext.Fields(ctx), zap.String("reason", string(outcome)))...)
			if err := c.speak(ctx, session, c.moveOn(ctx, name)); err != nil {
				return err
			}
			continue
		}

		rec := entities.ResponseRecord{Participant: name, Text: text, Timestamp: c.now()}
		results.AddProcessed(c.processor.Process(ctx, call.ID, rec))
	}
	return nil
}

// capture records one answer and transcribes it
func (c *Conductor) capture(ctx context.Context, session services.MeetingSession, name string) (string, waitOutcome, error) {
	activity := session.Activity()
	drain(activity)

	if err := session.StartCapture(ctx); err != nil {
		return "", "", fmt.Errorf("start capture: %w", err)
	}
	outcome := c.await(ctx, activity, name)

	audio, err := session.StopCapture(context.WithoutCancel(ctx))
	if err != nil {
		return "", "", fmt.Errorf("stop capture: %w", err)
	}
	if outcome == outcomeCancelled {
		return "", outcome, ctx.Err()
	}
	recordWait(outcome)
	if outcome != outcomeCaptured {
		return "", outcome, nil
	}

	transcript := c.speech.SpeechToText(ctx, audio, ai.TranscribeConfig{Language: c.cfg.Language, SpeakerLabels: true})
	if transcript.IsEmpty() {
		recordWait(outcomeEmpty)
		return "", outcomeEmpty, nil
	}
	return transcript.Text, outcomeCaptured, nil
}

func (c *Conductor) speak(ctx context.Context, session services.MeetingSession, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := session.Speak(ctx, text); err != nil {
		return fmt.Errorf("speak: %w", err)
	}
	return nil
}

func (c *Conductor) enter(ctx context.Context, callID uuid.UUID, p Phase) {
	c.state.Put(ctx, callID, statestore.KeyPhase, p)
	c.logger.Debug("Conductor phase", zap.String("call_id", callID.String()), zap.String("phase", string(p)))
}

func (c *Conductor) saveResults(ctx context.Context, callID uuid.UUID, results *entities.CallResults) {
	c.state.Put(ctx, callID, statestore.KeyCallResults, results.Snapshot())
}
