package delay

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/usecase/lenient"
	"github.com/johnquangdev/standup-assistant/internal/usecase/prompt"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

// MaxFollowUps caps the follow-up questions kept per delay
const MaxFollowUps = 3

const (
	defaultFollowUp   = "Could you provide more details about this delay?"
	defaultRootCause  = "Not specified"
	defaultMitigation = "Request more details about the nature of the delay."
)

const analysisPrompt = `You are an assistant analyzing delays reported during daily standups.
Extract the key facts about the delay and suggest next steps.

Reply with one JSON object with these fields:
- affected_item_id: string (the delayed work item key, e.g. "PROJ-123", or "" if none is mentioned)
- estimated_recovery_days: integer (days needed to recover)
- impact_level: string (Critical, High, Medium, or Low)
- root_cause: string (concise reason for the delay)
- mitigation_suggestion: string (what should be done to mitigate the delay)

Impact guidelines:
- Critical: jeopardizes the sprint goal or several stories
- High: puts one story at risk or affects core functionality
- Medium: the story can still be completed within the sprint
- Low: minor, minimal impact

When no timeline is mentioned, estimate conservatively.`

const followUpPrompt = `You are a scrum master following up on a reported delay.
Write 1-3 short follow-up questions that are specific to the delay,
gather missing information and point towards a mitigation.

Reply with a JSON array of strings.`

// Details is the structured analysis of a delay description
type Details struct {
	AffectedItemID string `json:"affected_item_id"`
	RecoveryDays   int    `json:"estimated_recovery_days"`
	Impact         string `json:"impact_level"`
	RootCause      string `json:"root_cause"`
	Mitigation     string `json:"mitigation_suggestion"`
}

// Handler turns a delay description into a Delay. It has no external side effects.
type Handler struct {
	asker  *prompt.Asker
	state  *statestore.Store
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	lastID string
	seq    int
}

func NewHandler(model services.LanguageModel, state *statestore.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		asker:  prompt.NewAsker(model, "delay", logger),
		state:  state,
		logger: logger,
		now:    time.Now,
	}
}

// Handle analyzes one delay and stores the result under its delay key
func (h *Handler) Handle(ctx context.Context, callID uuid.UUID, participant, description string) entities.Delay {
	at := h.now()
	d := h.extract(ctx, description)

	out := entities.Delay{
		ID:             h.nextID(at),
		Participant:    participant,
		Description:    description,
		AffectedItemID: d.AffectedItemID,
		RecoveryDays:   d.RecoveryDays,
		Impact:         entities.NormalizeLevel(d.Impact),
		RootCause:      d.RootCause,
		Mitigation:     d.Mitigation,
		Timestamp:      at,
	}
	if out.AffectedItemID == "" {
		out.AffectedItemID = entities.FindTicketKey(description)
	}
	out.FollowUpQuestions = h.followUps(ctx, &out)

	h.state.Put(ctx, callID, statestore.DelayKey(out.ID), out)

	fields := append(callcontext.Fields(ctx),
		zap.String("delay_id", out.ID),
		zap.String("impact", string(out.Impact)),
		zap.Int("recovery_days", out.RecoveryDays),
	)
	h.logger.Info("⏳ Delay processed", fields...)
	return out
}

// ParseDetails applies the lenient chain to a model reply
func ParseDetails(reply string) lenient.Result[Details] {
	res := lenient.DecodeObject(reply, fallbackDetails(),
		"affected_item_id", "estimated_recovery_days", "impact_level", "root_cause", "mitigation_suggestion")
	d := res.Value
	d.AffectedItemID = entities.NormalizeTicketKey(d.AffectedItemID)
	if d.RecoveryDays < 0 {
		d.RecoveryDays = 0
	}
	if strings.TrimSpace(d.RootCause) == "" {
		d.RootCause = defaultRootCause
	}
	if strings.TrimSpace(d.Mitigation) == "" {
		d.Mitigation = defaultMitigation
	}
	res.Value = d
	return res
}

// ParseFollowUps reads questions from a JSON array, then from lines
// containing a question mark, then falls back to one canned question.
func ParseFollowUps(reply string) lenient.Result[[]string] {
	var res lenient.Result[[]string]
	if qs, err := lenient.DecodeArray[string](reply); err == nil {
		res = lenient.Ok(clean(qs))
	} else if lines := lenient.QuestionLines(reply); len(lines) > 0 {
		res = lenient.Result[[]string]{Value: lines, Fallback: true, Err: err}
	} else {
		res = lenient.Default([]string{}, err)
	}
	if len(res.Value) == 0 {
		res.Value = []string{defaultFollowUp}
		res.Fallback = true
	}
	if len(res.Value) > MaxFollowUps {
		res.Value = res.Value[:MaxFollowUps]
	}
	return res
}

func (h *Handler) extract(ctx context.Context, description string) Details {
	reply, err := h.asker.Ask(ctx, 500, analysisPrompt,
		"Analyze this delay description and provide details:\n\n"+description)
	if err != nil {
		h.asker.Fallback(ctx, err)
		return fallbackDetails()
	}
	res := ParseDetails(reply)
	if res.Fallback {
		h.asker.Fallback(ctx, res.Err)
	}
	return res.Value
}

func (h *Handler) followUps(ctx context.Context, d *entities.Delay) []string {
	user := fmt.Sprintf("Team member: %s\nReported delay: %s\nAffected item: %s\nEstimated recovery days: %d\nImpact level: %s\nRoot cause: %s\n\nGenerate follow-up questions to address this delay.",
		d.Participant, d.Description, d.AffectedItemID, d.RecoveryDays, d.Impact, d.RootCause)

	reply, err := h.asker.Ask(ctx, 300, followUpPrompt, user)
	if err != nil {
		h.asker.Fallback(ctx, err)
		return []string{defaultFollowUp}
	}
	res := ParseFollowUps(reply)
	if res.Fallback {
		h.asker.Fallback(ctx, res.Err)
	}
	return res.Value
}

func fallbackDetails() Details {
	return Details{
		RecoveryDays: 1,
		Impact:       string(entities.LevelMedium),
		RootCause:    defaultRootCause,
		Mitigation:   defaultMitigation,
	}
}

func clean(qs []string) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	return out
}

func (h *Handler) nextID(at time.Time) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := entities.NewDelayID(at)
	if id != h.lastID {
		h.lastID, h.seq = id, 1
		return id
	}
	h.seq++
	return fmt.Sprintf("%s-%d", id, h.seq)
}
