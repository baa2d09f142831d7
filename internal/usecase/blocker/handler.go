package blocker

import (
	"context"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

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

const (
	defaultTransitionID    = "31"
	defaultSuggestedAction = "Investigate the blocker and assign to the appropriate team."
)

const systemPrompt = `You are an assistant analyzing blockers reported during daily standups.
Extract the key facts about the blocker and suggest the next step.

Reply with one JSON object with these fields:
- affected_item_id: string (the blocked work item key, e.g. "PROJ-123", or "" if none is mentioned)
- severity: string (Critical, High, Medium, or Low)
- blocking_reason: string (concise reason for the blocker)
- action_required: boolean (true if immediate action is needed)
- suggested_action: string (what should be done to resolve the blocker)

Severity guidelines:
- Critical: completely blocks progress, affects several people, jeopardizes the sprint goal
- High: significantly blocks progress or core functionality, puts a story at risk
- Medium: partially blocks progress, a workaround exists
- Low: minor, minimal impact`

var urgentWords = []string{"urgent", "asap", "immediately", "critical", "production down", "outage"}

// Config holds escalation settings
type Config struct {
	StakeholderEmails   []string
	BlockedTransitionID string
}

// Details is the structured analysis of a blocker description
type Details struct {
	AffectedItemID  string `json:"affected_item_id"`
	Severity        string `json:"severity"`
	BlockingReason  string `json:"blocking_reason"`
	ActionRequired  bool   `json:"action_required"`
	SuggestedAction string `json:"suggested_action"`
}

// Handler turns a blocker description into a Blocker and escalates it
type Handler struct {
	asker    *prompt.Asker
	tickets  services.TicketSystem
	notifier services.Notifier
	state    *statestore.Store
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.Mutex
	lastID string
	seq    int
}

// NewHandler creates a blocker handler. tickets and notifier may be nil.
func NewHandler(
	model services.LanguageModel,
	tickets services.TicketSystem,
	notifier services.Notifier,
	state *statestore.Store,
	cfg Config,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BlockedTransitionID == "" {
		cfg.BlockedTransitionID = defaultTransitionID
	}
	return &Handler{
		asker:    prompt.NewAsker(model, "blocker", logger),
		tickets:  tickets,
		notifier: notifier,
		state:    state,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Handle analyzes and escalates one blocker. It never fails: extraction
// problems fall back to safe defaults and side effects only set flags.
func (h *Handler) Handle(ctx context.Context, callID uuid.UUID, participant, description string) entities.Blocker {
	at := h.now()
	d := h.extract(ctx, description)

	b := entities.Blocker{
		ID:              h.nextID(at),
		Participant:     participant,
		Description:     description,
		AffectedItemID:  d.AffectedItemID,
		Severity:        entities.NormalizeLevel(d.Severity),
		BlockingReason:  d.BlockingReason,
		ActionRequired:  d.ActionRequired,
		SuggestedAction: d.SuggestedAction,
		Timestamp:       at,
	}
	if b.AffectedItemID == "" {
		b.AffectedItemID = entities.FindTicketKey(description)
	}
	if isUrgent(description) && !b.Severity.IsEscalated() {
		b.Severity = entities.LevelHigh
		b.ActionRequired = true
	}

	if entities.IsTicketKey(b.AffectedItemID) {
		b.TicketUpdated = h.updateTicket(ctx, &b)
	}
	if b.Severity.IsEscalated() {
		b.NotificationSent = h.notify(ctx, &b)
	}

	h.state.Put(ctx, callID, statestore.BlockerKey(b.ID), b)

	fields := append(callcontext.Fields(ctx),
		zap.String("blocker_id", b.ID),
		zap.String("severity", string(b.Severity)),
		zap.String("item", b.AffectedItemID),
		zap.Bool("ticket_updated", b.TicketUpdated),
		zap.Bool("notification_sent", b.NotificationSent),
	)
	h.logger.Info("🚧 Blocker processed", fields...)
	return b
}

// ParseDetails applies the lenient chain to a model reply
func ParseDetails(reply, description string) lenient.Result[Details] {
	res := lenient.DecodeObject(reply, fallbackDetails(description),
		"affected_item_id", "severity", "blocking_reason", "action_required", "suggested_action")
	d := res.Value
	d.AffectedItemID = entities.NormalizeTicketKey(d.AffectedItemID)
	if strings.TrimSpace(d.BlockingReason) == "" {
		d.BlockingReason = description
	}
	if strings.TrimSpace(d.SuggestedAction) == "" {
		d.SuggestedAction = defaultSuggestedAction
	}
	res.Value = d
	return res
}

func (h *Handler) extract(ctx context.Context, description string) Details {
	reply, err := h.asker.Ask(ctx, 500, systemPrompt,
		"Analyze this blocker description and provide details:\n\n"+description)
	if err != nil {
		h.asker.Fallback(ctx, err)
		return fallbackDetails(description)
	}
	res := ParseDetails(reply, description)
	if res.Fallback {
		h.asker.Fallback(ctx, res.Err)
	}
	return res.Value
}

func fallbackDetails(description string) Details {
	return Details{
		Severity:        string(entities.LevelMedium),
		BlockingReason:  description,
		ActionRequired:  true,
		SuggestedAction: defaultSuggestedAction,
	}
}

func (h *Handler) updateTicket(ctx context.Context, b *entities.Blocker) bool {
	if h.tickets == nil {
		return false
	}
	if err := h.tickets.UpdateStatus(ctx, b.AffectedItemID, h.cfg.BlockedTransitionID); err != nil {
		metrics.Escalation("ticket", false)
		h.logger.Warn("⚠️ Failed to transition ticket to blocked",
			zap.String("item", b.AffectedItemID), zap.Error(err))
		return false
	}
	metrics.Escalation("ticket", true)

	comment := fmt.Sprintf("Blocker reported during scrum call by %s:\n\n%s\n\nBlocking reason: %s\nSeverity: %s\nSuggested action: %s",
		b.Participant, b.Description, b.BlockingReason, b.Severity, b.SuggestedAction)
	if err := h.tickets.AddComment(ctx, b.AffectedItemID, comment); err != nil {
		metrics.Escalation("comment", false)
		h.logger.Warn("⚠️ Failed to comment on blocked ticket",
			zap.String("item", b.AffectedItemID), zap.Error(err))
	} else {
		metrics.Escalation("comment", true)
	}
	return true
}

func (h *Handler) notify(ctx context.Context, b *entities.Blocker) bool {
	if h.notifier == nil || len(h.cfg.StakeholderEmails) == 0 {
		return false
	}
	item := b.AffectedItemID
	if item == "" {
		item = "Unassigned"
	}
	email := services.Email{
		To:      h.cfg.StakeholderEmails,
		Subject: fmt.Sprintf("[BLOCKER] %s - %s", item, b.BlockingReason),
		HTML:    notificationHTML(b, item),
	}
	if err := h.notifier.Send(ctx, email); err != nil {
		metrics.Escalation("email", false)
		h.logger.Warn("⚠️ Failed to send blocker notification", zap.String("blocker_id", b.ID), zap.Error(err))
		return false
	}
	metrics.Escalation("email", true)
	return true
}

func notificationHTML(b *entities.Blocker, item string) string {
	var sb strings.Builder
	sb.WriteString("<h2>High Severity Blocker Reported</h2>\n")
	row := func(label, value string) {
		fmt.Fprintf(&sb, "<p><strong>%s:</strong> %s</p>\n", label, html.EscapeString(value))
	}
	row("Reported by", b.Participant)
	row("Affected Item", item)
	row("Severity", string(b.Severity))
	row("Description", b.Description)
	row("Blocking Reason", b.BlockingReason)
	row("Suggested Action", b.SuggestedAction)
	row("Reported", b.Timestamp.UTC().Format("2006-01-02 15:04:05"))
	return sb.String()
}

// nextID keeps ids unique when two blockers land in the same second
func (h *Handler) nextID(at time.Time) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := entities.NewBlockerID(at)
	if id != h.lastID {
		h.lastID, h.seq = id, 1
		return id
	}
	h.seq++
	return fmt.Sprintf("%s-%d", id, h.seq)
}

func isUrgent(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range urgentWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
