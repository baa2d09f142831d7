package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/repositories"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/usecase/prompt"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
)

const systemPrompt = `You are a scrum master assistant tracking attendance in daily standups.
Write a brief, professional recommendation for follow-up (1-2 sentences):
- after 2 missed meetings suggest a friendly check-in by a teammate
- after 3 missed meetings suggest notifying their manager
- after 4 or more suggest escalating to the project lead`

// Tracker keeps the consecutive-absence counter for each participant
type Tracker struct {
	repo      repositories.AttendanceRepository
	asker     *prompt.Asker
	state     *statestore.Store
	resetOnIn bool
	logger    *zap.Logger
	now       func() time.Time
}

// NewTracker creates a tracker. resetOnPresence clears the streak when the
// participant attends again.
func NewTracker(
	repo repositories.AttendanceRepository,
	model services.LanguageModel,
	state *statestore.Store,
	resetOnPresence bool,
	logger *zap.Logger,
) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{
		repo:      repo,
		asker:     prompt.NewAsker(model, "attendance", logger),
		state:     state,
		resetOnIn: resetOnPresence,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordAbsence counts one missed call. Repeated calls for the same call id
// leave the counter unchanged.
func (t *Tracker) RecordAbsence(ctx context.Context, callID uuid.UUID, team, name string) *entities.MissingDeveloper {
	at := t.now()

	record, err := t.repo.FindByName(ctx, name)
	if err != nil {
		t.logger.Warn("⚠️ Failed to load attendance record, starting fresh",
			zap.String("name", name), zap.Error(err))
		record = nil
	}
	if record == nil {
		record = entities.NewMissingDeveloper(team, name)
	}
	if record.TeamName == "" {
		record.TeamName = team
	}

	if !record.MarkMissed(callID.String(), at) {
		return record
	}
	if record.ActionRequired {
		record.SuggestedAction = t.suggestAction(ctx, record)
	}

	if err := t.repo.Save(ctx, record); err != nil {
		t.logger.Error("❌ Failed to persist attendance record", zap.String("name", name), zap.Error(err))
	}
	t.state.Put(ctx, callID, statestore.MissingDeveloperKey(name), record)

	fields := append(callcontext.Fields(ctx),
		zap.String("name", name),
		zap.Int("consecutive_misses", record.ConsecutiveMisses),
		zap.Bool("action_required", record.ActionRequired),
	)
	t.logger.Info("👻 Absence recorded", fields...)
	return record
}

// RecordPresence stamps last attendance for a known participant
func (t *Tracker) RecordPresence(ctx context.Context, name string) {
	record, err := t.repo.FindByName(ctx, name)
	if err != nil || record == nil {
		return
	}
	record.MarkPresent(t.now(), t.resetOnIn)
	if err := t.repo.Save(ctx, record); err != nil {
		t.logger.Warn("⚠️ Failed to persist attendance", zap.String("name", name), zap.Error(err))
	}
}

// EscalationTier is the default recommendation for a miss count
func EscalationTier(name string, misses int) string {
	switch {
	case misses < 2:
		return ""
	case misses == 2:
		return fmt.Sprintf("Ask a teammate to check in with %s informally about the missed standups.", name)
	case misses == 3:
		return fmt.Sprintf("Notify %s's manager about three consecutive missed standups.", name)
	default:
		return fmt.Sprintf("Escalate %s's %d consecutive missed standups to the project lead.", name, misses)
	}
}

func (t *Tracker) suggestAction(ctx context.Context, record *entities.MissingDeveloper) string {
	user := fmt.Sprintf("Suggest follow-up action for %s who has missed %d consecutive standup meetings.",
		record.Name, record.ConsecutiveMisses)
	reply, err := t.asker.Ask(ctx, 150, systemPrompt, user)
	if err != nil || strings.TrimSpace(reply) == "" {
		t.asker.Fallback(ctx, err)
		return EscalationTier(record.Name, record.ConsecutiveMisses)
	}
	return reply
}
