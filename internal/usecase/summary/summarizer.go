package summary

import (
	"context"
	"fmt"
	"strings"
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

const narrativePrompt = `You are a scrum master assistant summarizing a daily standup meeting.
Write a clear, professional summary (300-500 words) covering:
1. Attendance and participation
2. Key updates from team members
3. Blockers and their impact
4. Delays and their impact on the sprint
5. Overall assessment of sprint progress
Keep a positive, supportive tone.`

const storiesPrompt = `You are an assistant extracting work item status from standup responses.
For each work item mentioned, provide:
- title: short description of the work
- status: To Do, In Progress, Done, or Blocked
- completion_percentage: integer 0-100
- assignee: person working on it
- notes: relevant notes about progress or issues

Reply with one JSON object whose keys are item ids (e.g. "PROJ-123", or
sequential numbers when no id is mentioned) and whose values have the fields above.`

const healthPrompt = `You are a scrum master assistant assessing sprint health.
Categorize the sprint as one of:
- Good: on track with minimal issues
- Moderate: some issues, goals still achievable
- At Risk: significant issues threaten the sprint goals
- Critical: sprint goals are unlikely to be achieved
Consider the blockers and their severity, the delays and their impact, and the work item status.
Reply with the category only.`

const actionsPrompt = `You are a scrum master assistant writing action items after a standup.
From the blockers, delays and missing participants, list specific follow-ups.
Each item has:
- action: what needs to be done
- assignee: who should do it, if obvious
- priority: High, Medium, or Low
Reply with a JSON array of objects with these fields.`

// Summarizer aggregates the call results into an OverallSummary
type Summarizer struct {
	asker  *prompt.Asker
	state  *statestore.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewSummarizer(model services.LanguageModel, state *statestore.Store, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		asker:  prompt.NewAsker(model, "summary", logger),
		state:  state,
		logger: logger,
		now:    time.Now,
	}
}

// Summarize builds the overall summary. It never fails; each step falls
// back independently.
func (s *Summarizer) Summarize(ctx context.Context, callID uuid.UUID, results entities.CallResults) entities.OverallSummary {
	out := entities.OverallSummary{
		Participants:        entities.Dedupe(participants(results)),
		MissingParticipants: entities.Dedupe(results.MissingDevelopers),
		Blockers:            nonNilBlockers(results.Blockers),
		Delays:              nonNilDelays(results.Delays),
		Timestamp:           s.now(),
	}

	out.Summary = s.narrative(ctx, results, out)
	out.StoriesStatus = s.storiesStatus(ctx, results)
	out.SprintHealth = s.health(ctx, out)
	out.ActionItems = s.actionItems(ctx, out)

	s.state.Put(ctx, callID, statestore.KeyOverallSummary, out)

	fields := append(callcontext.Fields(ctx),
		zap.Int("participants", len(out.Participants)),
		zap.Int("missing", len(out.MissingParticipants)),
		zap.String("sprint_health", string(out.SprintHealth)),
		zap.Int("action_items", len(out.ActionItems)),
	)
	s.logger.Info("📊 Overall summary generated", fields...)
	return out
}

// ParseHealth maps a free-text reply onto the health scale by substring,
// checking critical, then risk, then moderate
func ParseHealth(reply string) entities.SprintHealth {
	lower := strings.ToLower(strings.TrimSpace(reply))
	switch {
	case strings.Contains(lower, "critical"):
		return entities.SprintHealthCritical
	case strings.Contains(lower, "risk"):
		return entities.SprintHealthAtRisk
	case strings.Contains(lower, "moderate"):
		return entities.SprintHealthModerate
	default:
		return entities.SprintHealthGood
	}
}

type actionItemReply struct {
	Action   string `json:"action"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
}

// ParseActionItems reads a JSON array of action items, falling back to
// bullet or numbered lines assigned to the team at medium priority
func ParseActionItems(reply string) lenient.Result[[]entities.ActionItem] {
	raw, err := lenient.DecodeArray[actionItemReply](reply)
	if err == nil {
		items := make([]entities.ActionItem, 0, len(raw))
		for _, r := range raw {
			if strings.TrimSpace(r.Action) == "" {
				continue
			}
			assignee := strings.TrimSpace(r.Assignee)
			if assignee == "" {
				assignee = "Team"
			}
			items = append(items, entities.ActionItem{
				Action:   strings.TrimSpace(r.Action),
				Assignee: assignee,
				Priority: entities.NormalizePriority(r.Priority),
			})
		}
		return lenient.Ok(items)
	}

	items := []entities.ActionItem{}
	for _, line := range lenient.BulletLines(reply) {
		items = append(items, entities.ActionItem{Action: line, Assignee: "Team", Priority: entities.PriorityMedium})
	}
	return lenient.Default(items, err)
}

// ParseStoriesStatus reads the item status map and clamps completion
func ParseStoriesStatus(reply string) lenient.Result[map[string]entities.StoryStatus] {
	res := lenient.DecodeObject(reply, map[string]entities.StoryStatus{})
	if res.Value == nil {
		res.Value = map[string]entities.StoryStatus{}
	}
	for k, st := range res.Value {
		if st.Completion < 0 {
			st.Completion = 0
		}
		if st.Completion > 100 {
			st.Completion = 100
		}
		res.Value[k] = st
	}
	return res
}

func (s *Summarizer) narrative(ctx context.Context, results entities.CallResults, out entities.OverallSummary) string {
	missing := "None"
	if len(out.MissingParticipants) > 0 {
		missing = strings.Join(out.MissingParticipants, ", ")
	}
	user := fmt.Sprintf("Call data:\n- Total responses: %d\n- Missing participants: %s\n- Blockers: %d\n- Delays: %d\n\nParticipant responses:\n%s\n\nBlockers:\n%s\n\nDelays:\n%s\n\nGenerate a professional summary of this standup meeting.",
		len(results.Responses), missing, len(out.Blockers), len(out.Delays),
		toJSON(responseDigest(results.Responses)), orNone(out.Blockers), orNone(out.Delays))

	reply, err := s.asker.Ask(ctx, 800, narrativePrompt, user)
	if err != nil || reply == "" {
		s.asker.Fallback(ctx, err)
		return fallbackNarrative(out, len(results.Responses))
	}
	return reply
}

func (s *Summarizer) storiesStatus(ctx context.Context, results entities.CallResults) map[string]entities.StoryStatus {
	if len(results.Responses) == 0 {
		return map[string]entities.StoryStatus{}
	}
	user := fmt.Sprintf("Participant responses:\n%s\n\nExtract information about work items and their status from these responses.",
		toJSON(responseDigest(results.Responses)))
	reply, err := s.asker.Ask(ctx, 800, storiesPrompt, user)
	if err != nil {
		s.asker.Fallback(ctx, err)
		return map[string]entities.StoryStatus{}
	}
	res := ParseStoriesStatus(reply)
	if res.Fallback {
		s.asker.Fallback(ctx, res.Err)
	}
	return res.Value
}

func (s *Summarizer) health(ctx context.Context, out entities.OverallSummary) entities.SprintHealth {
	if len(out.Participants) == 0 && len(out.Blockers) == 0 && len(out.Delays) == 0 {
		return entities.SprintHealthGood
	}
	user := fmt.Sprintf("Work item status:\n%s\n\nBlockers:\n%s\n\nDelays:\n%s\n\nDetermine the overall health of the sprint.",
		toJSON(out.StoriesStatus), orNone(out.Blockers), orNone(out.Delays))
	reply, err := s.asker.Ask(ctx, 50, healthPrompt, user)
	if err != nil {
		s.asker.Fallback(ctx, err)
		return fallbackHealth(out)
	}
	return ParseHealth(reply)
}

func (s *Summarizer) actionItems(ctx context.Context, out entities.OverallSummary) []entities.ActionItem {
	if len(out.Blockers) == 0 && len(out.Delays) == 0 && len(out.MissingParticipants) == 0 {
		return []entities.ActionItem{}
	}
	missing := "None"
	if len(out.MissingParticipants) > 0 {
		missing = strings.Join(out.MissingParticipants, ", ")
	}
	user := fmt.Sprintf("Blockers:\n%s\n\nDelays:\n%s\n\nMissing participants: %s\n\nGenerate actionable follow-up items from this standup meeting.",
		orNone(out.Blockers), orNone(out.Delays), missing)

	reply, err := s.asker.Ask(ctx, 500, actionsPrompt, user)
	if err != nil {
		s.asker.Fallback(ctx, err)
		return derivedActionItems(out)
	}
	res := ParseActionItems(reply)
	if res.Fallback {
		s.asker.Fallback(ctx, res.Err)
	}
	if len(res.Value) == 0 {
		return derivedActionItems(out)
	}
	return res.Value
}
