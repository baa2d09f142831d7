package report

import (
	"context"
	"fmt"
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

const maxRecommendations = 5

const indicatorsPrompt = `You are an assistant analyzing sprint health from standup data.
Reply with one JSON object with these fields:
- overall: Good, Moderate, At Risk, or Critical
- velocity: Above Target, On Target, or Below Target
- quality: Good, Needs Attention, or Poor
- team_collaboration: Strong, Adequate, or Weak
- risk_factors: array of specific risk factors
- positive_factors: array of specific positive factors`

const recommendationsPrompt = `You are a scrum master assistant recommending sprint improvements.
Write 3-5 specific, actionable recommendations. Each one addresses a concrete
issue or opportunity, is realistic within the sprint and names who should act
when appropriate.
Reply with a JSON array of strings.`

var defaultRecommendations = []string{"Review sprint status manually."}

// Percentage returns completed/total as a whole percentage in [0,100]
func Percentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	p := int(float64(completed) / float64(total) * 100)
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// StatusReporter derives the sprint status report from an overall summary
type StatusReporter struct {
	asker  *prompt.Asker
	state  *statestore.Store
	logger *zap.Logger
	now    func() time.Time
}

func NewStatusReporter(model services.LanguageModel, state *statestore.Store, logger *zap.Logger) *StatusReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatusReporter{
		asker:  prompt.NewAsker(model, "status_report", logger),
		state:  state,
		logger: logger,
		now:    time.Now,
	}
}

// Generate builds the report. Percentage and categories are computed, only
// the indicators and recommendations come from the model.
func (r *StatusReporter) Generate(ctx context.Context, callID uuid.UUID, summary entities.OverallSummary, items []entities.WorkItem) entities.StatusReport {
	total, completed := entities.SprintPoints(items)
	rep := entities.StatusReport{
		Percentage:      Percentage(completed, total),
		TotalPoints:     total,
		CompletedPoints: completed,
		Status:          CategorizeStories(summary.StoriesStatus, items),
		Timestamp:       r.now(),
	}
	rep.Health = r.indicators(ctx, summary)
	rep.Recommendations = r.recommendations(ctx, summary, rep)

	r.state.Put(ctx, callID, statestore.KeyStatusReport, rep)

	fields := append(callcontext.Fields(ctx),
		zap.Int("percentage", rep.Percentage),
		zap.Int("stories", len(rep.Status)),
	)
	r.logger.Info("📈 Status report generated", fields...)
	return rep
}

// CategorizeStories buckets the items mentioned in the call, or every sprint
// item when the call mentioned none
func CategorizeStories(stories map[string]entities.StoryStatus, items []entities.WorkItem) map[string]entities.StoryReport {
	out := map[string]entities.StoryReport{}
	if len(stories) > 0 {
		for id, st := range stories {
			out[id] = entities.StoryReport{
				Title:      st.Title,
				Category:   entities.Categorize(st.Status, st.Completion),
				Completion: st.Completion,
				Assignee:   st.Assignee,
			}
		}
		return out
	}
	for _, it := range items {
		completion := 0
		if it.Status == entities.WorkItemStatusDone {
			completion = 100
		}
		out[it.ItemKey] = entities.StoryReport{
			Title:      it.Title,
			Category:   entities.Categorize(string(it.Status), completion),
			Completion: completion,
			Assignee:   it.Assignee,
		}
	}
	return out
}

// ParseIndicators decodes health indicators over the summary's rating
func ParseIndicators(reply string, health entities.SprintHealth) lenient.Result[entities.HealthIndicators] {
	res := lenient.DecodeObject(reply, fallbackIndicators(health), "overall")
	if res.Value.Overall == "" {
		res.Value.Overall = string(health)
	}
	if res.Value.RiskFactors == nil {
		res.Value.RiskFactors = []string{}
	}
	if res.Value.PositiveFactors == nil {
		res.Value.PositiveFactors = []string{}
	}
	return res
}

func fallbackIndicators(health entities.SprintHealth) entities.HealthIndicators {
	return entities.HealthIndicators{
		Overall:         string(health),
		Velocity:        "Unknown",
		Quality:         "Unknown",
		Collaboration:   "Unknown",
		RiskFactors:     []string{},
		PositiveFactors: []string{},
	}
}

func (r *StatusReporter) indicators(ctx context.Context, summary entities.OverallSummary) entities.HealthIndicators {
	user := fmt.Sprintf("Sprint health from summary: %s\n\nBlockers:\n%s\n\nDelays:\n%s\n\nWork item status:\n%s\n\nMissing participants: %s\n\nGenerate health indicators for this sprint.",
		summary.SprintHealth, orNone(summary.Blockers), orNone(summary.Delays), toJSON(summary.StoriesStatus), joinOrNone(summary.MissingParticipants))

	reply, err := r.asker.Ask(ctx, 800, indicatorsPrompt, user)
	if err != nil {
		r.asker.Fallback(ctx, err)
		return fallbackIndicators(summary.SprintHealth)
	}
	res := ParseIndicators(reply, summary.SprintHealth)
	if res.Fallback {
		r.asker.Fallback(ctx, res.Err)
	}
	return res.Value
}

func (r *StatusReporter) recommendations(ctx context.Context, summary entities.OverallSummary, rep entities.StatusReport) []string {
	user := fmt.Sprintf("Sprint completion: %d%%\n\nSprint health:\n%s\n\nWork item status:\n%s\n\nBlockers:\n%s\n\nDelays:\n%s\n\nAction items already identified:\n%s\n\nGenerate recommendations for improving this sprint.",
		rep.Percentage, toJSON(rep.Health), toJSON(rep.Status), orNone(summary.Blockers), orNone(summary.Delays), orNone(summary.ActionItems))

	reply, err := r.asker.Ask(ctx, 800, recommendationsPrompt, user)
	if err != nil {
		r.asker.Fallback(ctx, err)
		return append([]string{}, defaultRecommendations...)
	}
	res := lenient.Strings(reply, append([]string{}, defaultRecommendations...))
	if res.Fallback {
		r.asker.Fallback(ctx, res.Err)
	}
	if len(res.Value) > maxRecommendations {
		return res.Value[:maxRecommendations]
	}
	return res.Value
}
