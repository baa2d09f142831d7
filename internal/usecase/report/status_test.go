package report

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/testutil"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
)

func sprintItems() []entities.WorkItem {
	return []entities.WorkItem{
		{ItemKey: "PROJ-1", Title: "Login", Assignee: "Alice", Status: entities.WorkItemStatusDone, Points: 5},
		{ItemKey: "PROJ-2", Title: "Signup", Assignee: "Bob", Status: entities.WorkItemStatusInProgress, Points: 8},
		{ItemKey: "PROJ-3", Title: "Billing", Assignee: "Carol", Status: entities.WorkItemStatusToDo, Points: 7},
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 25, Percentage(5, 20))
	assert.Equal(t, 0, Percentage(0, 0))
	assert.Equal(t, 0, Percentage(3, 0))
	assert.Equal(t, 100, Percentage(30, 20))
	assert.Equal(t, 33, Percentage(1, 3))
}

func TestStatusReport_Points(t *testing.T) {
	llm := testutil.NewFakeLLM().
		On("analyzing sprint health", `{"overall":"Moderate","velocity":"On Target","quality":"Good","team_collaboration":"Strong","risk_factors":["Billing not started"],"positive_factors":["Login shipped"]}`).
		On("recommending sprint improvements", `["Start billing today","Pair Bob with Alice"]`)
	state, _ := testutil.NewStateStore(t)
	r := NewStatusReporter(llm, state, nil)

	callID := uuid.New()
	summary := entities.OverallSummary{SprintHealth: entities.SprintHealthModerate}
	rep := r.Generate(context.Background(), callID, summary, sprintItems())

	assert.Equal(t, 20, rep.TotalPoints)
	assert.Equal(t, 5, rep.CompletedPoints)
	assert.Equal(t, 25, rep.Percentage)
	assert.Equal(t, "Strong", rep.Health.Collaboration)
	assert.Equal(t, []string{"Billing not started"}, rep.Health.RiskFactors)
	assert.Equal(t, []string{"Start billing today", "Pair Bob with Alice"}, rep.Recommendations)

	require.Len(t, rep.Status, 3)
	assert.Equal(t, entities.CategoryCompleted, rep.Status["PROJ-1"].Category)
	assert.Equal(t, entities.CategoryBacklog, rep.Status["PROJ-2"].Category)
	assert.Equal(t, entities.CategoryBacklog, rep.Status["PROJ-3"].Category)

	var stored entities.StatusReport
	require.True(t, state.Get(context.Background(), callID, statestore.KeyStatusReport, &stored))
	assert.Equal(t, 25, stored.Percentage)
}

func TestStatusReport_EmptySprint(t *testing.T) {
	r := NewStatusReporter(testutil.NewFakeLLM(), nil, nil)

	rep := r.Generate(context.Background(), uuid.New(), entities.OverallSummary{SprintHealth: entities.SprintHealthGood}, nil)

	assert.Equal(t, 0, rep.Percentage)
	assert.Equal(t, 0, rep.TotalPoints)
	assert.Empty(t, rep.Status)
}

func TestStatusReport_ModelDown(t *testing.T) {
	llm := testutil.NewFakeLLM()
	llm.Err = errors.New("model offline")
	r := NewStatusReporter(llm, nil, nil)

	rep := r.Generate(context.Background(), uuid.New(), entities.OverallSummary{SprintHealth: entities.SprintHealthAtRisk}, sprintItems())

	assert.Equal(t, 25, rep.Percentage)
	assert.Equal(t, "At Risk", rep.Health.Overall)
	assert.Equal(t, "Unknown", rep.Health.Velocity)
	assert.NotNil(t, rep.Health.RiskFactors)
	assert.Equal(t, []string{"Review sprint status manually."}, rep.Recommendations)
}

func TestStatusReport_RecommendationsCapped(t *testing.T) {
	llm := testutil.NewFakeLLM().
		On("recommending sprint improvements", "- one\n- two\n- three\n- four\n- five\n- six\n- seven")
	r := NewStatusReporter(llm, nil, nil)

	rep := r.Generate(context.Background(), uuid.New(), entities.OverallSummary{}, nil)

	assert.Len(t, rep.Recommendations, maxRecommendations)
	assert.Equal(t, "one", rep.Recommendations[0])
}

func TestCategorizeStories(t *testing.T) {
	stories := map[string]entities.StoryStatus{
		"PROJ-1": {Title: "Login", Status: "Done", Completion: 100},
		"PROJ-2": {Title: "Signup", Status: "Blocked", Completion: 70},
		"PROJ-3": {Title: "Billing", Status: "In Progress", Completion: 60},
		"PROJ-4": {Title: "Search", Status: "In Progress", Completion: 20},
		"PROJ-5": {Title: "Export", Status: "To Do"},
	}

	got := CategorizeStories(stories, sprintItems())

	require.Len(t, got, 5)
	assert.Equal(t, entities.CategoryCompleted, got["PROJ-1"].Category)
	assert.Equal(t, entities.CategoryBlocked, got["PROJ-2"].Category)
	assert.Equal(t, entities.CategoryOnTrack, got["PROJ-3"].Category)
	assert.Equal(t, entities.CategoryDelayed, got["PROJ-4"].Category)
	assert.Equal(t, entities.CategoryBacklog, got["PROJ-5"].Category)
}

func TestParseIndicators(t *testing.T) {
	res := ParseIndicators(`Here you go: {"overall":"Good","velocity":"Above Target"}`, entities.SprintHealthModerate)
	assert.False(t, res.Fallback)
	assert.Equal(t, "Good", res.Value.Overall)
	assert.Equal(t, "Above Target", res.Value.Velocity)
	assert.Equal(t, "Unknown", res.Value.Quality)
	assert.NotNil(t, res.Value.PositiveFactors)

	res = ParseIndicators("looks fine to me", entities.SprintHealthCritical)
	assert.True(t, res.Fallback)
	assert.Equal(t, "Critical", res.Value.Overall)
}
