package summary

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

func TestSummarize_EmptyCall(t *testing.T) {
	llm := testutil.NewFakeLLM().On("summarizing", "Nobody spoke today.")
	state, _ := testutil.NewStateStore(t)
	s := NewSummarizer(llm, state, nil)

	callID := uuid.New()
	out := s.Summarize(context.Background(), callID, *entities.NewCallResults())

	assert.Equal(t, "Nobody spoke today.", out.Summary)
	assert.Equal(t, entities.SprintHealthGood, out.SprintHealth)
	assert.NotNil(t, out.ActionItems)
	assert.Empty(t, out.ActionItems)
	assert.NotNil(t, out.Participants)
	assert.NotNil(t, out.MissingParticipants)
	assert.NotNil(t, out.Blockers)
	assert.NotNil(t, out.Delays)
	assert.NotNil(t, out.StoriesStatus)
	// only the narrative prompt was needed
	assert.Len(t, llm.Prompts(), 1)

	var stored entities.OverallSummary
	require.True(t, state.Get(context.Background(), callID, statestore.KeyOverallSummary, &stored))
	assert.Equal(t, entities.SprintHealthGood, stored.SprintHealth)
}

func TestSummarize_FullCall(t *testing.T) {
	llm := testutil.NewFakeLLM().
		On("summarizing", "Good standup overall.").
		On("work item status from standup", `{"PROJ-1":{"title":"Login","status":"In Progress","completion_percentage":140,"assignee":"Alice"}}`).
		On("assessing sprint health", "At risk, mostly due to the DB blocker.").
		On("action items", "Action items:\n- Get DB credentials for Alice\n- Check in with Bob")
	s := NewSummarizer(llm, nil, nil)

	results := entities.NewCallResults()
	results.AddProcessed(entities.ProcessedResponse{
		Response: entities.ResponseRecord{Participant: "Alice", Text: "PROJ-1 is going well"},
	})
	results.AddProcessed(entities.ProcessedResponse{
		Response: entities.ResponseRecord{Participant: "alice", Text: "but blocked on creds"},
		Blocker:  &entities.Blocker{Participant: "alice", Severity: entities.LevelHigh, SuggestedAction: "Ask ops"},
	})
	results.AddMissing("Bob")
	results.AddMissing("bob")

	out := s.Summarize(context.Background(), uuid.New(), *results)

	assert.Equal(t, []string{"Alice"}, out.Participants)
	assert.Equal(t, []string{"Bob"}, out.MissingParticipants)
	assert.Equal(t, entities.SprintHealthAtRisk, out.SprintHealth)
	require.Contains(t, out.StoriesStatus, "PROJ-1")
	assert.Equal(t, 100, out.StoriesStatus["PROJ-1"].Completion)
	require.Len(t, out.ActionItems, 2)
	assert.Equal(t, entities.ActionItem{Action: "Get DB credentials for Alice", Assignee: "Team", Priority: entities.PriorityMedium}, out.ActionItems[0])
}

func TestSummarize_ModelDown(t *testing.T) {
	llm := testutil.NewFakeLLM()
	llm.Err = errors.New("offline")
	s := NewSummarizer(llm, nil, nil)

	results := entities.NewCallResults()
	results.AddProcessed(entities.ProcessedResponse{
		Response: entities.ResponseRecord{Participant: "Alice", Text: "stuck"},
		Blocker:  &entities.Blocker{Participant: "Alice", Severity: entities.LevelCritical, SuggestedAction: "Page ops", BlockingReason: "prod down"},
	})
	results.AddMissing("Bob")

	out := s.Summarize(context.Background(), uuid.New(), *results)
	assert.Contains(t, out.Summary, "Missing: Bob")
	assert.Equal(t, entities.SprintHealthCritical, out.SprintHealth)
	require.Len(t, out.ActionItems, 2)
	assert.Equal(t, entities.PriorityHigh, out.ActionItems[0].Priority)
	assert.Equal(t, "Alice", out.ActionItems[0].Assignee)
	assert.Empty(t, out.StoriesStatus)
}

func TestParseHealth(t *testing.T) {
	tests := map[string]entities.SprintHealth{
		"Critical":                    entities.SprintHealthCritical,
		"the sprint is AT RISK":       entities.SprintHealthAtRisk,
		"Moderate":                    entities.SprintHealthModerate,
		"good":                        entities.SprintHealthGood,
		"no idea":                     entities.SprintHealthGood,
		"moderate but critical risks": entities.SprintHealthCritical,
		"moderate risk":               entities.SprintHealthAtRisk,
	}
	for reply, want := range tests {
		assert.Equal(t, want, ParseHealth(reply), reply)
	}
}

func TestParseActionItems(t *testing.T) {
	res := ParseActionItems(`[{"action":"Unblock PROJ-42","assignee":"","priority":"critical"},{"action":"","priority":"low"}]`)
	assert.False(t, res.Fallback)
	require.Len(t, res.Value, 1)
	assert.Equal(t, entities.ActionItem{Action: "Unblock PROJ-42", Assignee: "Team", Priority: entities.PriorityHigh}, res.Value[0])

	res = ParseActionItems("1. Pair on PROJ-7\n* Reschedule demo\nplain text")
	assert.True(t, res.Fallback)
	assert.Equal(t, []entities.ActionItem{
		{Action: "Pair on PROJ-7", Assignee: "Team", Priority: entities.PriorityMedium},
		{Action: "Reschedule demo", Assignee: "Team", Priority: entities.PriorityMedium},
	}, res.Value)

	res = ParseActionItems("nothing")
	assert.True(t, res.Fallback)
	assert.Empty(t, res.Value)
}

func TestParseStoriesStatus(t *testing.T) {
	res := ParseStoriesStatus(`{"1":{"title":"x","status":"To Do","completion_percentage":-5}}`)
	assert.Equal(t, 0, res.Value["1"].Completion)

	res = ParseStoriesStatus("garbage")
	assert.True(t, res.Fallback)
	assert.NotNil(t, res.Value)
	assert.Empty(t, res.Value)
}
