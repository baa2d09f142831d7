package delay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/testutil"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
)

func TestHandle(t *testing.T) {
	llm := testutil.NewFakeLLM().
		On("delay description", "```json\n"+`{"affected_item_id":"PROJ-12","estimated_recovery_days":2,"impact_level":"high",`+
			`"root_cause":"Flaky test environment","mitigation_suggestion":"Pair with QA"}`+"\n```").
		On("follow-up questions", `["When will the environment be stable?","Who owns the fix?","Can QA help?","Extra?"]`)
	state, _ := testutil.NewStateStore(t)
	h := NewHandler(llm, state, nil)

	callID := uuid.New()
	d := h.Handle(context.Background(), callID, "Bob", "PROJ-12 will slip two days because the test environment is flaky")

	assert.Equal(t, "Bob", d.Participant)
	assert.Equal(t, "PROJ-12", d.AffectedItemID)
	assert.Equal(t, 2, d.RecoveryDays)
	assert.Equal(t, entities.LevelHigh, d.Impact)
	assert.Equal(t, "Flaky test environment", d.RootCause)
	assert.Len(t, d.FollowUpQuestions, MaxFollowUps)

	var stored entities.Delay
	require.True(t, state.Get(context.Background(), callID, statestore.DelayKey(d.ID), &stored))
	assert.Equal(t, d.FollowUpQuestions, stored.FollowUpQuestions)
}

func TestHandle_ModelDown(t *testing.T) {
	llm := testutil.NewFakeLLM()
	llm.Err = errors.New("503")
	state, _ := testutil.NewStateStore(t)
	h := NewHandler(llm, state, nil)

	d := h.Handle(context.Background(), uuid.New(), "Bob", "Running late on the import job")

	assert.Equal(t, 1, d.RecoveryDays)
	assert.Equal(t, entities.LevelMedium, d.Impact)
	assert.Equal(t, defaultRootCause, d.RootCause)
	assert.Equal(t, defaultMitigation, d.Mitigation)
	assert.Equal(t, []string{defaultFollowUp}, d.FollowUpQuestions)
}

func TestParseDetails_ClampsAndNormalizes(t *testing.T) {
	res := ParseDetails(`{"affected_item_id":"x-1","estimated_recovery_days":-4,"impact_level":"huge","root_cause":"","mitigation_suggestion":""}`)
	assert.False(t, res.Fallback)
	assert.Equal(t, 0, res.Value.RecoveryDays)
	assert.Equal(t, "X-1", res.Value.AffectedItemID)
	assert.Equal(t, defaultRootCause, res.Value.RootCause)
	assert.Equal(t, defaultMitigation, res.Value.Mitigation)
	assert.Equal(t, entities.LevelMedium, entities.NormalizeLevel(res.Value.Impact))
}

func TestParseFollowUps(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		want     []string
		fallback bool
	}{
		{"json array", `Here you go: ["Is the API ready?", "What is left?"]`, []string{"Is the API ready?", "What is left?"}, false},
		{"question lines", "1. What is blocking the merge?\nsome note\n2. Who can review it?", []string{"1. What is blocking the merge?", "2. Who can review it?"}, true},
		{"nothing usable", "ok", []string{defaultFollowUp}, true},
		{"empty array", "[]", []string{defaultFollowUp}, true},
		{"capped", `["a?","b?","c?","d?"]`, []string{"a?", "b?", "c?"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseFollowUps(tt.reply)
			assert.Equal(t, tt.want, res.Value)
			assert.Equal(t, tt.fallback, res.Fallback)
		})
	}
}

func TestNextIDUnique(t *testing.T) {
	h := NewHandler(nil, nil, nil)
	at := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "DLY-20250304093000", h.nextID(at))
	assert.Equal(t, "DLY-20250304093000-2", h.nextID(at))
	assert.Equal(t, "DLY-20250304093001", h.nextID(at.Add(time.Second)))
	assert.Equal(t, 1, h.seq)
}
