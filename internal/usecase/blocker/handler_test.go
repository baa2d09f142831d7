package blocker

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/testutil"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
)

var stakeholders = Config{StakeholderEmails: []string{"pm@example.com"}}

func TestHandle_UrgentTicketBlocker(t *testing.T) {
	llm := testutil.NewFakeLLM().On("blocker description", "Sure, here it is:\n"+
		`{"affected_item_id":"PROJ-42","severity":"High","blocking_reason":"Waiting for DB credentials",`+
		`"action_required":true,"suggested_action":"Escalate to DevOps"}`)
	tickets := testutil.NewFakeTickets()
	notifier := &testutil.FakeNotifier{}
	state, _ := testutil.NewStateStore(t)
	h := NewHandler(llm, tickets, notifier, state, stakeholders, nil)

	callID := uuid.New()
	b := h.Handle(context.Background(), callID, "Alice", "I'm blocked on PROJ-42 waiting for credentials, this is urgent")

	assert.Equal(t, "Alice", b.Participant)
	assert.Equal(t, "PROJ-42", b.AffectedItemID)
	assert.Contains(t, []entities.Level{entities.LevelHigh, entities.LevelCritical}, b.Severity)
	assert.True(t, strings.HasPrefix(b.ID, "BLK-"))

	assert.True(t, b.TicketUpdated)
	assert.Equal(t, "31", tickets.Transitions["PROJ-42"])
	require.Len(t, tickets.Comments["PROJ-42"], 1)
	assert.Contains(t, tickets.Comments["PROJ-42"][0], "Blocker reported during scrum call by Alice")

	assert.True(t, b.NotificationSent)
	require.Equal(t, 1, notifier.Count())
	assert.Equal(t, "[BLOCKER] PROJ-42 - Waiting for DB credentials", notifier.Sent[0].Subject)
	assert.Equal(t, []string{"pm@example.com"}, notifier.Sent[0].To)

	var stored entities.Blocker
	require.True(t, state.Get(context.Background(), callID, statestore.BlockerKey(b.ID), &stored))
	assert.Equal(t, b.ID, stored.ID)
}

func TestHandle_ModelDownFallsBack(t *testing.T) {
	llm := testutil.NewFakeLLM()
	llm.Err = errors.New("rate limited")
	tickets := testutil.NewFakeTickets()
	notifier := &testutil.FakeNotifier{}
	state, _ := testutil.NewStateStore(t)
	h := NewHandler(llm, tickets, notifier, state, stakeholders, nil)

	b := h.Handle(context.Background(), uuid.New(), "Bob", "Stuck on PROJ-7 until the vendor replies")

	assert.Equal(t, entities.LevelMedium, b.Severity)
	assert.Equal(t, "Stuck on PROJ-7 until the vendor replies", b.BlockingReason)
	assert.True(t, b.ActionRequired)
	assert.Equal(t, defaultSuggestedAction, b.SuggestedAction)
	// the key is recovered from the description itself
	assert.Equal(t, "PROJ-7", b.AffectedItemID)
	assert.True(t, b.TicketUpdated)
	assert.False(t, b.NotificationSent)
	assert.Equal(t, 0, notifier.Count())
}

func TestHandle_UrgencyFloorWithoutModel(t *testing.T) {
	llm := testutil.NewFakeLLM()
	llm.Default = "no idea"
	state, _ := testutil.NewStateStore(t)
	h := NewHandler(llm, nil, &testutil.FakeNotifier{}, state, stakeholders, nil)

	b := h.Handle(context.Background(), uuid.New(), "Alice", "blocked on PROJ-42, this is urgent")
	assert.Contains(t, []entities.Level{entities.LevelHigh, entities.LevelCritical}, b.Severity)
	assert.True(t, b.NotificationSent)
	assert.False(t, b.TicketUpdated)
}

func TestHandle_SideEffectsFailIndependently(t *testing.T) {
	llm := testutil.NewFakeLLM().On("blocker description",
		`{"affected_item_id":"proj-9","severity":"critical","blocking_reason":"API down","action_required":true,"suggested_action":"Page on-call"}`)
	tickets := testutil.NewFakeTickets()
	tickets.StatusErr = errors.New("403")
	notifier := &testutil.FakeNotifier{}
	state, _ := testutil.NewStateStore(t)
	h := NewHandler(llm, tickets, notifier, state, stakeholders, nil)

	b := h.Handle(context.Background(), uuid.New(), "Carol", "API down")
	assert.Equal(t, "PROJ-9", b.AffectedItemID)
	assert.Equal(t, entities.LevelCritical, b.Severity)
	assert.False(t, b.TicketUpdated)
	assert.True(t, b.NotificationSent)

	tickets.StatusErr = nil
	notifier.Err = errors.New("smtp timeout")
	b = h.Handle(context.Background(), uuid.New(), "Carol", "API down")
	assert.True(t, b.TicketUpdated)
	assert.False(t, b.NotificationSent)
}

func TestHandle_NonTicketItemSkipsTracker(t *testing.T) {
	llm := testutil.NewFakeLLM().On("blocker description",
		`{"affected_item_id":"the login page","severity":"Low","blocking_reason":"design pending","action_required":false,"suggested_action":"Ping design"}`)
	tickets := testutil.NewFakeTickets()
	state, _ := testutil.NewStateStore(t)
	h := NewHandler(llm, tickets, nil, state, stakeholders, nil)

	b := h.Handle(context.Background(), uuid.New(), "Dana", "Waiting on designs")
	assert.False(t, b.TicketUpdated)
	assert.Empty(t, tickets.Transitions)
	assert.Equal(t, entities.LevelLow, b.Severity)
	assert.False(t, b.ActionRequired)
}

func TestParseDetails(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		severity string
		reason   string
		fallback bool
	}{
		{"complete", `{"affected_item_id":"","severity":"Low","blocking_reason":"r","action_required":false,"suggested_action":"s"}`, "Low", "r", false},
		{"partial keeps defaults", `{"severity":"High"}`, "High", "desc", true},
		{"garbage", `I cannot help with that`, "Medium", "desc", true},
		{"odd severity", `{"affected_item_id":"","severity":"Severe","blocking_reason":"r","action_required":true,"suggested_action":"s"}`, "Severe", "r", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ParseDetails(tt.reply, "desc")
			assert.Equal(t, tt.severity, res.Value.Severity)
			assert.Equal(t, tt.reason, res.Value.BlockingReason)
			assert.Equal(t, tt.fallback, res.Fallback)
			// severity is always mapped into the closed set by the handler
			assert.True(t, entities.NormalizeLevel(res.Value.Severity).IsValid())
		})
	}
}

func TestNextIDUnique(t *testing.T) {
	h := NewHandler(nil, nil, nil, nil, Config{}, nil)
	at := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, "BLK-20250304093000", h.nextID(at))
	assert.Equal(t, "BLK-20250304093000-2", h.nextID(at))
	assert.Equal(t, "BLK-20250304093000-3", h.nextID(at))

	// a new second starts a fresh sequence and forgets the old one
	later := at.Add(time.Second)
	assert.Equal(t, "BLK-20250304093001", h.nextID(later))
	assert.Equal(t, "BLK-20250304093001-2", h.nextID(later))
	assert.Equal(t, "BLK-20250304093001", h.lastID)
	assert.Equal(t, 2, h.seq)
}
