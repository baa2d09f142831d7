package attendance

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

func newTracker(t *testing.T, reset bool) (*Tracker, *testutil.MemoryAttendance, *testutil.FakeLLM) {
	llm := testutil.NewFakeLLM().On("missed", "Have a teammate reach out.")
	repo := testutil.NewMemoryAttendance()
	state, _ := testutil.NewStateStore(t)
	return NewTracker(repo, llm, state, reset, nil), repo, llm
}

func TestRecordAbsence_ThreeCalls(t *testing.T) {
	tracker, repo, _ := newTracker(t, false)
	ctx := context.Background()

	var rec *entities.MissingDeveloper
	for i := 0; i < 3; i++ {
		rec = tracker.RecordAbsence(ctx, uuid.New(), "core", "Dana")
	}

	assert.Equal(t, 3, rec.ConsecutiveMisses)
	assert.True(t, rec.ActionRequired)
	assert.Equal(t, "Have a teammate reach out.", rec.SuggestedAction)

	stored, err := repo.FindByName(ctx, "dana")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 3, stored.ConsecutiveMisses)
}

func TestRecordAbsence_FirstIsOne(t *testing.T) {
	tracker, _, llm := newTracker(t, false)
	rec := tracker.RecordAbsence(context.Background(), uuid.New(), "core", "Eve")
	assert.Equal(t, 1, rec.ConsecutiveMisses)
	assert.False(t, rec.ActionRequired)
	assert.Empty(t, rec.SuggestedAction)
	assert.Empty(t, llm.Prompts())
}

func TestRecordAbsence_CaseInsensitiveAndOncePerCall(t *testing.T) {
	tracker, _, _ := newTracker(t, false)
	ctx := context.Background()
	call := uuid.New()

	tracker.RecordAbsence(ctx, call, "core", "Dana")
	rec := tracker.RecordAbsence(ctx, call, "core", "DANA")
	assert.Equal(t, 1, rec.ConsecutiveMisses)

	rec = tracker.RecordAbsence(ctx, uuid.New(), "core", " dana ")
	assert.Equal(t, 2, rec.ConsecutiveMisses)
}

func TestRecordAbsence_Monotonic(t *testing.T) {
	tracker, _, _ := newTracker(t, false)
	ctx := context.Background()

	prev := 0
	for i := 0; i < 6; i++ {
		rec := tracker.RecordAbsence(ctx, uuid.New(), "core", "Frank")
		assert.Greater(t, rec.ConsecutiveMisses, prev)
		prev = rec.ConsecutiveMisses
		// presence without reset never lowers the counter
		tracker.RecordPresence(ctx, "frank")
	}
}

func TestRecordPresence_Reset(t *testing.T) {
	tracker, repo, _ := newTracker(t, true)
	ctx := context.Background()

	tracker.RecordAbsence(ctx, uuid.New(), "core", "Gina")
	tracker.RecordAbsence(ctx, uuid.New(), "core", "Gina")
	tracker.RecordPresence(ctx, "Gina")

	rec, _ := repo.FindByName(ctx, "gina")
	require.NotNil(t, rec)
	assert.Equal(t, 0, rec.ConsecutiveMisses)
	assert.False(t, rec.ActionRequired)
	assert.NotNil(t, rec.LastAttendance)

	rec = tracker.RecordAbsence(ctx, uuid.New(), "core", "Gina")
	assert.Equal(t, 1, rec.ConsecutiveMisses)
	assert.NotNil(t, rec.LastAttendance)
}

func TestRecordAbsence_ModelDownUsesTier(t *testing.T) {
	llm := testutil.NewFakeLLM()
	llm.Err = errors.New("down")
	repo := testutil.NewMemoryAttendance()
	state, _ := testutil.NewStateStore(t)
	tracker := NewTracker(repo, llm, state, false, nil)
	ctx := context.Background()

	tracker.RecordAbsence(ctx, uuid.New(), "core", "Hal")
	callID := uuid.New()
	rec := tracker.RecordAbsence(ctx, callID, "core", "Hal")
	assert.Equal(t, EscalationTier("Hal", 2), rec.SuggestedAction)

	var stored entities.MissingDeveloper
	require.True(t, state.Get(ctx, callID, statestore.MissingDeveloperKey("Hal"), &stored))
	assert.Equal(t, 2, stored.ConsecutiveMisses)
}

func TestRecordAbsence_SaveFailureIsSoft(t *testing.T) {
	tracker, repo, _ := newTracker(t, false)
	repo.SaveErr = errors.New("db down")
	rec := tracker.RecordAbsence(context.Background(), uuid.New(), "core", "Ivan")
	assert.Equal(t, 1, rec.ConsecutiveMisses)
}

func TestEscalationTier(t *testing.T) {
	assert.Empty(t, EscalationTier("A", 1))
	assert.Contains(t, EscalationTier("A", 2), "teammate")
	assert.Contains(t, EscalationTier("A", 3), "manager")
	assert.Contains(t, EscalationTier("A", 7), "project lead")
}
