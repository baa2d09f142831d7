package conductor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/testutil"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/ai"
)

type stubProcessor struct {
	mu   sync.Mutex
	seen []entities.ResponseRecord
}

func (s *stubProcessor) Process(_ context.Context, _ uuid.UUID, rec entities.ResponseRecord) entities.ProcessedResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, rec)
	out := entities.ProcessedResponse{Response: rec, Verdict: entities.DefaultVerdict()}
	if strings.Contains(rec.Text, "blocked") {
		out.Verdict.HasBlocker = true
		out.Blocker = &entities.Blocker{ID: "BLK-1", Participant: rec.Participant, Severity: entities.LevelHigh}
	}
	out.Outcome = out.Verdict.Outcome()
	return out
}

func fastConfig() Config {
	return Config{ResponseTimeout: 200 * time.Millisecond, SilenceTimeout: 50 * time.Millisecond, MaxQuestions: 3}
}

func testCall(names ...string) *entities.Call {
	contacts := make([]entities.Contact, 0, len(names))
	for _, n := range names {
		contacts = append(contacts, entities.Contact{Name: n})
	}
	call := entities.NewCall("core", "Apollo", contacts, 5)
	sprint := &entities.Sprint{Name: "Sprint 7", StartDate: time.Now().AddDate(0, 0, -3), EndDate: time.Now().AddDate(0, 0, 11)}
	call.WithSnapshot(sprint, []entities.WorkItem{{ItemKey: "PROJ-1", Title: "Login", Assignee: "Alice", Points: 3}}, nil)
	return call
}

func newConductor(t *testing.T, llm *testutil.FakeLLM, proc ResponseProcessor) (*Conductor, *statestore.Store) {
	state, _ := testutil.NewStateStore(t)
	speech := ai.NewSpeechService(nil, ai.PassthroughTranscriber{}, nil)
	return New(llm, proc, speech, state, fastConfig(), nil), state
}

func TestRun_ResponsesAndMissing(t *testing.T) {
	llm := testutil.NewFakeLLM().
		On("Generate questions for", "1. How is PROJ-1 going?\n2. Any new blockers?").
		On("move on", "Bob seems unavailable, moving on.").
		On("conclusion", "Thanks all.").
		On("introduction", "Welcome to standup.")
	proc := &stubProcessor{}
	c, state := newConductor(t, llm, proc)

	session := testutil.NewFakeSession(
		testutil.Turn{Speaker: "Alice", Text: "Fine, thanks"},
		testutil.Turn{Speaker: "Alice", Text: "PROJ-1 is nearly done"},
		testutil.Turn{Speaker: "Alice", Text: "I'm blocked on PROJ-2"},
		testutil.Turn{Silent: true},
	)
	call := testCall("Alice", "Bob")

	results, err := c.Run(context.Background(), call, session)
	require.NoError(t, err)

	assert.Len(t, results.Responses, 3)
	assert.Equal(t, []string{"Bob"}, results.MissingDevelopers)
	require.Len(t, results.Blockers, 1)
	assert.Equal(t, "Alice", results.Blockers[0].Participant)

	// Alice and Bob both get a greeting and 2 questions; Bob answers none
	require.Len(t, results.Questions, 6)
	assert.Equal(t, Greeting("Alice"), results.Questions[0].Text)
	assert.Equal(t, "How is PROJ-1 going?", results.Questions[1].Text)
	assert.Equal(t, Greeting("Bob"), results.Questions[3].Text)
	assert.Equal(t, "Any new blockers?", results.Questions[5].Text)

	spoken := session.SpokenTexts()
	assert.Equal(t, "Welcome to standup.", spoken[0])
	assert.Contains(t, spoken, "Bob seems unavailable, moving on.")
	assert.Equal(t, "Thanks all.", spoken[len(spoken)-1])
	assert.Equal(t, 1, session.Closed)

	var stored entities.CallResults
	require.True(t, state.Get(context.Background(), call.ID, statestore.KeyCallResults, &stored))
	assert.Len(t, stored.Responses, 3)
	var phase Phase
	require.True(t, state.Get(context.Background(), call.ID, statestore.KeyPhase, &phase))
	assert.Equal(t, PhaseClosed, phase)
}

func TestRun_EmptyTranscriptIsMissing(t *testing.T) {
	llm := testutil.NewFakeLLM().On("Generate questions for", "What did you do?")
	c, _ := newConductor(t, llm, &stubProcessor{})
	session := testutil.NewFakeSession(testutil.Turn{Speaker: "Carol", Mumble: true})

	results, err := c.Run(context.Background(), testCall("Carol"), session)
	require.NoError(t, err)
	assert.Empty(t, results.Responses)
	assert.Equal(t, []string{"Carol"}, results.MissingDevelopers)
	// the follow-up is still asked after the unusable greeting
	require.Len(t, results.Questions, 2)
	assert.Equal(t, "What did you do?", results.Questions[1].Text)
}

func TestRun_TimeoutMovesToNextQuestion(t *testing.T) {
	llm := testutil.NewFakeLLM().
		On("Generate questions for", "1. How is PROJ-1 going?\n2. Any new blockers?").
		On("move on", "Let's keep going.")
	proc := &stubProcessor{}
	c, _ := newConductor(t, llm, proc)
	session := testutil.NewFakeSession(
		testutil.Turn{Silent: true},
		testutil.Turn{Speaker: "Alice", Text: "PROJ-1 is in review"},
		testutil.Turn{Speaker: "Alice", Text: "nothing new"},
	)

	results, err := c.Run(context.Background(), testCall("Alice"), session)
	require.NoError(t, err)

	require.Len(t, results.Questions, 3)
	require.Len(t, results.Responses, 2)
	assert.Equal(t, "PROJ-1 is in review", results.Responses[0].Text)
	assert.Equal(t, "nothing new", results.Responses[1].Text)
	assert.Equal(t, []string{"Alice"}, results.MissingDevelopers)
	assert.Len(t, proc.seen, 2)

	spoken := session.SpokenTexts()
	assert.Contains(t, spoken, "Let's keep going.")
	assert.Equal(t, 1, strings.Count(strings.Join(spoken, "|"), Greeting("Alice")))
}

func TestRun_ModelDownStillRuns(t *testing.T) {
	llm := testutil.NewFakeLLM()
	llm.Err = errors.New("offline")
	proc := &stubProcessor{}
	c, _ := newConductor(t, llm, proc)
	session := testutil.NewFakeSession(
		testutil.Turn{Speaker: "Alice", Text: "hello"},
		testutil.Turn{Speaker: "Alice", Text: "login almost done"},
		testutil.Turn{Speaker: "Alice", Text: "no blockers"},
	)

	results, err := c.Run(context.Background(), testCall("Alice"), session)
	require.NoError(t, err)
	// greeting + two fallback questions (assigned item, generic)
	assert.Len(t, results.Questions, 3)
	assert.Equal(t, "How is PROJ-1 going?", results.Questions[1].Text)
	assert.Len(t, proc.seen, 3)
	assert.True(t, strings.HasPrefix(session.SpokenTexts()[0], "Good morning, core team."))
}

func TestRun_SessionFailureClosesAndPropagates(t *testing.T) {
	llm := testutil.NewFakeLLM().On("Generate questions for", "Q?")
	c, state := newConductor(t, llm, &stubProcessor{})
	session := testutil.NewFakeSession(testutil.Turn{Speaker: "Alice", Text: "hi"})
	session.SpeakErrAt = 2

	call := testCall("Alice")
	_, err := c.Run(context.Background(), call, session)
	require.Error(t, err)
	assert.ErrorIs(t, err, session.SpeakErr)
	assert.Equal(t, 1, session.Closed)

	var phase Phase
	require.True(t, state.Get(context.Background(), call.ID, statestore.KeyPhase, &phase))
	assert.Equal(t, PhaseErrorClosing, phase)
}

func TestRun_Cancelled(t *testing.T) {
	llm := testutil.NewFakeLLM()
	c, _ := newConductor(t, llm, &stubProcessor{})
	session := testutil.NewFakeSession()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Run(ctx, testCall("Alice"), session)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, session.Closed)
}

func TestAwait(t *testing.T) {
	c, _ := newConductor(t, testutil.NewFakeLLM(), &stubProcessor{})
	now := time.Now()

	t.Run("other speakers are ignored", func(t *testing.T) {
		ch := make(chan entities.VoiceActivity, 4)
		ch <- entities.VoiceActivity{Kind: entities.VoiceSpeaking, Speaker: "Bob", At: now}
		ch <- entities.VoiceActivity{Kind: entities.VoiceEndOfTurn, Speaker: "Bob", At: now}
		assert.Equal(t, outcomeSilence, c.await(context.Background(), ch, "Alice"))
	})

	t.Run("end of turn after speech", func(t *testing.T) {
		ch := make(chan entities.VoiceActivity, 4)
		ch <- entities.VoiceActivity{Kind: entities.VoiceSpeaking, Speaker: "alice", At: now}
		ch <- entities.VoiceActivity{Kind: entities.VoiceEndOfTurn, Speaker: "alice", At: now}
		assert.Equal(t, outcomeCaptured, c.await(context.Background(), ch, "Alice"))
	})

	t.Run("end of turn without speech keeps waiting", func(t *testing.T) {
		ch := make(chan entities.VoiceActivity, 4)
		ch <- entities.VoiceActivity{Kind: entities.VoiceEndOfTurn, At: now}
		assert.Equal(t, outcomeSilence, c.await(context.Background(), ch, "Alice"))
	})

	t.Run("speech without end of turn runs to the response timeout", func(t *testing.T) {
		ch := make(chan entities.VoiceActivity, 4)
		ch <- entities.VoiceActivity{Kind: entities.VoiceSpeaking, At: now}
		start := time.Now()
		assert.Equal(t, outcomeCaptured, c.await(context.Background(), ch, "Alice"))
		assert.GreaterOrEqual(t, time.Since(start), fastConfig().ResponseTimeout)
	})

	t.Run("long answer outlasts the silence timeout", func(t *testing.T) {
		ch := make(chan entities.VoiceActivity)
		ended := make(chan time.Time, 1)
		go func() {
			ch <- entities.VoiceActivity{Kind: entities.VoiceSpeaking, Speaker: "Alice", At: now}
			time.Sleep(3 * fastConfig().SilenceTimeout)
			ended <- time.Now()
			ch <- entities.VoiceActivity{Kind: entities.VoiceEndOfTurn, Speaker: "Alice", At: now}
		}()
		assert.Equal(t, outcomeCaptured, c.await(context.Background(), ch, "Alice"))
		select {
		case at := <-ended:
			assert.False(t, time.Now().Before(at))
		default:
			t.Fatal("capture ended before the speaker finished")
		}
	})

	t.Run("no voice activity support", func(t *testing.T) {
		assert.Equal(t, outcomeCaptured, c.await(context.Background(), nil, "Alice"))
	})

	t.Run("hard timeout while speech keeps coming", func(t *testing.T) {
		ch := make(chan entities.VoiceActivity)
		done := make(chan struct{})
		go func() {
			defer close(done)
			ticker := time.NewTicker(10 * time.Millisecond)
			defer ticker.Stop()
			for i := 0; i < 40; i++ {
				<-ticker.C
				select {
				case ch <- entities.VoiceActivity{Kind: entities.VoiceSpeaking, Speaker: "Alice"}:
				case <-time.After(50 * time.Millisecond):
					return
				}
			}
		}()
		assert.Equal(t, outcomeCaptured, c.await(context.Background(), ch, "Alice"))
		<-done
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Equal(t, outcomeCancelled, c.await(ctx, make(chan entities.VoiceActivity), "Alice"))
	})
}
