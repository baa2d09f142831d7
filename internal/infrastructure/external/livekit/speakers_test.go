package livekit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

func next(t *testing.T, ch <-chan entities.VoiceActivity) entities.VoiceActivity {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		require.FailNow(t, "no voice activity")
		return entities.VoiceActivity{}
	}
}

func TestSpeakerTracker_TurnEndsAfterGap(t *testing.T) {
	tr := newSpeakerTracker(20 * time.Millisecond)
	tr.setEnabled(true)

	tr.update([]string{"Alice"})
	ev := next(t, tr.out)
	assert.Equal(t, entities.VoiceSpeaking, ev.Kind)
	assert.Equal(t, "Alice", ev.Speaker)

	tr.update(nil)
	ev = next(t, tr.out)
	assert.Equal(t, entities.VoiceEndOfTurn, ev.Kind)
	assert.Equal(t, "Alice", ev.Speaker)
}

func TestSpeakerTracker_ResumeCancelsEndOfTurn(t *testing.T) {
	tr := newSpeakerTracker(50 * time.Millisecond)
	tr.setEnabled(true)

	tr.update([]string{"Alice"})
	next(t, tr.out)
	tr.update(nil)
	tr.update([]string{"Alice"})
	ev := next(t, tr.out)
	assert.Equal(t, entities.VoiceSpeaking, ev.Kind)

	select {
	case ev := <-tr.out:
		assert.Failf(t, "unexpected event", "%+v", ev)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestSpeakerTracker_DisabledEmitsNothing(t *testing.T) {
	tr := newSpeakerTracker(time.Millisecond)

	tr.update([]string{"Bob"})
	tr.update(nil)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, tr.out)

	tr.close()
	tr.close()
	tr.update([]string{"Bob"})
}
