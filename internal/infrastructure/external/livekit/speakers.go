package livekit

import (
	"sync"
	"time"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

// speakerTracker turns active-speaker updates into voice activity. A speaker
// who drops out of the active set for longer than gap has ended their turn.
type speakerTracker struct {
	mu       sync.Mutex
	gap      time.Duration
	out      chan entities.VoiceActivity
	speaking map[string]bool
	pending  map[string]*time.Timer
	enabled  bool
	closed   bool
	now      func() time.Time
}

func newSpeakerTracker(gap time.Duration) *speakerTracker {
	return &speakerTracker{
		gap:      gap,
		out:      make(chan entities.VoiceActivity, 64),
		speaking: map[string]bool{},
		pending:  map[string]*time.Timer{},
		now:      time.Now,
	}
}

// setEnabled gates emission to capture windows
func (t *speakerTracker) setEnabled(on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = on
	if !on {
		for name, timer := range t.pending {
			timer.Stop()
			delete(t.pending, name)
		}
	}
}

// update receives the full set of currently active speakers
func (t *speakerTracker) update(active []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := map[string]bool{}
	for _, name := range active {
		if name == "" {
			continue
		}
		now[name] = true
		if timer, ok := t.pending[name]; ok {
			timer.Stop()
			delete(t.pending, name)
		}
		if !t.speaking[name] {
			t.emitLocked(entities.VoiceSpeaking, name)
		}
	}

	for name := range t.speaking {
		if now[name] {
			continue
		}
		if _, ok := t.pending[name]; ok || !t.enabled {
			continue
		}
		speaker := name
		t.pending[speaker] = time.AfterFunc(t.gap, func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if _, ok := t.pending[speaker]; !ok {
				return
			}
			delete(t.pending, speaker)
			t.emitLocked(entities.VoiceEndOfTurn, speaker)
		})
	}
	t.speaking = now
}

func (t *speakerTracker) emitLocked(kind entities.VoiceActivityKind, speaker string) {
	if !t.enabled || t.closed {
		return
	}
	select {
	case t.out <- entities.VoiceActivity{Kind: kind, Speaker: speaker, At: t.now()}:
	default:
	}
}

func (t *speakerTracker) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for _, timer := range t.pending {
		timer.Stop()
	}
	t.pending = map[string]*time.Timer{}
	close(t.out)
}
