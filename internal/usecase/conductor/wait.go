package conductor

import (
	"context"
	"strings"
	"time"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/infrastructure/metrics"
)

type waitOutcome string

const (
	outcomeCaptured  waitOutcome = "captured"
	outcomeSilence   waitOutcome = "silence"
	outcomeTimeout   waitOutcome = "timeout"
	outcomeEmpty     waitOutcome = "empty"
	outcomeCancelled waitOutcome = "cancelled"
)

// await blocks until the participant finishes a turn or a timer fires.
// The silence timer only runs while the participant is not speaking: it is
// stopped by a speaking event and nothing but end of turn or the response
// timeout ends an answer in progress. Without voice activity (nil channel)
// the capture simply runs until a timer and the transcript decides whether
// anything was said.
func (c *Conductor) await(ctx context.Context, activity <-chan entities.VoiceActivity, name string) waitOutcome {
	vad := activity != nil
	heard := false
	talking := false

	hard := time.NewTimer(c.cfg.ResponseTimeout)
	defer hard.Stop()
	silence := time.NewTimer(c.cfg.SilenceTimeout)
	defer silence.Stop()

	expired := func(o waitOutcome) waitOutcome {
		if heard || !vad {
			return outcomeCaptured
		}
		return o
	}

	for {
		select {
		case <-ctx.Done():
			return outcomeCancelled
		case <-hard.C:
			return expired(outcomeTimeout)
		case <-silence.C:
			if talking {
				continue
			}
			return expired(outcomeSilence)
		case ev, ok := <-activity:
			if !ok {
				activity = nil
				if heard {
					return outcomeCaptured
				}
				continue
			}
			if !fromParticipant(ev.Speaker, name) {
				continue
			}
			switch ev.Kind {
			case entities.VoiceSpeaking:
				heard = true
				talking = true
				silence.Stop()
			case entities.VoiceEndOfTurn:
				if heard {
					return outcomeCaptured
				}
			}
		}
	}
}

// fromParticipant accepts anonymous events and events naming the participant
func fromParticipant(speaker, name string) bool {
	return speaker == "" || strings.EqualFold(strings.TrimSpace(speaker), strings.TrimSpace(name))
}

// drain discards events left over from the previous capture window
func drain(activity <-chan entities.VoiceActivity) {
	if activity == nil {
		return
	}
	for {
		select {
		case _, ok := <-activity:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func recordWait(o waitOutcome) {
	metrics.ResponseWait(string(o))
}
