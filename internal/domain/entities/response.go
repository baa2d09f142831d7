package entities

import "time"

// Question is a prompt spoken to a participant
type Question struct {
	Participant string    `json:"team_member"`
	Text        string    `json:"question"`
	Timestamp   time.Time `json:"timestamp"`
}

// ResponseRecord is one participant's captured utterance
type ResponseRecord struct {
	Participant string    `json:"team_member"`
	Text        string    `json:"response"`
	Timestamp   time.Time `json:"timestamp"`
}

// Outcome tags what a classified response carries
type Outcome string

const (
	OutcomeIrrelevant          Outcome = "irrelevant"
	OutcomeRelevant            Outcome = "relevant"
	OutcomeRelevantWithBlocker Outcome = "relevant_with_blocker"
	OutcomeRelevantWithDelay   Outcome = "relevant_with_delay"
	OutcomeBlockerAndDelay     Outcome = "relevant_with_blocker_and_delay"
)

// Verdict is the structured classification of a response
type Verdict struct {
	IsRelevant         bool   `json:"is_relevant"`
	HasBlocker         bool   `json:"has_blocker"`
	BlockerDescription string `json:"blocker_description"`
	HasDelay           bool   `json:"has_delay"`
	DelayDescription   string `json:"delay_description"`
}

// DefaultVerdict is used whenever the model reply cannot be parsed
func DefaultVerdict() Verdict {
	return Verdict{IsRelevant: true}
}

// Outcome derives the tagged outcome from the verdict flags
func (v Verdict) Outcome() Outcome {
	switch {
	case v.HasBlocker && v.HasDelay:
		return OutcomeBlockerAndDelay
	case v.HasBlocker:
		return OutcomeRelevantWithBlocker
	case v.HasDelay:
		return OutcomeRelevantWithDelay
	case v.IsRelevant:
		return OutcomeRelevant
	default:
		return OutcomeIrrelevant
	}
}

// ProcessedResponse is a response with its verdict and any escalation results
type ProcessedResponse struct {
	Response ResponseRecord `json:"response"`
	Verdict  Verdict        `json:"verdict"`
	Outcome  Outcome        `json:"outcome"`
	Blocker  *Blocker       `json:"blocker,omitempty"`
	Delay    *Delay         `json:"delay,omitempty"`
	Fallback bool           `json:"fallback,omitempty"`
}
