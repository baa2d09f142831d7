package summary

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

type responseLine struct {
	Participant string `json:"team_member"`
	Response    string `json:"response"`
}

func responseDigest(rs []entities.ResponseRecord) []responseLine {
	out := make([]responseLine, 0, len(rs))
	for _, r := range rs {
		out = append(out, responseLine{Participant: r.Participant, Response: r.Text})
	}
	return out
}

func participants(results entities.CallResults) []string {
	names := make([]string, 0, len(results.Responses))
	for _, r := range results.Responses {
		names = append(names, r.Participant)
	}
	return names
}

func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

func orNone[T any](list []T) string {
	if len(list) == 0 {
		return "None identified"
	}
	return toJSON(list)
}

func nonNilBlockers(b []entities.Blocker) []entities.Blocker {
	if b == nil {
		return []entities.Blocker{}
	}
	return b
}

func nonNilDelays(d []entities.Delay) []entities.Delay {
	if d == nil {
		return []entities.Delay{}
	}
	return d
}

func fallbackNarrative(out entities.OverallSummary, responses int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d team members gave updates (%d responses).", len(out.Participants), responses)
	if len(out.MissingParticipants) > 0 {
		fmt.Fprintf(&sb, " Missing: %s.", strings.Join(out.MissingParticipants, ", "))
	}
	fmt.Fprintf(&sb, " %d blockers and %d delays were reported.", len(out.Blockers), len(out.Delays))
	for _, b := range out.Blockers {
		fmt.Fprintf(&sb, " %s is blocked: %s.", b.Participant, b.BlockingReason)
	}
	for _, d := range out.Delays {
		fmt.Fprintf(&sb, " %s reported a delay of about %d days: %s.", d.Participant, d.RecoveryDays, d.Description)
	}
	return sb.String()
}

// fallbackHealth rates the sprint from escalation levels alone
func fallbackHealth(out entities.OverallSummary) entities.SprintHealth {
	escalated := 0
	for _, b := range out.Blockers {
		if b.Severity == entities.LevelCritical {
			return entities.SprintHealthCritical
		}
		if b.Severity.IsEscalated() {
			escalated++
		}
	}
	for _, d := range out.Delays {
		if d.Impact.IsEscalated() {
			escalated++
		}
	}
	switch {
	case escalated > 0:
		return entities.SprintHealthAtRisk
	case len(out.Blockers)+len(out.Delays) > 0:
		return entities.SprintHealthModerate
	default:
		return entities.SprintHealthGood
	}
}

// derivedActionItems builds follow-ups directly from the call findings
func derivedActionItems(out entities.OverallSummary) []entities.ActionItem {
	items := []entities.ActionItem{}
	for _, b := range out.Blockers {
		p := entities.PriorityMedium
		if b.Severity.IsEscalated() {
			p = entities.PriorityHigh
		}
		items = append(items, entities.ActionItem{Action: b.SuggestedAction, Assignee: b.Participant, Priority: p})
	}
	for _, d := range out.Delays {
		p := entities.PriorityMedium
		if d.Impact.IsEscalated() {
			p = entities.PriorityHigh
		}
		items = append(items, entities.ActionItem{Action: d.Mitigation, Assignee: d.Participant, Priority: p})
	}
	for _, m := range out.MissingParticipants {
		items = append(items, entities.ActionItem{
			Action:   fmt.Sprintf("Follow up with %s about the missed standup.", m),
			Assignee: "Scrum Master",
			Priority: entities.PriorityLow,
		})
	}
	return items
}
