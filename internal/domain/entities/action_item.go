package entities

// Priority of a follow-up action item
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// NormalizePriority maps free model text onto the closed Priority set
func NormalizePriority(raw string) Priority {
	switch NormalizeLevel(raw) {
	case LevelHigh, LevelCritical:
		return PriorityHigh
	case LevelLow:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// ActionItem is a follow-up synthesized from blockers, delays and absences
type ActionItem struct {
	Action   string   `json:"action"`
	Assignee string   `json:"assignee"`
	Priority Priority `json:"priority"`
}
