package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Level is the severity / impact scale shared by blockers and delays
type Level string

const (
	LevelLow      Level = "Low"
	LevelMedium   Level = "Medium"
	LevelHigh     Level = "High"
	LevelCritical Level = "Critical"
)

// NormalizeLevel maps free model text onto the closed Level set, defaulting to Medium
func NormalizeLevel(raw string) Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low":
		return LevelLow
	case "medium":
		return LevelMedium
	case "high":
		return LevelHigh
	case "critical":
		return LevelCritical
	default:
		return LevelMedium
	}
}

// IsValid reports whether l is one of the defined levels
func (l Level) IsValid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh, LevelCritical:
		return true
	}
	return false
}

// IsEscalated reports whether the level warrants stakeholder notification
func (l Level) IsEscalated() bool {
	return l == LevelHigh || l == LevelCritical
}

var ticketKeyPattern = regexp.MustCompile(`^[A-Z]+-\d+$`)

// IsTicketKey reports whether ref looks like an issue-tracker key such as PROJ-42
func IsTicketKey(ref string) bool {
	return ticketKeyPattern.MatchString(ref)
}

// Blocker is an obstacle reported during a call
type Blocker struct {
	ID               string    `json:"id"`
	Participant      string    `json:"team_member"`
	Description      string    `json:"description"`
	AffectedItemID   string    `json:"affected_item_id,omitempty"`
	Severity         Level     `json:"severity"`
	BlockingReason   string    `json:"blocking_reason"`
	ActionRequired   bool      `json:"action_required"`
	SuggestedAction  string    `json:"suggested_action"`
	TicketUpdated    bool      `json:"jira_updated"`
	NotificationSent bool      `json:"notification_sent"`
	Timestamp        time.Time `json:"timestamp"`
}

// NewBlockerID builds the timestamped blocker identifier
func NewBlockerID(at time.Time) string {
	return fmt.Sprintf("BLK-%s", at.UTC().Format("20060102150405"))
}

var ticketKeyInText = regexp.MustCompile(`\b[A-Z][A-Z0-9]*-\d+\b`)

// FindTicketKey returns the first issue-tracker key mentioned in text
func FindTicketKey(text string) string {
	key := ticketKeyInText.FindString(text)
	if IsTicketKey(key) {
		return key
	}
	return ""
}

// NormalizeTicketKey upper-cases ref when that makes it a valid key
func NormalizeTicketKey(ref string) string {
	ref = strings.TrimSpace(ref)
	if upper := strings.ToUpper(ref); IsTicketKey(upper) {
		return upper
	}
	return ref
}
