package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SprintHealth is the overall sprint rating
type SprintHealth string

const (
	SprintHealthGood     SprintHealth = "Good"
	SprintHealthModerate SprintHealth = "Moderate"
	SprintHealthAtRisk   SprintHealth = "At Risk"
	SprintHealthCritical SprintHealth = "Critical"
)

// StoryStatus is the model-extracted state of one work item mentioned in the call
type StoryStatus struct {
	Title      string `json:"title"`
	Status     string `json:"status"`
	Completion int    `json:"completion_percentage"`
	Assignee   string `json:"assignee"`
	Notes      string `json:"notes,omitempty"`
}

// OverallSummary is derived once per call from the call results
type OverallSummary struct {
	Summary             string                 `json:"summary"`
	Participants        []string               `json:"participants"`
	MissingParticipants []string               `json:"missing_participants"`
	Blockers            []Blocker              `json:"blockers"`
	Delays              []Delay                `json:"delays"`
	StoriesStatus       map[string]StoryStatus `json:"stories_status"`
	SprintHealth        SprintHealth           `json:"sprint_health"`
	ActionItems         []ActionItem           `json:"action_items"`
	Timestamp           time.Time              `json:"timestamp"`
}

// CallSummary is the durable row holding a finished call's overall summary
type CallSummary struct {
	ID           uuid.UUID                          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CallID       uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex" json:"call_id"`
	SprintHealth SprintHealth                       `gorm:"type:varchar(20);not null" json:"sprint_health"`
	Payload      datatypes.JSONType[OverallSummary] `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt    time.Time                          `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for CallSummary
func (CallSummary) TableName() string {
	return "call_summaries"
}

// NewCallSummary wraps an overall summary for persistence
func NewCallSummary(callID uuid.UUID, summary OverallSummary) *CallSummary {
	return &CallSummary{
		ID:           uuid.New(),
		CallID:       callID,
		SprintHealth: summary.SprintHealth,
		Payload:      datatypes.NewJSONType(summary),
		CreatedAt:    time.Now(),
	}
}

// Summary returns the stored overall summary
func (s *CallSummary) Summary() OverallSummary {
	return s.Payload.Data()
}
