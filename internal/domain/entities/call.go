package entities

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CallStatus represents the lifecycle status of a standup call
type CallStatus string

const (
	CallStatusScheduled  CallStatus = "scheduled"
	CallStatusInProgress CallStatus = "in-progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
)

const (
	MinAggressiveness = 1
	MaxAggressiveness = 10
)

// Call is one execution of the standup protocol for a team
type Call struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Team           string         `gorm:"type:varchar(255);not null;index" json:"team"`
	Project        string         `gorm:"type:varchar(255);not null" json:"project"`
	SprintName     string         `gorm:"type:varchar(255)" json:"sprint_name"`
	RoomName       string         `gorm:"type:varchar(255)" json:"room_name"`
	Participants   datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"participants"`
	Aggressiveness int            `gorm:"not null;default:5;check:aggressiveness >= 1 AND aggressiveness <= 10" json:"aggressiveness"`
	Status         CallStatus     `gorm:"type:varchar(20);not null;default:'scheduled';index" json:"status"`
	Error          *string        `gorm:"type:text" json:"error,omitempty"`
	StartedAt      *time.Time     `json:"started_at,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"default:now()" json:"updated_at"`

	// Snapshot taken at call start; not persisted with the call row
	Sprint       *Sprint       `gorm:"-" json:"-"`
	Contacts     []Contact     `gorm:"-" json:"-"`
	WorkItems    []WorkItem    `gorm:"-" json:"-"`
	OpenBlockers []OpenBlocker `gorm:"-" json:"-"`
}

// TableName specifies the table name for Call
func (Call) TableName() string {
	return "calls"
}

// NewCall creates a scheduled call for a team roster
func NewCall(team, project string, contacts []Contact, aggressiveness int) *Call {
	now := time.Now()
	c := &Call{
		ID:             uuid.New(),
		Team:           team,
		Project:        project,
		Aggressiveness: ClampAggressiveness(aggressiveness),
		Status:         CallStatusScheduled,
		Contacts:       contacts,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	c.SetParticipants(contactNames(contacts))
	return c
}

// ClampAggressiveness keeps the tone parameter inside 1..10
func ClampAggressiveness(level int) int {
	if level < MinAggressiveness {
		return MinAggressiveness
	}
	if level > MaxAggressiveness {
		return MaxAggressiveness
	}
	return level
}

// SetParticipants stores the ordered participant list
func (c *Call) SetParticipants(names []string) {
	if names == nil {
		names = []string{}
	}
	b, _ := json.Marshal(names)
	c.Participants = datatypes.JSON(b)
}

// ParticipantNames returns the ordered participant list
func (c *Call) ParticipantNames() []string {
	names := []string{}
	if len(c.Participants) == 0 {
		return names
	}
	_ = json.Unmarshal(c.Participants, &names)
	return names
}

// HasParticipant reports whether name is on the roster (case-insensitive)
func (c *Call) HasParticipant(name string) bool {
	for _, p := range c.ParticipantNames() {
		if strings.EqualFold(p, name) {
			return true
		}
	}
	return false
}

// WithSnapshot attaches the sprint snapshot loaded at call start
func (c *Call) WithSnapshot(sprint *Sprint, items []WorkItem, blockers []OpenBlocker) *Call {
	c.Sprint = sprint
	c.WorkItems = items
	c.OpenBlockers = blockers
	if sprint != nil {
		c.SprintName = sprint.Name
	}
	return c
}

// MarkAsInProgress marks the call as running
func (c *Call) MarkAsInProgress() {
	now := time.Now()
	c.Status = CallStatusInProgress
	c.StartedAt = &now
	c.UpdatedAt = now
}

// MarkAsCompleted marks the call as successfully finished
func (c *Call) MarkAsCompleted() {
	now := time.Now()
	c.Status = CallStatusCompleted
	c.CompletedAt = &now
	c.UpdatedAt = now
}

// MarkAsFailed marks the call as failed with an error description
func (c *Call) MarkAsFailed(err error) {
	now := time.Now()
	c.Status = CallStatusFailed
	if err != nil {
		msg := err.Error()
		c.Error = &msg
	}
	c.CompletedAt = &now
	c.UpdatedAt = now
}

// IsFinished checks if the call reached a terminal status
func (c *Call) IsFinished() bool {
	return c.Status == CallStatusCompleted || c.Status == CallStatusFailed
}

// ItemsAssignedTo returns work items assigned to a participant
func (c *Call) ItemsAssignedTo(name string) []WorkItem {
	var out []WorkItem
	for _, item := range c.WorkItems {
		if strings.EqualFold(item.Assignee, name) {
			out = append(out, item)
		}
	}
	return out
}

// BlockersAssignedTo returns open blockers owned by a participant
func (c *Call) BlockersAssignedTo(name string) []OpenBlocker {
	var out []OpenBlocker
	for _, b := range c.OpenBlockers {
		if strings.EqualFold(b.Assignee, name) {
			out = append(out, b)
		}
	}
	return out
}

func contactNames(contacts []Contact) []string {
	names := make([]string, 0, len(contacts))
	for _, ct := range contacts {
		names = append(names, ct.Name)
	}
	return names
}
