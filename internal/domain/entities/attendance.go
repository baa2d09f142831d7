package entities

import (
	"strings"
	"time"
)

// MissingDeveloper tracks consecutive absences for one participant across calls
type MissingDeveloper struct {
	NameKey           string     `gorm:"type:varchar(255);primaryKey" json:"-"`
	TeamName          string     `gorm:"type:varchar(255);index" json:"team_name"`
	Name              string     `gorm:"type:varchar(255);not null" json:"name"`
	ConsecutiveMisses int        `gorm:"not null;default:0" json:"consecutive_misses"`
	LastAttendance    *time.Time `json:"last_attendance,omitempty"`
	LastMissedAt      *time.Time `json:"last_missed_at,omitempty"`
	LastCallID        string     `gorm:"type:varchar(64)" json:"last_call_id,omitempty"`
	ActionRequired    bool       `gorm:"not null;default:false" json:"action_required"`
	SuggestedAction   string     `gorm:"type:text" json:"suggested_action"`
	UpdatedAt         time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for MissingDeveloper
func (MissingDeveloper) TableName() string {
	return "missing_developers"
}

// AttendanceKey is the case-insensitive lookup key for a participant name
func AttendanceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewMissingDeveloper creates the record for a first-ever absence
func NewMissingDeveloper(team, name string) *MissingDeveloper {
	return &MissingDeveloper{
		NameKey:  AttendanceKey(name),
		TeamName: team,
		Name:     name,
	}
}

// MarkMissed increments the counter once per call; it reports whether the counter moved
func (m *MissingDeveloper) MarkMissed(callID string, at time.Time) bool {
	if callID != "" && m.LastCallID == callID {
		return false
	}
	m.ConsecutiveMisses++
	m.LastMissedAt = &at
	m.LastCallID = callID
	m.ActionRequired = m.ConsecutiveMisses >= 2
	m.UpdatedAt = at
	return true
}

// MarkPresent records attendance, optionally clearing the absence streak
func (m *MissingDeveloper) MarkPresent(at time.Time, reset bool) {
	m.LastAttendance = &at
	m.UpdatedAt = at
	if reset {
		m.ConsecutiveMisses = 0
		m.ActionRequired = false
		m.SuggestedAction = ""
	}
}
