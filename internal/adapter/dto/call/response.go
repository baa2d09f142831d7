package call

import (
	"time"
)

// CallResponse represents a standup call in API responses
type CallResponse struct {
	ID             string     `json:"id"`
	Team           string     `json:"team"`
	Project        string     `json:"project"`
	SprintName     string     `json:"sprint_name,omitempty"`
	RoomName       string     `json:"room_name,omitempty"`
	Participants   []string   `json:"participants"`
	Aggressiveness int        `json:"aggressiveness"`
	Status         string     `json:"status"`
	Error          *string    `json:"error,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// StartCallResponse is returned when a call has been accepted
type StartCallResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	RoomName  string `json:"room_name"`
	StatusURL string `json:"status_url"`
}

// AttendanceResponse is one missing-developer record
type AttendanceResponse struct {
	Name              string     `json:"name"`
	ConsecutiveMisses int        `json:"consecutive_misses"`
	LastAttendance    *time.Time `json:"last_attendance,omitempty"`
	LastMissedAt      *time.Time `json:"last_missed_at,omitempty"`
	ActionRequired    bool       `json:"action_required"`
	SuggestedAction   string     `json:"suggested_action,omitempty"`
}

// AttendanceListResponse lists a team's attendance records
type AttendanceListResponse struct {
	Team    string                `json:"team"`
	Records []*AttendanceResponse `json:"records"`
}
