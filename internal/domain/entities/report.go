package entities

import "time"

// StatusCategory buckets a work item for the status report
type StatusCategory string

const (
	CategoryCompleted StatusCategory = "Completed"
	CategoryBlocked   StatusCategory = "Blocked"
	CategoryOnTrack   StatusCategory = "On Track"
	CategoryDelayed   StatusCategory = "Delayed"
	CategoryBacklog   StatusCategory = "Backlog"
)

// Categorize applies the fixed decision order: Done, Blocked, >=50%, >0%, else backlog
func Categorize(status string, completion int) StatusCategory {
	switch {
	case status == string(WorkItemStatusDone):
		return CategoryCompleted
	case status == string(WorkItemStatusBlocked):
		return CategoryBlocked
	case completion >= 50:
		return CategoryOnTrack
	case completion > 0:
		return CategoryDelayed
	default:
		return CategoryBacklog
	}
}

// StoryReport is one categorized row of the status report
type StoryReport struct {
	Title      string         `json:"title"`
	Category   StatusCategory `json:"category"`
	Completion int            `json:"completion"`
	Assignee   string         `json:"assignee"`
}

// HealthIndicators is the multi-dimensional sprint health assessment
type HealthIndicators struct {
	Overall         string   `json:"overall"`
	Velocity        string   `json:"velocity"`
	Quality         string   `json:"quality"`
	Collaboration   string   `json:"team_collaboration"`
	RiskFactors     []string `json:"risk_factors"`
	PositiveFactors []string `json:"positive_factors"`
}

// StatusReport is the current sprint status derived from an overall summary
type StatusReport struct {
	Percentage      int                    `json:"percentage"`
	TotalPoints     int                    `json:"total_points"`
	CompletedPoints int                    `json:"completed_points"`
	Status          map[string]StoryReport `json:"status"`
	Health          HealthIndicators       `json:"health_indicators"`
	Recommendations []string               `json:"recommendations"`
	Timestamp       time.Time              `json:"timestamp"`
}

// MeetingMinutes is the rendered minutes of a call
type MeetingMinutes struct {
	Subject    string    `json:"subject"`
	HTML       string    `json:"html_content"`
	Text       string    `json:"text_content"`
	Recipients []string  `json:"recipients"`
	EmailSent  bool      `json:"email_sent"`
	Timestamp  time.Time `json:"timestamp"`
}
