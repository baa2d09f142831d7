package entities

import (
	"time"

	"github.com/google/uuid"
)

// Contact is a team roster entry
type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TeamName  string    `gorm:"type:varchar(255);not null;index" json:"team_name"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Role      string    `gorm:"type:varchar(100)" json:"role,omitempty"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Contact
func (Contact) TableName() string {
	return "contacts"
}

// Sprint is a time-boxed work period for a team
type Sprint struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TeamName    string    `gorm:"type:varchar(255);not null;index" json:"team_name"`
	ProjectName string    `gorm:"type:varchar(255);not null" json:"project_name"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	CreatedAt   time.Time `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for Sprint
func (Sprint) TableName() string {
	return "sprints"
}

// DaysElapsed returns days passed and total sprint length in days
func (s *Sprint) DaysElapsed(now time.Time) (passed, total int) {
	day := func(t time.Time) time.Time {
		y, m, d := t.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	start := day(s.StartDate)
	passed = int(day(now).Sub(start).Hours() / 24)
	total = int(day(s.EndDate).Sub(start).Hours() / 24)
	return passed, total
}

// WorkItemStatus is the tracker status of a work item
type WorkItemStatus string

const (
	WorkItemStatusToDo       WorkItemStatus = "To Do"
	WorkItemStatusInProgress WorkItemStatus = "In Progress"
	WorkItemStatusDone       WorkItemStatus = "Done"
	WorkItemStatusBlocked    WorkItemStatus = "Blocked"
)

// WorkItem is a tracked unit of work in a sprint
type WorkItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SprintID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"sprint_id"`
	ItemKey   string         `gorm:"type:varchar(50);not null" json:"item_key"`
	Title     string         `gorm:"type:varchar(500);not null" json:"title"`
	Assignee  string         `gorm:"type:varchar(255);index" json:"assignee"`
	Status    WorkItemStatus `gorm:"type:varchar(20);not null;default:'To Do'" json:"status"`
	Points    int            `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for WorkItem
func (WorkItem) TableName() string {
	return "work_items"
}

// OpenBlockerStatus is the tracker status of a known blocker
type OpenBlockerStatus string

const (
	OpenBlockerStatusOpen     OpenBlockerStatus = "Open"
	OpenBlockerStatusResolved OpenBlockerStatus = "Resolved"
)

// OpenBlocker is a blocker already known before the call starts
type OpenBlocker struct {
	ID         uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TeamName   string            `gorm:"type:varchar(255);not null;index" json:"team_name"`
	ItemKey    string            `gorm:"type:varchar(50)" json:"item_key"`
	ItemTitle  string            `gorm:"type:varchar(500)" json:"item_title"`
	Assignee   string            `gorm:"type:varchar(255);index" json:"assignee"`
	Reason     string            `gorm:"type:text" json:"reason"`
	Status     OpenBlockerStatus `gorm:"type:varchar(20);not null;default:'Open'" json:"status"`
	RaisedAt   time.Time         `gorm:"not null" json:"raised_at"`
	ResolvedAt *time.Time        `json:"resolved_at,omitempty"`
	CreatedAt  time.Time         `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for OpenBlocker
func (OpenBlocker) TableName() string {
	return "open_blockers"
}

// DaysOpen returns whole days since the blocker was raised
func (b *OpenBlocker) DaysOpen(now time.Time) int {
	return int(now.Sub(b.RaisedAt).Hours() / 24)
}

// SprintPoints sums total and completed story points
func SprintPoints(items []WorkItem) (total, completed int) {
	for _, item := range items {
		total += item.Points
		if item.Status == WorkItemStatusDone {
			completed += item.Points
		}
	}
	return total, completed
}
