package entities

import (
	"fmt"
	"time"
)

// Delay is a schedule slip reported during a call
type Delay struct {
	ID                string    `json:"id"`
	Participant       string    `json:"team_member"`
	Description       string    `json:"description"`
	AffectedItemID    string    `json:"affected_item_id,omitempty"`
	RecoveryDays      int       `json:"estimated_recovery_days"`
	Impact            Level     `json:"impact_level"`
	RootCause         string    `json:"root_cause"`
	Mitigation        string    `json:"mitigation_suggestion"`
	FollowUpQuestions []string  `json:"follow_up_questions"`
	Timestamp         time.Time `json:"timestamp"`
}

// NewDelayID builds the timestamped delay identifier
func NewDelayID(at time.Time) string {
	return fmt.Sprintf("DLY-%s", at.UTC().Format("20060102150405"))
}
