package presenter

import (
	"fmt"

	"github.com/johnquangdev/standup-assistant/internal/adapter/dto/call"
	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

// ToCallResponse converts a Call entity to CallResponse DTO
func ToCallResponse(c *entities.Call) *call.CallResponse {
	if c == nil {
		return nil
	}
	return &call.CallResponse{
		ID:             c.ID.String(),
		Team:           c.Team,
		Project:        c.Project,
		SprintName:     c.SprintName,
		RoomName:       c.RoomName,
		Participants:   c.ParticipantNames(),
		Aggressiveness: c.Aggressiveness,
		Status:         string(c.Status),
		Error:          c.Error,
		StartedAt:      c.StartedAt,
		CompletedAt:    c.CompletedAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

// ToStartCallResponse builds the accepted response for a newly started call
func ToStartCallResponse(c *entities.Call) *call.StartCallResponse {
	return &call.StartCallResponse{
		ID:        c.ID.String(),
		Status:    string(c.Status),
		RoomName:  c.RoomName,
		StatusURL: fmt.Sprintf("/v1/calls/%s", c.ID),
	}
}

// ToAttendanceListResponse converts attendance records of a team
func ToAttendanceListResponse(team string, records []*entities.MissingDeveloper) *call.AttendanceListResponse {
	out := &call.AttendanceListResponse{Team: team, Records: make([]*call.AttendanceResponse, 0, len(records))}
	for _, r := range records {
		out.Records = append(out.Records, &call.AttendanceResponse{
			Name:              r.Name,
			ConsecutiveMisses: r.ConsecutiveMisses,
			LastAttendance:    r.LastAttendance,
			LastMissedAt:      r.LastMissedAt,
			ActionRequired:    r.ActionRequired,
			SuggestedAction:   r.SuggestedAction,
		})
	}
	return out
}
