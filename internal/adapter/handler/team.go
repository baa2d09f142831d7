package handler

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/errors"
	"github.com/johnquangdev/standup-assistant/internal/adapter/presenter"
	"github.com/johnquangdev/standup-assistant/internal/usecase/orchestrator"
)

// Team handles team-level HTTP requests
type Team struct {
	service orchestrator.Service
	logger  *zap.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(service orchestrator.Service, logger *zap.Logger) *Team {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Team{service: service, logger: logger}
}

// ListAttendance handles GET /teams/:team/attendance
// @Summary      List attendance records
// @Description  Returns consecutive-miss records for the team's developers
// @Tags         Teams
// @Produce      json
// @Security     BearerAuth
// @Param        team  path      string  true  "Team name"
// @Success      200   {object}  call.AttendanceListResponse
// @Router       /teams/{team}/attendance [get]
func (h *Team) ListAttendance(c echo.Context) error {
	team := strings.TrimSpace(c.Param("team"))
	if team == "" {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("team is required"))
	}

	records, err := h.service.ListAttendance(c.Request().Context(), team)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("list attendance", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToAttendanceListResponse(team, records))
}
