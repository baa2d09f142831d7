package handler

import (
	stdErrors "errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/errors"
	"github.com/johnquangdev/standup-assistant/internal/adapter/dto/call"
	"github.com/johnquangdev/standup-assistant/internal/adapter/presenter"
	usecaseErrors "github.com/johnquangdev/standup-assistant/internal/usecase/errors"
	"github.com/johnquangdev/standup-assistant/internal/usecase/orchestrator"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
)

var inspectableKeys = map[string]bool{
	statestore.KeyStatus:         true,
	statestore.KeyPhase:          true,
	statestore.KeyCallResults:    true,
	statestore.KeyOverallSummary: true,
	statestore.KeyStatusReport:   true,
	statestore.KeyMinutes:        true,
	statestore.KeyEgress:         true,
	statestore.KeyRoomEvents:     true,
}

// Call handles standup call HTTP requests
type Call struct {
	service  orchestrator.Service
	maxCalls int
	logger   *zap.Logger
}

// NewCallHandler creates a new call handler
func NewCallHandler(service orchestrator.Service, maxCalls int, logger *zap.Logger) *Call {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Call{service: service, maxCalls: maxCalls, logger: logger}
}

// StartCall handles POST /calls
// @Summary      Start a standup call
// @Description  Prepares a call for the team and runs it in the background
// @Tags         Calls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      call.StartCallRequest  true  "Call start request"
// @Success      202      {object}  call.StartCallResponse
// @Failure      400      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]interface{}
// @Failure      409      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Router       /calls [post]
func (h *Call) StartCall(c echo.Context) error {
	var req call.StartCallRequest
	if err := c.Bind(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}
	return h.start(c, req.Team, req.Aggressiveness)
}

func (h *Call) start(c echo.Context, team string, aggressiveness int) error {
	started, err := h.service.Start(c.Request().Context(), orchestrator.StartInput{
		Team:           team,
		Aggressiveness: aggressiveness,
	})
	if err != nil {
		return HandleError(h.logger, c, mapStartError(team, h.maxCalls, err))
	}
	return HandleStatus(h.logger, c, http.StatusAccepted, presenter.ToStartCallResponse(started))
}

// GetCall handles GET /calls/:id
// @Summary      Get call
// @Tags         Calls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Call ID (UUID)"
// @Success      200  {object}  call.CallResponse
// @Failure      404  {object}  map[string]interface{}
// @Router       /calls/{id} [get]
func (h *Call) GetCall(c echo.Context) error {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call ID must be a valid UUID"))
	}

	found, err := h.service.GetCall(c.Request().Context(), callID)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrCallNotFound) {
			return HandleError(h.logger, c, errors.ErrCallNotFound(callID.String()))
		}
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find call", err))
	}
	return HandleSuccess(h.logger, c, presenter.ToCallResponse(found))
}

// GetSummary handles GET /calls/:id/summary
// @Summary      Get call summary
// @Tags         Calls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Call ID (UUID)"
// @Success      200  {object}  entities.OverallSummary
// @Failure      404  {object}  map[string]interface{}
// @Router       /calls/{id}/summary [get]
func (h *Call) GetSummary(c echo.Context) error {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call ID must be a valid UUID"))
	}

	s, err := h.service.GetSummary(c.Request().Context(), callID)
	if err != nil {
		if stdErrors.Is(err, usecaseErrors.ErrNotFound) {
			return HandleError(h.logger, c, errors.ErrSummaryNotFound(callID.String()))
		}
		return HandleError(h.logger, c, errors.ErrDBQueryFailed("find summary", err))
	}
	return HandleSuccess(h.logger, c, s)
}

// GetState handles GET /calls/:id/state/:key
// @Summary      Get raw call state
// @Description  Returns one state-store entry of a call while it is retained
// @Tags         Calls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Call ID (UUID)"
// @Param        key  path      string  true  "State key"  Enums(status, phase, call_results, overall_summary, status_report, mom, egress, room_events)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Router       /calls/{id}/state/{key} [get]
func (h *Call) GetState(c echo.Context) error {
	callID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("call ID must be a valid UUID"))
	}
	key := c.Param("key")
	if !inspectableKeys[key] {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("unknown state key: "+key))
	}

	raw, err := h.service.GetState(c.Request().Context(), callID, key)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrStateNotFound(callID.String(), key))
	}
	return HandleSuccess(h.logger, c, raw)
}
