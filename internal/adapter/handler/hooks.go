package handler

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/errors"
	"github.com/johnquangdev/standup-assistant/internal/adapter/dto/call"
	"github.com/johnquangdev/standup-assistant/pkg/ai"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw trigger body
const SignatureHeader = "X-Standup-Signature"

const maxTriggerBody = 64 << 10

// Hooks handles inbound scheduler triggers
type Hooks struct {
	calls  *Call
	secret string
	logger *zap.Logger
}

// NewHooksHandler creates a hooks handler that starts calls through calls
func NewHooksHandler(calls *Call, secret string, logger *zap.Logger) *Hooks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hooks{calls: calls, secret: secret, logger: logger}
}

// Trigger handles POST /hooks/trigger
// @Summary      Scheduler trigger
// @Description  Starts a standup call when the body carries a valid HMAC signature
// @Tags         Hooks
// @Accept       json
// @Produce      json
// @Param        X-Standup-Signature  header    string               true  "hex HMAC-SHA256 of the body"
// @Param        request              body      call.TriggerRequest  true  "Trigger payload"
// @Success      202                  {object}  call.StartCallResponse
// @Failure      401                  {object}  map[string]interface{}
// @Router       /hooks/trigger [post]
func (h *Hooks) Trigger(c echo.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxTriggerBody))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if !ai.VerifyHMAC(h.secret, body, c.Request().Header.Get(SignatureHeader)) {
		h.logger.Warn("⚠️ Rejected trigger with bad signature",
			zap.String("remote_ip", c.RealIP()),
		)
		return HandleError(h.logger, c, errors.ErrInvalidSignature())
	}

	var req call.TriggerRequest
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	h.logger.Info("⏰ Scheduler trigger accepted",
		zap.String("team", req.Team),
		zap.String("scheduled_for", req.ScheduledFor),
	)
	return h.calls.start(c, req.Team, req.Aggressiveness)
}
