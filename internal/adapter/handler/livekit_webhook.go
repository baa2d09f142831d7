package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/livekit/protocol/auth"
	"github.com/livekit/protocol/livekit"
	"github.com/livekit/protocol/webhook"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/errors"
	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
)

const maxRoomEvents = 200

// LiveKitWebhook records room lifecycle events against the call that owns the room
type LiveKitWebhook struct {
	keys   auth.KeyProvider
	state  *statestore.Store
	logger *zap.Logger

	mu sync.Mutex
}

// NewLiveKitWebhook creates a webhook receiver validating with the API key pair
func NewLiveKitWebhook(apiKey, apiSecret string, state *statestore.Store, logger *zap.Logger) *LiveKitWebhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LiveKitWebhook{
		keys:   auth.NewSimpleKeyProvider(apiKey, apiSecret),
		state:  state,
		logger: logger,
	}
}

// Receive handles POST /hooks/livekit
// @Summary      LiveKit webhook
// @Description  Receives signed room events from LiveKit and appends them to the call state
// @Tags         Hooks
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /hooks/livekit [post]
func (h *LiveKitWebhook) Receive(c echo.Context) error {
	event, err := webhook.ReceiveWebhookEvent(c.Request(), h.keys)
	if err != nil {
		h.logger.Warn("⚠️ Rejected LiveKit webhook", zap.Error(err))
		return HandleError(h.logger, c, errors.ErrInvalidSignature())
	}

	callID, ok := callIDFromRoom(event.GetRoom())
	if !ok {
		// egress events only carry the room name
		h.logger.Debug("🪝 LiveKit event without call metadata",
			zap.String("event", event.GetEvent()),
			zap.String("room", roomName(event)),
		)
		return c.JSON(http.StatusOK, map[string]string{"status": "ignored"})
	}

	rec := entities.RoomEvent{
		Event:       event.GetEvent(),
		Room:        roomName(event),
		Participant: participantName(event.GetParticipant()),
		EgressID:    event.GetEgressInfo().GetEgressId(),
		At:          time.Unix(event.GetCreatedAt(), 0).UTC(),
	}
	if event.GetCreatedAt() == 0 {
		rec.At = time.Now().UTC()
	}
	h.append(c.Request().Context(), callID, rec)

	h.logger.Info("🪝 LiveKit event recorded",
		zap.String("call_id", callID.String()),
		zap.String("event", rec.Event),
		zap.String("participant", rec.Participant),
	)
	return c.JSON(http.StatusOK, map[string]string{"status": "recorded"})
}

func (h *LiveKitWebhook) append(ctx context.Context, callID uuid.UUID, rec entities.RoomEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var events []entities.RoomEvent
	h.state.Get(ctx, callID, statestore.KeyRoomEvents, &events)
	events = append(events, rec)
	if len(events) > maxRoomEvents {
		events = events[len(events)-maxRoomEvents:]
	}
	h.state.Put(ctx, callID, statestore.KeyRoomEvents, events)
}

func callIDFromRoom(room *livekit.Room) (uuid.UUID, bool) {
	if room == nil || room.GetMetadata() == "" {
		return uuid.Nil, false
	}
	var meta struct {
		CallID string `json:"call_id"`
	}
	if err := json.Unmarshal([]byte(room.GetMetadata()), &meta); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(meta.CallID)
	return id, err == nil
}

func roomName(event *livekit.WebhookEvent) string {
	if name := event.GetRoom().GetName(); name != "" {
		return name
	}
	return event.GetEgressInfo().GetRoomName()
}

func participantName(p *livekit.ParticipantInfo) string {
	if p.GetName() != "" {
		return p.GetName()
	}
	return p.GetIdentity()
}
