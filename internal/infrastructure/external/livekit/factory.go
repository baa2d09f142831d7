package livekit

import (
	"context"
	"encoding/json"
	"fmt"

	lksdk "github.com/livekit/server-sdk-go/v2"
	"go.uber.org/zap"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/services"
	"github.com/johnquangdev/standup-assistant/internal/usecase/statestore"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// SessionFactory joins the bot to a fresh room for every call
type SessionFactory struct {
	lk        config.LiveKitConfig
	rooms     RoomAdmin
	recorder  Recorder
	artifacts services.ArtifactStore
	speech    services.SpeechService
	state     *statestore.Store
	sessCfg   SessionConfig
	logger    *zap.Logger

	connect func(string, lksdk.ConnectInfo, *lksdk.RoomCallback, ...lksdk.ConnectOption) (*lksdk.Room, error)
}

func NewSessionFactory(
	lk config.LiveKitConfig,
	rooms RoomAdmin,
	recorder Recorder,
	artifacts services.ArtifactStore,
	speech services.SpeechService,
	state *statestore.Store,
	sessCfg SessionConfig,
	logger *zap.Logger,
) *SessionFactory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionFactory{
		lk:        lk,
		rooms:     rooms,
		recorder:  recorder,
		artifacts: artifacts,
		speech:    speech,
		state:     state,
		sessCfg:   sessCfg,
		logger:    logger,
		connect:   lksdk.ConnectToRoom,
	}
}

func (f *SessionFactory) Open(ctx context.Context, call *entities.Call) (services.MeetingSession, error) {
	meta, _ := json.Marshal(map[string]string{"call_id": call.ID.String(), "team": call.Team})
	if _, err := f.rooms.CreateRoom(ctx, call.RoomName, &CreateRoomOptions{
		MaxParticipants:  int32(len(call.ParticipantNames()) + 2),
		EmptyTimeout:     300,
		DepartureTimeout: 30,
		Metadata:         string(meta),
	}); err != nil {
		return nil, err
	}

	sess := newSession(call, nil, f.recorder, f.artifacts, f.speech, f.state, f.sessCfg, f.logger)

	cb := lksdk.NewRoomCallback()
	cb.OnActiveSpeakersChanged = func(speakers []lksdk.Participant) {
		names := make([]string, 0, len(speakers))
		for _, p := range speakers {
			if p.Identity() == f.lk.BotIdentity {
				continue
			}
			name := p.Name()
			if name == "" {
				name = p.Identity()
			}
			names = append(names, name)
		}
		sess.speakers.update(names)
	}
	cb.OnDisconnected = func() {
		f.logger.Warn("⚠️ Bot disconnected from room", zap.String("room", call.RoomName))
	}

	room, err := f.connect(f.lk.URL, lksdk.ConnectInfo{
		APIKey:              f.lk.APIKey,
		APISecret:           f.lk.APISecret,
		RoomName:            call.RoomName,
		ParticipantIdentity: f.lk.BotIdentity,
		ParticipantName:     f.lk.BotName,
	}, cb)
	if err != nil {
		sess.speakers.close()
		if derr := f.rooms.DeleteRoom(context.WithoutCancel(ctx), call.RoomName); derr != nil {
			f.logger.Warn("⚠️ Failed to delete room after join failure",
				zap.String("room", call.RoomName), zap.Error(derr))
		}
		return nil, fmt.Errorf("failed to join room %s: %w", call.RoomName, err)
	}

	sess.room = &roomPublisher{room: room}
	sess.onClose = func(ctx context.Context) {
		if err := f.rooms.DeleteRoom(ctx, call.RoomName); err != nil {
			f.logger.Warn("⚠️ Failed to delete room", zap.String("room", call.RoomName), zap.Error(err))
		}
	}

	f.logger.Info("✅ Joined meeting room",
		zap.String("call_id", call.ID.String()),
		zap.String("room", call.RoomName),
	)
	return sess, nil
}

type roomPublisher struct {
	room *lksdk.Room
}

func (p *roomPublisher) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.room.LocalParticipant.PublishDataPacket(
		lksdk.UserData(payload),
		lksdk.WithDataPublishTopic(topic),
		lksdk.WithDataPublishReliable(true),
	)
}

func (p *roomPublisher) Disconnect() {
	p.room.Disconnect()
}
