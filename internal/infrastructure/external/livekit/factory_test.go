package livekit

import (
	"context"
	"errors"
	"sync"
	"testing"

	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

type fakeRooms struct {
	mu      sync.Mutex
	created []string
	deleted []string
}

func (r *fakeRooms) CreateRoom(_ context.Context, name string, _ *CreateRoomOptions) (*RoomInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, name)
	return &RoomInfo{Name: name}, nil
}

func (r *fakeRooms) DeleteRoom(_ context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, name)
	return nil
}

func TestSessionFactory_JoinFailureDeletesRoom(t *testing.T) {
	rooms := &fakeRooms{}
	f := NewSessionFactory(config.LiveKitConfig{URL: "ws://localhost:7880", BotIdentity: "bot"},
		rooms, nil, nil, nil, nil, SessionConfig{}, nil)
	joinErr := errors.New("signal connection refused")
	f.connect = func(string, lksdk.ConnectInfo, *lksdk.RoomCallback, ...lksdk.ConnectOption) (*lksdk.Room, error) {
		return nil, joinErr
	}

	call := entities.NewCall("core", "Apollo", []entities.Contact{{Name: "Alice"}}, 5)
	call.RoomName = "standup-core-20261018-0900"

	sess, err := f.Open(context.Background(), call)
	require.Error(t, err)
	assert.ErrorIs(t, err, joinErr)
	assert.Nil(t, sess)
	assert.Equal(t, []string{call.RoomName}, rooms.created)
	assert.Equal(t, []string{call.RoomName}, rooms.deleted)
}
