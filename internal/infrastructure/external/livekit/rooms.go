package livekit

import (
	"context"
	"fmt"
	"time"

	livekit "github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
)

// RoomAdmin manages the rooms standup calls are held in
type RoomAdmin interface {
	CreateRoom(ctx context.Context, name string, options *CreateRoomOptions) (*RoomInfo, error)
	DeleteRoom(ctx context.Context, roomName string) error
}

// CreateRoomOptions holds options for creating a room
type CreateRoomOptions struct {
	MaxParticipants  int32
	EmptyTimeout     int32 // seconds - auto-delete if no one joins
	DepartureTimeout int32 // seconds - auto-delete after last participant leaves
	Metadata         string
}

// RoomInfo holds room information
type RoomInfo struct {
	Name            string
	SID             string
	CreationTime    time.Time
	MaxParticipants int32
	Metadata        string
}

type roomAdmin struct {
	client *lksdk.RoomServiceClient
}

// NewRoomAdmin creates a room service client
func NewRoomAdmin(url, apiKey, apiSecret string) RoomAdmin {
	return &roomAdmin{client: lksdk.NewRoomServiceClient(url, apiKey, apiSecret)}
}

// CreateRoom creates a room, or returns the existing one with the same name
func (c *roomAdmin) CreateRoom(ctx context.Context, name string, options *CreateRoomOptions) (*RoomInfo, error) {
	if options == nil {
		options = &CreateRoomOptions{
			MaxParticipants:  50,
			EmptyTimeout:     300, // 5 minutes
			DepartureTimeout: 30,
		}
	}

	room, err := c.client.CreateRoom(ctx, &livekit.CreateRoomRequest{
		Name:             name,
		MaxParticipants:  uint32(options.MaxParticipants),
		EmptyTimeout:     uint32(options.EmptyTimeout),
		DepartureTimeout: uint32(options.DepartureTimeout),
		Metadata:         options.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return &RoomInfo{
		Name:            room.Name,
		SID:             room.Sid,
		CreationTime:    time.Unix(room.CreationTime, 0),
		MaxParticipants: int32(room.MaxParticipants),
		Metadata:        room.Metadata,
	}, nil
}

// DeleteRoom deletes a room from LiveKit
func (c *roomAdmin) DeleteRoom(ctx context.Context, roomName string) error {
	_, err := c.client.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: roomName,
	})
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}
