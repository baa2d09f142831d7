package entities

import "time"

// RoomEvent is a meeting-room lifecycle event reported by the media server
type RoomEvent struct {
	Event       string    `json:"event"`
	Room        string    `json:"room"`
	Participant string    `json:"participant,omitempty"`
	EgressID    string    `json:"egress_id,omitempty"`
	At          time.Time `json:"at"`
}
