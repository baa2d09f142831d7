package entities

import "time"

// VoiceActivityKind distinguishes speech detection events
type VoiceActivityKind string

const (
	VoiceSpeaking  VoiceActivityKind = "speaking"
	VoiceEndOfTurn VoiceActivityKind = "end_of_turn"
)

// VoiceActivity is emitted by a meeting session while capture is running
type VoiceActivity struct {
	Kind    VoiceActivityKind `json:"kind"`
	Speaker string            `json:"speaker"`
	At      time.Time         `json:"at"`
}
