package callcontext

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type KeyContext string

var (
	keyCallID      KeyContext = "call_id"
	keyTeam        KeyContext = "team"
	keyParticipant KeyContext = "participant"
	keyStartTime   KeyContext = "call_start_time"
)

// CallMetadata holds metadata for one call execution
type CallMetadata struct {
	CallID      uuid.UUID
	Team        string
	Participant string
	StartTime   time.Time
}

// CallBegin derives a call-scoped context bounded by maxDuration.
// A zero maxDuration leaves the parent deadline untouched.
func CallBegin(parentCtx context.Context, callID uuid.UUID, team string, maxDuration time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parentCtx)
	if maxDuration > 0 {
		cancel()
		ctx, cancel = context.WithTimeout(parentCtx, maxDuration)
	}

	ctx = context.WithValue(ctx, keyCallID, callID)
	ctx = context.WithValue(ctx, keyTeam, team)
	ctx = context.WithValue(ctx, keyStartTime, time.Now())

	return ctx, cancel
}

// WithParticipant marks the participant currently being interviewed
func WithParticipant(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, keyParticipant, name)
}

// GetCallID extracts call ID from context
func GetCallID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(keyCallID).(uuid.UUID)
	return id, ok
}

// GetTeam extracts team name from context
func GetTeam(ctx context.Context) (string, bool) {
	team, ok := ctx.Value(keyTeam).(string)
	return team, ok
}

// GetParticipant extracts the current participant from context
func GetParticipant(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(keyParticipant).(string)
	return name, ok
}

// GetStartTime extracts call start time from context
func GetStartTime(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(keyStartTime).(time.Time)
	return t, ok
}

// GetCallMetadata extracts all call metadata from context
func GetCallMetadata(ctx context.Context) *CallMetadata {
	id, _ := GetCallID(ctx)
	team, _ := GetTeam(ctx)
	participant, _ := GetParticipant(ctx)
	start, _ := GetStartTime(ctx)

	return &CallMetadata{
		CallID:      id,
		Team:        team,
		Participant: participant,
		StartTime:   start,
	}
}

// Fields returns zap fields describing the call carried by ctx
func Fields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if id, ok := GetCallID(ctx); ok {
		fields = append(fields, zap.String("call_id", id.String()))
	}
	if team, ok := GetTeam(ctx); ok {
		fields = append(fields, zap.String("team", team))
	}
	if p, ok := GetParticipant(ctx); ok && p != "" {
		fields = append(fields, zap.String("participant", p))
	}
	return fields
}
