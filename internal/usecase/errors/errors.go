package errors

import "errors"

// Common errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// Call errors
var (
	ErrCallNotFound          = errors.New("call not found")
	ErrTeamNotFound          = errors.New("team not found")
	ErrNoActiveSprint        = errors.New("no active sprint")
	ErrInvalidAggressiveness = errors.New("aggressiveness must be between 1 and 10")
	ErrCapacityExhausted     = errors.New("maximum concurrent calls reached")
)

// Session errors
var (
	ErrSessionUnavailable = errors.New("meeting session unavailable")
	ErrSessionClosed      = errors.New("meeting session closed")
	ErrCaptureNotStarted  = errors.New("capture not started")
)
