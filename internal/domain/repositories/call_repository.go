package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

// CallRepository defines durable storage for finished calls and their summaries
type CallRepository interface {
	// Create persists a new call record
	Create(ctx context.Context, call *entities.Call) error

	// Update saves the current state of a call
	Update(ctx context.Context, call *entities.Call) error

	// FindByID retrieves a call by its ID, nil when absent
	FindByID(ctx context.Context, id uuid.UUID) (*entities.Call, error)

	// ListByTeam retrieves the most recent calls for a team
	ListByTeam(ctx context.Context, team string, limit int) ([]*entities.Call, error)

	// SaveSummary upserts the overall summary of a call
	SaveSummary(ctx context.Context, summary *entities.CallSummary) error

	// FindSummary retrieves the summary of a call, nil when absent
	FindSummary(ctx context.Context, callID uuid.UUID) (*entities.CallSummary, error)
}
