package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

// TeamRepository provides the roster and sprint snapshot read at call start
type TeamRepository interface {
	// ListContacts returns the team roster in call order
	ListContacts(ctx context.Context, team string) ([]entities.Contact, error)

	// FindActiveSprint returns the sprint covering at, nil when none
	FindActiveSprint(ctx context.Context, team string, at time.Time) (*entities.Sprint, error)

	// ListWorkItems returns all work items of a sprint
	ListWorkItems(ctx context.Context, sprintID uuid.UUID) ([]entities.WorkItem, error)

	// ListOpenBlockers returns unresolved blockers for the team
	ListOpenBlockers(ctx context.Context, team string) ([]entities.OpenBlocker, error)

	// SaveContact inserts or updates a roster entry keyed by team and name
	SaveContact(ctx context.Context, contact *entities.Contact) error

	// SaveSprint inserts or updates a sprint keyed by team and name
	SaveSprint(ctx context.Context, sprint *entities.Sprint) error

	// SaveWorkItem inserts or updates a work item keyed by sprint and item key
	SaveWorkItem(ctx context.Context, item *entities.WorkItem) error

	// SaveOpenBlocker inserts or updates a known blocker keyed by team and item key
	SaveOpenBlocker(ctx context.Context, blocker *entities.OpenBlocker) error
}
