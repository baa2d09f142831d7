package repositories

import (
	"context"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
)

// AttendanceRepository persists missing-developer records across calls
type AttendanceRepository interface {
	// FindByName looks a record up case-insensitively, nil when absent
	FindByName(ctx context.Context, name string) (*entities.MissingDeveloper, error)

	// Save upserts a record keyed by its lowercase name
	Save(ctx context.Context, record *entities.MissingDeveloper) error

	// ListByTeam returns all records for a team ordered by misses
	ListByTeam(ctx context.Context, team string) ([]*entities.MissingDeveloper, error)
}
