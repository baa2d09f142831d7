package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/repositories"
)

// teamRepository implements the TeamRepository interface
type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *gorm.DB) repositories.TeamRepository {
	return &teamRepository{db: db}
}

// ListContacts returns the roster ordered by position
func (r *teamRepository) ListContacts(ctx context.Context, team string) ([]entities.Contact, error) {
	var contacts []entities.Contact
	err := r.db.WithContext(ctx).
		Where("team_name = ?", team).
		Order("position ASC, name ASC").
		Find(&contacts).Error
	return contacts, err
}

// FindActiveSprint returns the latest sprint whose window contains at
func (r *teamRepository) FindActiveSprint(ctx context.Context, team string, at time.Time) (*entities.Sprint, error) {
	var sprint entities.Sprint
	err := r.db.WithContext(ctx).
		Where("team_name = ? AND start_date <= ? AND end_date >= ?", team, at, at).
		Order("start_date DESC").
		First(&sprint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sprint, nil
}

// ListWorkItems returns the work items of a sprint
func (r *teamRepository) ListWorkItems(ctx context.Context, sprintID uuid.UUID) ([]entities.WorkItem, error) {
	var items []entities.WorkItem
	err := r.db.WithContext(ctx).
		Where("sprint_id = ?", sprintID).
		Order("item_key ASC").
		Find(&items).Error
	return items, err
}

// ListOpenBlockers returns unresolved blockers for a team
func (r *teamRepository) ListOpenBlockers(ctx context.Context, team string) ([]entities.OpenBlocker, error) {
	var blockers []entities.OpenBlocker
	err := r.db.WithContext(ctx).
		Where("team_name = ? AND status = ?", team, entities.OpenBlockerStatusOpen).
		Order("raised_at ASC").
		Find(&blockers).Error
	return blockers, err
}

// SaveContact upserts a roster entry
func (r *teamRepository) SaveContact(ctx context.Context, contact *entities.Contact) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_name"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "role", "position", "updated_at"}),
		}).
		Create(contact).Error
}

// SaveSprint upserts a sprint
func (r *teamRepository) SaveSprint(ctx context.Context, sprint *entities.Sprint) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_name"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"project_name", "start_date", "end_date"}),
		}).
		Create(sprint).Error
}

// SaveWorkItem upserts a work item
func (r *teamRepository) SaveWorkItem(ctx context.Context, item *entities.WorkItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sprint_id"}, {Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"title", "assignee", "status", "points", "updated_at"}),
		}).
		Create(item).Error
}

// SaveOpenBlocker upserts a known blocker
func (r *teamRepository) SaveOpenBlocker(ctx context.Context, blocker *entities.OpenBlocker) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "team_name"}, {Name: "item_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"item_title", "assignee", "reason", "status", "raised_at", "resolved_at"}),
		}).
		Create(blocker).Error
}
