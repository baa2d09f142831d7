package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/repositories"
)

// callRepository implements the CallRepository interface
type callRepository struct {
	db *gorm.DB
}

// NewCallRepository creates a new call repository
func NewCallRepository(db *gorm.DB) repositories.CallRepository {
	return &callRepository{db: db}
}

// Create creates a new call
func (r *callRepository) Create(ctx context.Context, call *entities.Call) error {
	if call == nil {
		return errors.New("call cannot be nil")
	}
	return r.db.WithContext(ctx).Create(call).Error
}

// Update saves an existing call
func (r *callRepository) Update(ctx context.Context, call *entities.Call) error {
	return r.db.WithContext(ctx).Save(call).Error
}

// FindByID retrieves a call by its ID
func (r *callRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Call, error) {
	var call entities.Call
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&call).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &call, nil
}

// ListByTeam retrieves recent calls for a team
func (r *callRepository) ListByTeam(ctx context.Context, team string, limit int) ([]*entities.Call, error) {
	if limit <= 0 {
		limit = 20
	}
	var calls []*entities.Call
	err := r.db.WithContext(ctx).
		Where("team = ?", team).
		Order("created_at DESC").
		Limit(limit).
		Find(&calls).Error
	return calls, err
}

// SaveSummary upserts the summary row for a call
func (r *callRepository) SaveSummary(ctx context.Context, summary *entities.CallSummary) error {
	if summary == nil {
		return errors.New("summary cannot be nil")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"sprint_health", "payload"}),
		}).
		Create(summary).Error
}

// FindSummary retrieves the summary for a call
func (r *callRepository) FindSummary(ctx context.Context, callID uuid.UUID) (*entities.CallSummary, error) {
	var summary entities.CallSummary
	if err := r.db.WithContext(ctx).Where("call_id = ?", callID).First(&summary).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}
