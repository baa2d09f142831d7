package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/standup-assistant/internal/domain/entities"
	"github.com/johnquangdev/standup-assistant/internal/domain/repositories"
)

// attendanceRepository implements the AttendanceRepository interface
type attendanceRepository struct {
	db *gorm.DB
}

// NewAttendanceRepository creates a new attendance repository
func NewAttendanceRepository(db *gorm.DB) repositories.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// FindByName retrieves a missing-developer record by case-insensitive name
func (r *attendanceRepository) FindByName(ctx context.Context, name string) (*entities.MissingDeveloper, error) {
	var record entities.MissingDeveloper
	err := r.db.WithContext(ctx).
		Where("name_key = ?", entities.AttendanceKey(name)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Save upserts a missing-developer record
func (r *attendanceRepository) Save(ctx context.Context, record *entities.MissingDeveloper) error {
	if record == nil {
		return errors.New("record cannot be nil")
	}
	record.NameKey = entities.AttendanceKey(record.Name)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(record).Error
}

// ListByTeam returns a team's records, worst streak first
func (r *attendanceRepository) ListByTeam(ctx context.Context, team string) ([]*entities.MissingDeveloper, error) {
	var records []*entities.MissingDeveloper
	err := r.db.WithContext(ctx).
		Where("team_name = ?", team).
		Order("consecutive_misses DESC, name ASC").
		Find(&records).Error
	return records, err
}
