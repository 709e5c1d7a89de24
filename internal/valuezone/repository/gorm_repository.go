package repository

import (
	"context"
	"errors"
	"time"

	"reliance-backend/internal/valuezone/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormValueZoneRepository struct {
	db *gorm.DB
}

// NewGormValueZoneRepository creates a Postgres-backed ValueZoneRepository
func NewGormValueZoneRepository(db *gorm.DB) ValueZoneRepository {
	return &gormValueZoneRepository{db: db}
}

func (r *gormValueZoneRepository) Create(ctx context.Context, zone *domain.ValueZone) error {
	zone.ID = uuid.New().String()
	zone.CreatedAt = time.Now()
	zone.UpdatedAt = zone.CreatedAt
	return r.db.WithContext(ctx).Create(zone).Error
}

func (r *gormValueZoneRepository) FindByID(ctx context.Context, id string) (*domain.ValueZone, error) {
	var zone domain.ValueZone
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&zone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &zone, nil
}

func (r *gormValueZoneRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.ValueZone, error) {
	var zones []*domain.ValueZone
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&zones).Error
	return zones, err
}

func (r *gormValueZoneRepository) Update(ctx context.Context, zone *domain.ValueZone) error {
	zone.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(zone).Error
}

func (r *gormValueZoneRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.ValueZone{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
