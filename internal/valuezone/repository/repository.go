package repository

import (
	"context"

	"reliance-backend/internal/valuezone/domain"
)

// ValueZoneRepository stores value zones. FindByID returns (nil, nil) when absent.
type ValueZoneRepository interface {
	Create(ctx context.Context, zone *domain.ValueZone) error
	FindByID(ctx context.Context, id string) (*domain.ValueZone, error)
	FindByUserID(ctx context.Context, userID string) ([]*domain.ValueZone, error)
	Update(ctx context.Context, zone *domain.ValueZone) error
	Delete(ctx context.Context, id string) (bool, error)
}
