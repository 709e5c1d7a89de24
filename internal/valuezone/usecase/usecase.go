package usecase

import (
	"context"
	"fmt"
	"log"

	"reliance-backend/internal/valuezone/domain"
	"reliance-backend/internal/valuezone/repository"
)

// ValueZoneUsecase scopes value zone CRUD to the owning user.
// Zones owned by someone else are reported as not found.
type ValueZoneUsecase interface {
	CreateValueZone(ctx context.Context, userID string, zone *domain.ValueZone) (*domain.ValueZone, error)
	GetValueZone(ctx context.Context, userID, id string) (*domain.ValueZone, error)
	ListValueZones(ctx context.Context, userID string) ([]*domain.ValueZone, error)
	UpdateValueZone(ctx context.Context, userID, id string, patch domain.ValueZonePatch) (*domain.ValueZone, error)
	DeleteValueZone(ctx context.Context, userID, id string) error
}

type valueZoneUsecase struct {
	repo repository.ValueZoneRepository
}

func NewValueZoneUsecase(repo repository.ValueZoneRepository) ValueZoneUsecase {
	return &valueZoneUsecase{repo: repo}
}

func (u *valueZoneUsecase) CreateValueZone(ctx context.Context, userID string, zone *domain.ValueZone) (*domain.ValueZone, error) {
	zone.ID = ""
	zone.UserID = userID
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("create value zone: %w", err)
	}
	log.Printf("[ValueZoneUsecase] Created value zone %s for user %s", zone.ID, userID)
	return zone, nil
}

func (u *valueZoneUsecase) GetValueZone(ctx context.Context, userID, id string) (*domain.ValueZone, error) {
	return u.loadOwned(ctx, userID, id)
}

func (u *valueZoneUsecase) ListValueZones(ctx context.Context, userID string) ([]*domain.ValueZone, error) {
	zones, err := u.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list value zones: %w", err)
	}
	if zones == nil {
		zones = []*domain.ValueZone{}
	}
	return zones, nil
}

func (u *valueZoneUsecase) UpdateValueZone(ctx context.Context, userID, id string, patch domain.ValueZonePatch) (*domain.ValueZone, error) {
	zone, err := u.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return zone, nil
	}

	patch.Apply(zone)
	if err := zone.Validate(); err != nil {
		return nil, err
	}
	if err := u.repo.Update(ctx, zone); err != nil {
		return nil, fmt.Errorf("update value zone: %w", err)
	}
	return zone, nil
}

func (u *valueZoneUsecase) DeleteValueZone(ctx context.Context, userID, id string) error {
	if _, err := u.loadOwned(ctx, userID, id); err != nil {
		return err
	}
	deleted, err := u.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete value zone: %w", err)
	}
	if !deleted {
		return domain.ErrValueZoneNotFound
	}
	return nil
}

func (u *valueZoneUsecase) loadOwned(ctx context.Context, userID, id string) (*domain.ValueZone, error) {
	zone, err := u.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find value zone: %w", err)
	}
	if zone == nil || zone.UserID != userID {
		return nil, domain.ErrValueZoneNotFound
	}
	return zone, nil
}
