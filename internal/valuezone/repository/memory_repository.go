package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"reliance-backend/internal/valuezone/domain"

	"github.com/google/uuid"
)

var _ ValueZoneRepository = (*MemoryValueZoneRepository)(nil)

type MemoryValueZoneRepository struct {
	mu    sync.RWMutex
	zones map[string]domain.ValueZone
}

func NewMemoryValueZoneRepository() *MemoryValueZoneRepository {
	return &MemoryValueZoneRepository{
		zones: make(map[string]domain.ValueZone),
	}
}

func (r *MemoryValueZoneRepository) Create(_ context.Context, zone *domain.ValueZone) error {
	zone.ID = uuid.New().String()
	zone.CreatedAt = time.Now()
	zone.UpdatedAt = zone.CreatedAt

	r.mu.Lock()
	defer r.mu.Unlock()

	r.zones[zone.ID] = copyZone(*zone)
	return nil
}

func (r *MemoryValueZoneRepository) FindByID(_ context.Context, id string) (*domain.ValueZone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zone, ok := r.zones[id]
	if !ok {
		return nil, nil
	}
	out := copyZone(zone)
	return &out, nil
}

func (r *MemoryValueZoneRepository) FindByUserID(_ context.Context, userID string) ([]*domain.ValueZone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	zones := make([]*domain.ValueZone, 0)
	for _, zone := range r.zones {
		if zone.UserID == userID {
			z := copyZone(zone)
			zones = append(zones, &z)
		}
	}
	sort.Slice(zones, func(i, j int) bool {
		if !zones[i].CreatedAt.Equal(zones[j].CreatedAt) {
			return zones[i].CreatedAt.Before(zones[j].CreatedAt)
		}
		return zones[i].ID < zones[j].ID
	})
	return zones, nil
}

func (r *MemoryValueZoneRepository) Update(_ context.Context, zone *domain.ValueZone) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.zones[zone.ID]; !ok {
		return nil
	}
	zone.UpdatedAt = time.Now()
	r.zones[zone.ID] = copyZone(*zone)
	return nil
}

func (r *MemoryValueZoneRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.zones[id]; !ok {
		return false, nil
	}
	delete(r.zones, id)
	return true, nil
}

func copyZone(z domain.ValueZone) domain.ValueZone {
	if z.CalendarIntegrationID != nil {
		id := *z.CalendarIntegrationID
		z.CalendarIntegrationID = &id
	}
	return z
}
