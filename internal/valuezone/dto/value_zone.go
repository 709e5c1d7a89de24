package dto

import (
	"strings"

	"reliance-backend/internal/valuezone/domain"
)

type CreateValueZoneRequest struct {
	Name                  string  `json:"name" binding:"required,min=1,max=100"`
	Description           string  `json:"description" binding:"max=500"`
	Priority              string  `json:"priority" binding:"required,oneof=HIGH MEDIUM LOW"`
	CalendarIntegrationID *string `json:"calendarIntegrationId"`
}

func (r *CreateValueZoneRequest) ToValueZone() *domain.ValueZone {
	zone := &domain.ValueZone{
		Name:        strings.TrimSpace(r.Name),
		Description: strings.TrimSpace(r.Description),
		Priority:    domain.Priority(r.Priority),
	}
	if r.CalendarIntegrationID != nil && *r.CalendarIntegrationID != "" {
		id := *r.CalendarIntegrationID
		zone.CalendarIntegrationID = &id
	}
	return zone
}

type UpdateValueZoneRequest struct {
	Name                  *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description           *string `json:"description" binding:"omitempty,max=500"`
	Priority              *string `json:"priority" binding:"omitempty,oneof=HIGH MEDIUM LOW"`
	CalendarIntegrationID *string `json:"calendarIntegrationId"`
}

func (r *UpdateValueZoneRequest) ToPatch() domain.ValueZonePatch {
	patch := domain.ValueZonePatch{
		Name:                  r.Name,
		Description:           r.Description,
		CalendarIntegrationID: r.CalendarIntegrationID,
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	return patch
}
