package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Priority ranks a value zone against the user's other zones
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// ValueZone is a user-defined bucket that tasks are filed under
type ValueZone struct {
	ID                    string    `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID                string    `json:"userId" gorm:"index;not null" bson:"userId"`
	Name                  string    `json:"name" gorm:"not null" bson:"name"`
	Description           string    `json:"description,omitempty" bson:"description,omitempty"`
	Priority              Priority  `json:"priority" gorm:"not null" bson:"priority"`
	CalendarIntegrationID *string   `json:"calendarIntegrationId" bson:"calendarIntegrationId"`
	CreatedAt             time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt" bson:"updatedAt"`
}

var (
	ErrValueZoneNotFound = errors.New("value zone not found")
	ErrInvalidValueZone  = errors.New("invalid value zone")
)

// ValueZonePatch carries the fields an update may change
type ValueZonePatch struct {
	Name                  *string
	Description           *string
	Priority              *Priority
	CalendarIntegrationID *string
}

func (p ValueZonePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Priority == nil && p.CalendarIntegrationID == nil
}

// Apply copies the set fields onto z. An empty CalendarIntegrationID clears the link.
func (p ValueZonePatch) Apply(z *ValueZone) {
	if p.Name != nil {
		z.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		z.Description = strings.TrimSpace(*p.Description)
	}
	if p.Priority != nil {
		z.Priority = *p.Priority
	}
	if p.CalendarIntegrationID != nil {
		if *p.CalendarIntegrationID == "" {
			z.CalendarIntegrationID = nil
		} else {
			id := *p.CalendarIntegrationID
			z.CalendarIntegrationID = &id
		}
	}
}

// Validate checks the fields every stored value zone must satisfy
func (z *ValueZone) Validate() error {
	if strings.TrimSpace(z.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidValueZone)
	}
	if utf8.RuneCountInString(z.Name) > 100 {
		return fmt.Errorf("%w: name cannot exceed 100 characters", ErrInvalidValueZone)
	}
	if utf8.RuneCountInString(z.Description) > 500 {
		return fmt.Errorf("%w: description cannot exceed 500 characters", ErrInvalidValueZone)
	}
	switch z.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("%w: priority must be HIGH, MEDIUM or LOW", ErrInvalidValueZone)
	}
	return nil
}
