package domain

import (
	"strings"
	"time"
)

// TaskPatch holds the fields an update may change. Nil fields are left untouched.
// Ownership and the subtask list are never part of a patch.
type TaskPatch struct {
	Title                 *string
	Description           *string
	ValueZoneID           *string
	ScheduledStart        *time.Time
	ScheduledEnd          *time.Time
	Deadline              *time.Time
	Brainpower            *Brainpower
	TimeFixed             *bool
	MultitaskAllowed      *bool
	EffortEstimateMinutes *int
	Priority              *Priority
	Status                *TaskStatus
	Tags                  *[]string
	IsRecurring           *bool
	RecurrencePattern     *string
	DependencyIDs         *[]string
	Metadata              map[string]interface{}
}

// IsEmpty reports whether the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ValueZoneID == nil &&
		p.ScheduledStart == nil && p.ScheduledEnd == nil && p.Deadline == nil &&
		p.Brainpower == nil && p.TimeFixed == nil && p.MultitaskAllowed == nil &&
		p.EffortEstimateMinutes == nil && p.Priority == nil && p.Status == nil &&
		p.Tags == nil && p.IsRecurring == nil && p.RecurrencePattern == nil &&
		p.DependencyIDs == nil && p.Metadata == nil
}

// Normalize returns a copy of p with the title, description and tags trimmed
func (p TaskPatch) Normalize() TaskPatch {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		p.Title = &title
	}
	if p.Description != nil {
		description := strings.TrimSpace(*p.Description)
		p.Description = &description
	}
	if p.Tags != nil {
		tags := make([]string, len(*p.Tags))
		for i, tag := range *p.Tags {
			tags[i] = strings.TrimSpace(tag)
		}
		p.Tags = &tags
	}
	return p
}

// Apply writes the patch onto t
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ValueZoneID != nil {
		t.ValueZoneID = *p.ValueZoneID
	}
	if p.ScheduledStart != nil {
		t.ScheduledStart = cloneTime(p.ScheduledStart)
	}
	if p.ScheduledEnd != nil {
		t.ScheduledEnd = cloneTime(p.ScheduledEnd)
	}
	if p.Deadline != nil {
		t.Deadline = cloneTime(p.Deadline)
	}
	if p.Brainpower != nil {
		t.Brainpower = *p.Brainpower
	}
	if p.TimeFixed != nil {
		t.TimeFixed = *p.TimeFixed
	}
	if p.MultitaskAllowed != nil {
		t.MultitaskAllowed = *p.MultitaskAllowed
	}
	if p.EffortEstimateMinutes != nil {
		t.EffortEstimateMinutes = *p.EffortEstimateMinutes
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Tags != nil {
		t.Tags = append(StringList{}, (*p.Tags)...)
	}
	if p.IsRecurring != nil {
		t.IsRecurring = *p.IsRecurring
	}
	if p.RecurrencePattern != nil {
		t.RecurrencePattern = *p.RecurrencePattern
	}
	if p.DependencyIDs != nil {
		t.DependencyIDs = append(StringList{}, (*p.DependencyIDs)...)
	}
	if p.Metadata != nil {
		t.Metadata = make(Metadata, len(p.Metadata))
		for k, v := range p.Metadata {
			t.Metadata[k] = v
		}
	}
}

// TaskFilter narrows a task listing. Every set field is AND-combined with the others.
type TaskFilter struct {
	UserID         string
	ValueZoneID    string
	Status         TaskStatus
	ScheduledFrom  *time.Time // scheduledStart >= ScheduledFrom
	ScheduledUntil *time.Time // scheduledStart <= ScheduledUntil
	DeadlineBefore *time.Time // deadline <= DeadlineBefore
}

// Matches reports whether t satisfies the filter
func (f TaskFilter) Matches(t *Task) bool {
	if f.UserID != "" && t.UserID != f.UserID {
		return false
	}
	if f.ValueZoneID != "" && t.ValueZoneID != f.ValueZoneID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.ScheduledFrom != nil && (t.ScheduledStart == nil || t.ScheduledStart.Before(*f.ScheduledFrom)) {
		return false
	}
	if f.ScheduledUntil != nil && (t.ScheduledStart == nil || t.ScheduledStart.After(*f.ScheduledUntil)) {
		return false
	}
	if f.DeadlineBefore != nil && (t.Deadline == nil || t.Deadline.After(*f.DeadlineBefore)) {
		return false
	}
	return true
}
