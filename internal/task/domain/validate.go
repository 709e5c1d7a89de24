package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MaxTags              = 10
	MaxTagLength         = 50
	MinEffortMinutes     = 1
	MaxEffortMinutes     = 1440
)

// Normalize trims surrounding whitespace from the title, description and tags
func (t *Task) Normalize() {
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	for i := range t.Tags {
		t.Tags[i] = strings.TrimSpace(t.Tags[i])
	}
}

// Validate checks field ranges and cross-field rules of a task
func (t *Task) Validate() error {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return invalid("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return invalid("title cannot exceed %d characters", MaxTitleLength)
	}
	if utf8.RuneCountInString(t.Description) > MaxDescriptionLength {
		return invalid("description cannot exceed %d characters", MaxDescriptionLength)
	}
	if t.ValueZoneID == "" {
		return invalid("valueZoneId is required")
	}
	if !t.Brainpower.Valid() {
		return invalid("brainpower must be one of HIGH, MEDIUM, LOW")
	}
	if !t.Priority.Valid() {
		return invalid("priority must be one of AUTO, LOW, MEDIUM, HIGH")
	}
	if !t.Status.Valid() {
		return invalid("status must be one of PENDING, IN_PROGRESS, COMPLETED, MISSED, CLOSED")
	}
	if t.EffortEstimateMinutes < MinEffortMinutes || t.EffortEstimateMinutes > MaxEffortMinutes {
		return invalid("effortEstimateMinutes must be between %d and %d", MinEffortMinutes, MaxEffortMinutes)
	}
	if len(t.Tags) > MaxTags {
		return invalid("maximum %d tags allowed", MaxTags)
	}
	for _, tag := range t.Tags {
		if tag == "" || utf8.RuneCountInString(tag) > MaxTagLength {
			return invalid("tags must be between 1 and %d characters", MaxTagLength)
		}
	}
	seen := make(map[string]bool, len(t.DependencyIDs))
	for _, dep := range t.DependencyIDs {
		if seen[dep] {
			return invalid("duplicate dependencies are not allowed")
		}
		seen[dep] = true
	}
	if t.IsRecurring && strings.TrimSpace(t.RecurrencePattern) == "" {
		return invalid("recurrencePattern is required when isRecurring is true")
	}
	if t.TimeFixed && (t.ScheduledStart == nil || t.ScheduledEnd == nil) {
		return invalid("both scheduledStart and scheduledEnd are required when timeFixed is true")
	}
	if t.ScheduledStart != nil && t.ScheduledEnd != nil && !t.ScheduledEnd.After(*t.ScheduledStart) {
		return invalid("scheduledEnd must be after scheduledStart")
	}
	if t.ScheduledEnd != nil && t.Deadline != nil && !t.Deadline.After(*t.ScheduledEnd) {
		return invalid("deadline must be after scheduledEnd")
	}
	return nil
}

// Valid reports whether b is a known brainpower level
func (b Brainpower) Valid() bool {
	switch b {
	case BrainpowerHigh, BrainpowerMedium, BrainpowerLow:
		return true
	}
	return false
}

// Valid reports whether p is a known priority
func (p Priority) Valid() bool {
	switch p {
	case PriorityAuto, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Valid reports whether s is a known status
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusMissed, TaskStatusClosed:
		return true
	}
	return false
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidTask, fmt.Sprintf(format, args...))
}
