package dto

import (
	"reliance-backend/internal/task/domain"
	"time"
)

// CreateTaskRequest is the body of POST /v1/tasks
type CreateTaskRequest struct {
	Title                 string                 `json:"title" binding:"required,min=1,max=200"`
	Description           string                 `json:"description" binding:"max=1000"`
	ValueZoneID           string                 `json:"valueZoneId" binding:"required"`
	ScheduledStart        *time.Time             `json:"scheduledStart"`
	ScheduledEnd          *time.Time             `json:"scheduledEnd"`
	Deadline              *time.Time             `json:"deadline"`
	Brainpower            string                 `json:"brainpower" binding:"required,oneof=HIGH MEDIUM LOW"`
	TimeFixed             bool                   `json:"timeFixed"`
	MultitaskAllowed      bool                   `json:"multitaskAllowed"`
	EffortEstimateMinutes int                    `json:"effortEstimateMinutes" binding:"required,min=1,max=1440"`
	Priority              string                 `json:"priority" binding:"omitempty,oneof=AUTO LOW MEDIUM HIGH"`
	Status                string                 `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED MISSED CLOSED"`
	Tags                  []string               `json:"tags" binding:"omitempty,max=10,dive,min=1,max=50"`
	IsRecurring           bool                   `json:"isRecurring"`
	RecurrencePattern     string                 `json:"recurrencePattern"`
	DependencyIDs         []string               `json:"dependencyIds" binding:"omitempty,unique"`
	Metadata              map[string]interface{} `json:"metadata"`
}

// ToTask converts the request into an unsaved task
func (r CreateTaskRequest) ToTask() *domain.Task {
	task := &domain.Task{
		Title:                 r.Title,
		Description:           r.Description,
		ValueZoneID:           r.ValueZoneID,
		ScheduledStart:        r.ScheduledStart,
		ScheduledEnd:          r.ScheduledEnd,
		Deadline:              r.Deadline,
		Brainpower:            domain.Brainpower(r.Brainpower),
		TimeFixed:             r.TimeFixed,
		MultitaskAllowed:      r.MultitaskAllowed,
		EffortEstimateMinutes: r.EffortEstimateMinutes,
		Priority:              domain.Priority(r.Priority),
		Status:                domain.TaskStatus(r.Status),
		Tags:                  domain.StringList(r.Tags),
		IsRecurring:           r.IsRecurring,
		RecurrencePattern:     r.RecurrencePattern,
		DependencyIDs:         domain.StringList(r.DependencyIDs),
		Metadata:              domain.Metadata(r.Metadata),
	}
	if task.Metadata == nil {
		task.Metadata = domain.Metadata{}
	}
	return task
}

// CreateSubtaskRequest is the body of POST /v1/tasks/:id/subtasks
type CreateSubtaskRequest struct {
	CreateTaskRequest
	Order *int `json:"order" binding:"required,min=0"`
}

// UpdateTaskRequest is the body of PATCH /v1/tasks/:id. Omitted fields are left unchanged.
type UpdateTaskRequest struct {
	Title                 *string                `json:"title" binding:"omitempty,min=1,max=200"`
	Description           *string                `json:"description" binding:"omitempty,max=1000"`
	ValueZoneID           *string                `json:"valueZoneId" binding:"omitempty,min=1"`
	ScheduledStart        *time.Time             `json:"scheduledStart"`
	ScheduledEnd          *time.Time             `json:"scheduledEnd"`
	Deadline              *time.Time             `json:"deadline"`
	Brainpower            *string                `json:"brainpower" binding:"omitempty,oneof=HIGH MEDIUM LOW"`
	TimeFixed             *bool                  `json:"timeFixed"`
	MultitaskAllowed      *bool                  `json:"multitaskAllowed"`
	EffortEstimateMinutes *int                   `json:"effortEstimateMinutes" binding:"omitempty,min=1,max=1440"`
	Priority              *string                `json:"priority" binding:"omitempty,oneof=AUTO LOW MEDIUM HIGH"`
	Status                *string                `json:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED MISSED CLOSED"`
	Tags                  *[]string              `json:"tags" binding:"omitempty,max=10,dive,min=1,max=50"`
	IsRecurring           *bool                  `json:"isRecurring"`
	RecurrencePattern     *string                `json:"recurrencePattern"`
	DependencyIDs         *[]string              `json:"dependencyIds" binding:"omitempty,unique"`
	Metadata              map[string]interface{} `json:"metadata"`
}

// ToPatch converts the request into a domain patch
func (r UpdateTaskRequest) ToPatch() domain.TaskPatch {
	patch := domain.TaskPatch{
		Title:                 r.Title,
		Description:           r.Description,
		ValueZoneID:           r.ValueZoneID,
		ScheduledStart:        r.ScheduledStart,
		ScheduledEnd:          r.ScheduledEnd,
		Deadline:              r.Deadline,
		TimeFixed:             r.TimeFixed,
		MultitaskAllowed:      r.MultitaskAllowed,
		EffortEstimateMinutes: r.EffortEstimateMinutes,
		Tags:                  r.Tags,
		IsRecurring:           r.IsRecurring,
		RecurrencePattern:     r.RecurrencePattern,
		DependencyIDs:         r.DependencyIDs,
		Metadata:              r.Metadata,
	}
	if r.Brainpower != nil {
		b := domain.Brainpower(*r.Brainpower)
		patch.Brainpower = &b
	}
	if r.Priority != nil {
		p := domain.Priority(*r.Priority)
		patch.Priority = &p
	}
	if r.Status != nil {
		s := domain.TaskStatus(*r.Status)
		patch.Status = &s
	}
	return patch
}

// UpdateSubtaskOrderRequest is the body of PATCH /v1/tasks/:id/subtasks/:subtaskId/order
type UpdateSubtaskOrderRequest struct {
	Order *int `json:"order" binding:"required,min=0"`
}

// DeleteOptions carries the optional cascade flags of the delete routes
type DeleteOptions struct {
	DeleteSubtasks bool `json:"deleteSubtasks" form:"deleteSubtasks"`
	DeleteTask     bool `json:"deleteTask" form:"deleteTask"`
}

// ListTasksQuery holds the GET /v1/tasks query string
type ListTasksQuery struct {
	ValueZoneID    string     `form:"valueZoneId"`
	Status         string     `form:"status" binding:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED MISSED CLOSED"`
	StartDate      *time.Time `form:"startDate" time_format:"2006-01-02T15:04:05Z07:00"`
	EndDate        *time.Time `form:"endDate" time_format:"2006-01-02T15:04:05Z07:00"`
	ScheduledStart *time.Time `form:"scheduledStart" time_format:"2006-01-02T15:04:05Z07:00"`
	ScheduledEnd   *time.Time `form:"scheduledEnd" time_format:"2006-01-02T15:04:05Z07:00"`
	Deadline       *time.Time `form:"deadline" time_format:"2006-01-02T15:04:05Z07:00"`
}

// ToFilter folds the two date range pairs into one scheduled window
func (q ListTasksQuery) ToFilter() domain.TaskFilter {
	filter := domain.TaskFilter{
		ValueZoneID:    q.ValueZoneID,
		Status:         domain.TaskStatus(q.Status),
		DeadlineBefore: q.Deadline,
	}
	filter.ScheduledFrom = later(q.StartDate, q.ScheduledStart)
	filter.ScheduledUntil = earlier(q.EndDate, q.ScheduledEnd)
	return filter
}

func later(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.After(*b) {
		return a
	}
	return b
}

func earlier(a, b *time.Time) *time.Time {
	if a == nil {
		return b
	}
	if b == nil || a.Before(*b) {
		return a
	}
	return b
}
