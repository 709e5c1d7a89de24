package repository

import (
	"context"
	"reliance-backend/internal/task/domain"
	"time"
)

// TaskRepository defines the interface for task data access.
// Lookups return (nil, nil) when the record does not exist.
type TaskRepository interface {
	// Create persists a new task, assigning an ID and timestamps when missing
	Create(ctx context.Context, task *domain.Task) error

	// FindByID finds a task by its ID
	FindByID(ctx context.Context, id string) (*domain.Task, error)

	// FindByUserID finds all tasks owned by a user
	FindByUserID(ctx context.Context, userID string) ([]*domain.Task, error)

	// FindWithFilters finds tasks matching every set field of the filter
	FindWithFilters(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error)

	// Update applies a patch and returns the updated task, or nil if absent
	Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error)

	// Delete removes a task and reports whether exactly one record was removed
	Delete(ctx context.Context, id string) (bool, error)

	// DeleteMany removes tasks by ID. It reports false, and removes nothing,
	// unless every requested ID was deleted.
	DeleteMany(ctx context.Context, ids []string) (bool, error)

	// AddSubtask appends {order, subtaskID} to the parent without a duplicate check
	AddSubtask(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error)

	// AppendSubtaskIfAbsent appends subtaskID after the current highest order in one
	// conditional store operation. Returns domain.ErrSubtaskAlreadyLinked if present.
	AppendSubtaskIfAbsent(ctx context.Context, taskID, subtaskID string) (*domain.Task, error)

	// RemoveSubtask removes every link to subtaskID and reports whether any was removed
	RemoveSubtask(ctx context.Context, taskID, subtaskID string) (bool, error)

	// UpdateSubtaskOrder sets the order of an existing link, or returns nil if
	// the parent is absent or subtaskID is not linked
	UpdateSubtaskOrder(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error)

	// FindSubtasks resolves the parent's links sorted by order, then ID
	FindSubtasks(ctx context.Context, taskID string) ([]*domain.Task, error)

	// FindOverdue finds open tasks whose deadline is before now
	FindOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error)

	// MarkMissed sets an open task's status to MISSED
	MarkMissed(ctx context.Context, id string) (bool, error)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func openStatuses() []domain.TaskStatus {
	return []domain.TaskStatus{domain.TaskStatusPending, domain.TaskStatusInProgress}
}
