package usecase

import (
	"context"
	"reliance-backend/internal/task/domain"
)

// TaskUsecase defines the interface for task business logic.
// Every operation is scoped to the authenticated caller's userID.
type TaskUsecase interface {
	// CreateTask validates and persists a new task owned by userID
	CreateTask(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error)

	// GetTask retrieves a task the caller owns
	GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error)

	// ListTasks retrieves the caller's tasks matching the filter
	ListTasks(ctx context.Context, userID string, filter domain.TaskFilter) ([]*domain.Task, error)

	// UpdateTask applies a partial update and re-validates the result
	UpdateTask(ctx context.Context, userID, taskID string, patch domain.TaskPatch) (*domain.Task, error)

	// DeleteTask deletes a task, and its linked subtasks when deleteSubtasks is set
	DeleteTask(ctx context.Context, userID, taskID string, deleteSubtasks bool) error

	// ListSubtasks resolves the parent's subtasks sorted by order
	ListSubtasks(ctx context.Context, userID, taskID string) ([]*domain.Task, error)

	// CreateSubtask creates a new task and links it under the parent at order
	CreateSubtask(ctx context.Context, userID, mainTaskID string, task *domain.Task, order int) (*domain.Task, error)

	// AddExistingSubtask links an existing task after the parent's last subtask
	AddExistingSubtask(ctx context.Context, userID, mainTaskID, subtaskID string) (*domain.Task, error)

	// RemoveSubtask unlinks a subtask, deleting the child too when deleteTask is set
	RemoveSubtask(ctx context.Context, userID, mainTaskID, subtaskID string, deleteTask bool) error

	// UpdateSubtaskOrder changes one link's order key
	UpdateSubtaskOrder(ctx context.Context, userID, mainTaskID, subtaskID string, order int) (*domain.Task, error)
}
