package usecase

import (
	"context"
	"fmt"
	"log"
	"reliance-backend/internal/task/domain"
	"reliance-backend/internal/task/repository"
	"reliance-backend/pkg/lock"
)

// taskUsecase implements TaskUsecase interface
type taskUsecase struct {
	taskRepo repository.TaskRepository
	locker   lock.Locker
}

// NewTaskUsecase creates a new instance of taskUsecase.
// A nil locker falls back to an in-process lock.
func NewTaskUsecase(taskRepo repository.TaskRepository, locker lock.Locker) TaskUsecase {
	if locker == nil {
		locker = lock.NewLocalLocker()
	}
	return &taskUsecase{
		taskRepo: taskRepo,
		locker:   locker,
	}
}

func (u *taskUsecase) CreateTask(ctx context.Context, userID string, task *domain.Task) (*domain.Task, error) {
	prepareNewTask(userID, task)
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := u.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (u *taskUsecase) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	// Tasks owned by someone else are reported as missing
	if task == nil || task.UserID != userID {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (u *taskUsecase) ListTasks(ctx context.Context, userID string, filter domain.TaskFilter) ([]*domain.Task, error) {
	filter.UserID = userID
	tasks, err := u.taskRepo.FindWithFilters(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

func (u *taskUsecase) UpdateTask(ctx context.Context, userID, taskID string, patch domain.TaskPatch) (*domain.Task, error) {
	patch = patch.Normalize()

	// Validation and the write must see the same row state
	var updated *domain.Task
	err := u.withTaskLock(ctx, taskID, func() error {
		task, err := u.loadOwned(ctx, userID, taskID)
		if err != nil {
			return err
		}

		merged := task.Clone()
		patch.Apply(merged)
		if err := merged.Validate(); err != nil {
			return err
		}
		if patch.IsEmpty() {
			updated = task
			return nil
		}

		updated, err = u.taskRepo.Update(ctx, taskID, patch)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		if updated == nil {
			return domain.ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (u *taskUsecase) DeleteTask(ctx context.Context, userID, taskID string, deleteSubtasks bool) error {
	if _, err := u.loadOwned(ctx, userID, taskID); err != nil {
		return err
	}

	if !deleteSubtasks {
		deleted, err := u.taskRepo.Delete(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		if !deleted {
			return domain.ErrTaskNotFound
		}
		return nil
	}

	return u.withTaskLock(ctx, taskID, func() error {
		children, err := u.taskRepo.FindSubtasks(ctx, taskID)
		if err != nil {
			return fmt.Errorf("failed to resolve subtasks: %w", err)
		}

		ids := make([]string, 0, len(children)+1)
		ids = append(ids, taskID)
		for _, child := range children {
			ids = append(ids, child.ID)
		}

		ok, err := u.taskRepo.DeleteMany(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to delete task with subtasks: %w", err)
		}
		if !ok {
			log.Printf("[TaskUsecase] Cascade delete of task %s did not remove all %d records", taskID, len(ids))
			return domain.ErrIncompleteDelete
		}
		return nil
	})
}

// loadOwned loads a task for mutation. Missing tasks are NotFound,
// tasks owned by another user are Forbidden.
func (u *taskUsecase) loadOwned(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := u.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	if task.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return task, nil
}

func (u *taskUsecase) withTaskLock(ctx context.Context, taskID string, fn func() error) error {
	unlock, err := u.locker.Lock(ctx, "task:"+taskID)
	if err != nil {
		return fmt.Errorf("failed to lock task %s: %w", taskID, err)
	}
	defer unlock()
	return fn()
}

// prepareNewTask fills server-owned fields and defaults before validation
func prepareNewTask(userID string, task *domain.Task) {
	task.ID = ""
	task.UserID = userID
	task.Subtasks = domain.SubtaskList{}
	if task.Status == "" {
		task.Status = domain.TaskStatusPending
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityAuto
	}
	if task.Brainpower == "" {
		task.Brainpower = domain.BrainpowerMedium
	}
	if task.Tags == nil {
		task.Tags = domain.StringList{}
	}
	if task.DependencyIDs == nil {
		task.DependencyIDs = domain.StringList{}
	}
	task.Normalize()
}
