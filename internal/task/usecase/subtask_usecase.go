package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reliance-backend/internal/task/domain"
)

func (u *taskUsecase) ListSubtasks(ctx context.Context, userID, taskID string) ([]*domain.Task, error) {
	if _, err := u.GetTask(ctx, userID, taskID); err != nil {
		return nil, err
	}
	subtasks, err := u.taskRepo.FindSubtasks(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}
	return subtasks, nil
}

// CreateSubtask runs in two phases: the child is created, then linked.
// If linking fails the child is left unreferenced and only logged.
func (u *taskUsecase) CreateSubtask(ctx context.Context, userID, mainTaskID string, task *domain.Task, order int) (*domain.Task, error) {
	if order < 0 {
		return nil, fmt.Errorf("%w: order must be a non-negative integer", domain.ErrInvalidTask)
	}
	if _, err := u.loadOwned(ctx, userID, mainTaskID); err != nil {
		return nil, err
	}

	prepareNewTask(userID, task)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	err := u.withTaskLock(ctx, mainTaskID, func() error {
		if err := u.taskRepo.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to create subtask: %w", err)
		}

		parent, err := u.taskRepo.AddSubtask(ctx, mainTaskID, task.ID, order)
		if err == nil && parent == nil {
			err = domain.ErrTaskNotFound
		}
		if err != nil {
			log.Printf("[TaskUsecase] Subtask %s created but not linked to task %s: %v", task.ID, mainTaskID, err)
			if errors.Is(err, domain.ErrTaskNotFound) {
				return err
			}
			return fmt.Errorf("failed to link subtask: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (u *taskUsecase) AddExistingSubtask(ctx context.Context, userID, mainTaskID, subtaskID string) (*domain.Task, error) {
	if mainTaskID == subtaskID {
		return nil, domain.ErrSelfReference
	}
	parent, err := u.loadOwned(ctx, userID, mainTaskID)
	if err != nil {
		return nil, err
	}
	if _, err := u.loadOwned(ctx, userID, subtaskID); err != nil {
		return nil, err
	}
	if parent.HasSubtask(subtaskID) {
		return nil, domain.ErrSubtaskAlreadyLinked
	}

	var updated *domain.Task
	err = u.withTaskLock(ctx, mainTaskID, func() error {
		var err error
		updated, err = u.taskRepo.AppendSubtaskIfAbsent(ctx, mainTaskID, subtaskID)
		if err != nil {
			if errors.Is(err, domain.ErrSubtaskAlreadyLinked) {
				return err
			}
			return fmt.Errorf("failed to link subtask: %w", err)
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

// RemoveSubtask always unlinks before deleting so the parent never points at a deleted record
func (u *taskUsecase) RemoveSubtask(ctx context.Context, userID, mainTaskID, subtaskID string, deleteTask bool) error {
	parent, err := u.loadOwned(ctx, userID, mainTaskID)
	if err != nil {
		return err
	}
	if _, err := u.loadOwned(ctx, userID, subtaskID); err != nil {
		return err
	}
	if !parent.HasSubtask(subtaskID) {
		return domain.ErrSubtaskNotLinked
	}

	return u.withTaskLock(ctx, mainTaskID, func() error {
		removed, err := u.taskRepo.RemoveSubtask(ctx, mainTaskID, subtaskID)
		if err != nil {
			return fmt.Errorf("failed to unlink subtask: %w", err)
		}
		if !removed {
			return fmt.Errorf("failed to unlink subtask %s from task %s", subtaskID, mainTaskID)
		}

		if !deleteTask {
			return nil
		}
		deleted, err := u.taskRepo.Delete(ctx, subtaskID)
		if err != nil {
			return fmt.Errorf("failed to delete subtask: %w", err)
		}
		if !deleted {
			return fmt.Errorf("failed to delete subtask %s", subtaskID)
		}
		return nil
	})
}

func (u *taskUsecase) UpdateSubtaskOrder(ctx context.Context, userID, mainTaskID, subtaskID string, order int) (*domain.Task, error) {
	if order < 0 {
		return nil, fmt.Errorf("%w: order must be a non-negative integer", domain.ErrInvalidTask)
	}
	parent, err := u.loadOwned(ctx, userID, mainTaskID)
	if err != nil {
		return nil, err
	}
	if !parent.HasSubtask(subtaskID) {
		return nil, domain.ErrSubtaskNotLinked
	}

	var updated *domain.Task
	err = u.withTaskLock(ctx, mainTaskID, func() error {
		var err error
		updated, err = u.taskRepo.UpdateSubtaskOrder(ctx, mainTaskID, subtaskID, order)
		if err != nil {
			return fmt.Errorf("failed to update subtask order: %w", err)
		}
		// Unlinked by a concurrent request after the membership check
		if updated == nil {
			return domain.ErrSubtaskNotLinked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
