package repository

import (
	"context"
	"errors"
	"reliance-backend/internal/task/domain"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errPartialDelete = errors.New("partial delete")

// gormTaskRepository implements TaskRepository using GORM
type gormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GORM-based TaskRepository.
// The schema is owned by the SQL migrations.
func NewGormTaskRepository(db *gorm.DB) TaskRepository {
	return &gormTaskRepository{db: db}
}

func (r *gormTaskRepository) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Subtasks == nil {
		task.Subtasks = domain.SubtaskList{}
	}
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *gormTaskRepository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	return findTask(r.db.WithContext(ctx), id, false)
}

func (r *gormTaskRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) FindWithFilters(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	query := r.db.WithContext(ctx).Model(&domain.Task{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ValueZoneID != "" {
		query = query.Where("value_zone_id = ?", filter.ValueZoneID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ScheduledFrom != nil {
		query = query.Where("scheduled_start >= ?", *filter.ScheduledFrom)
	}
	if filter.ScheduledUntil != nil {
		query = query.Where("scheduled_start <= ?", *filter.ScheduledUntil)
	}
	if filter.DeadlineBefore != nil {
		query = query.Where("deadline <= ?", *filter.DeadlineBefore)
	}

	var tasks []*domain.Task
	err := query.Order("created_at DESC").Order("id ASC").Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return r.mutate(ctx, id, func(task *domain.Task) (bool, error) {
		patch.Apply(task)
		return true, nil
	})
}

func (r *gormTaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Delete(&domain.Task{}, "id = ?", id)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *gormTaskRepository) DeleteMany(ctx context.Context, ids []string) (bool, error) {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return true, nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id IN ?", ids).Delete(&domain.Task{})
		if result.Error != nil {
			return result.Error
		}
		// Roll back rather than leave a partial cascade behind
		if result.RowsAffected != int64(len(ids)) {
			return errPartialDelete
		}
		return nil
	})
	if errors.Is(err, errPartialDelete) {
		return false, nil
	}
	return err == nil, err
}

func (r *gormTaskRepository) AddSubtask(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(task *domain.Task) (bool, error) {
		task.Subtasks = append(task.Subtasks, domain.Subtask{Order: order, SubtaskID: subtaskID})
		return true, nil
	})
}

func (r *gormTaskRepository) AppendSubtaskIfAbsent(ctx context.Context, taskID, subtaskID string) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(task *domain.Task) (bool, error) {
		if task.HasSubtask(subtaskID) {
			return false, domain.ErrSubtaskAlreadyLinked
		}
		task.Subtasks = append(task.Subtasks, domain.Subtask{Order: task.MaxSubtaskOrder() + 1, SubtaskID: subtaskID})
		return true, nil
	})
}

func (r *gormTaskRepository) RemoveSubtask(ctx context.Context, taskID, subtaskID string) (bool, error) {
	removed := false
	_, err := r.mutate(ctx, taskID, func(task *domain.Task) (bool, error) {
		kept := make(domain.SubtaskList, 0, len(task.Subtasks))
		for _, st := range task.Subtasks {
			if st.SubtaskID == subtaskID {
				removed = true
				continue
			}
			kept = append(kept, st)
		}
		task.Subtasks = kept
		return removed, nil
	})
	return removed, err
}

func (r *gormTaskRepository) UpdateSubtaskOrder(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error) {
	found := false
	task, err := r.mutate(ctx, taskID, func(task *domain.Task) (bool, error) {
		for i := range task.Subtasks {
			if task.Subtasks[i].SubtaskID == subtaskID {
				task.Subtasks[i].Order = order
				found = true
			}
		}
		return found, nil
	})
	if err != nil || !found {
		return nil, err
	}
	return task, nil
}

func (r *gormTaskRepository) FindSubtasks(ctx context.Context, taskID string) ([]*domain.Task, error) {
	db := r.db.WithContext(ctx)
	parent, err := findTask(db, taskID, false)
	if err != nil || parent == nil {
		return []*domain.Task{}, err
	}
	ids := parent.SubtaskIDs()
	if len(ids) == 0 {
		return []*domain.Task{}, nil
	}

	var children []*domain.Task
	if err := db.Where("id IN ?", ids).Find(&children).Error; err != nil {
		return nil, err
	}
	domain.SortByLinkOrder(parent, children)
	return children, nil
}

func (r *gormTaskRepository) FindOverdue(ctx context.Context, now time.Time) ([]*domain.Task, error) {
	var tasks []*domain.Task
	err := r.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND deadline < ? AND status IN ?", now, openStatuses()).
		Find(&tasks).Error
	return tasks, err
}

func (r *gormTaskRepository) MarkMissed(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&domain.Task{}).
		Where("id = ? AND status IN ?", id, openStatuses()).
		Updates(map[string]interface{}{
			"status":     domain.TaskStatusMissed,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// mutate loads the task under a row lock, lets fn change it and saves the result.
// fn returns false to skip the write.
func (r *gormTaskRepository) mutate(ctx context.Context, id string, fn func(*domain.Task) (bool, error)) (*domain.Task, error) {
	var out *domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := findTask(tx, id, true)
		if err != nil || task == nil {
			return err
		}
		changed, err := fn(task)
		if err != nil {
			return err
		}
		out = task
		if !changed {
			return nil
		}
		task.UpdatedAt = time.Now()
		return tx.Save(task).Error
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func findTask(db *gorm.DB, id string, forUpdate bool) (*domain.Task, error) {
	if forUpdate {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var task domain.Task
	err := db.Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}
