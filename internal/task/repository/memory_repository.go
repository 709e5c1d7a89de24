package repository

import (
	"context"
	"reliance-backend/internal/task/domain"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ TaskRepository = (*MemoryTaskRepository)(nil)

// MemoryTaskRepository keeps tasks in process memory. Records are cloned on
// the way in and out so callers never alias stored state.
type MemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*domain.Task
}

// NewMemoryTaskRepository creates an empty in-memory TaskRepository
func NewMemoryTaskRepository() *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks: make(map[string]*domain.Task),
	}
}

func (r *MemoryTaskRepository) Create(_ context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Subtasks == nil {
		task.Subtasks = domain.SubtaskList{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.tasks[task.ID] = task.Clone()
	return nil
}

func (r *MemoryTaskRepository) FindByID(_ context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.tasks[id].Clone(), nil
}

func (r *MemoryTaskRepository) FindByUserID(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.FindWithFilters(ctx, domain.TaskFilter{UserID: userID})
}

func (r *MemoryTaskRepository) FindWithFilters(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryTaskRepository) Update(ctx context.Context, id string, patch domain.TaskPatch) (*domain.Task, error) {
	return r.mutate(ctx, id, func(t *domain.Task) bool {
		patch.Apply(t)
		return true
	})
}

func (r *MemoryTaskRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *MemoryTaskRepository) DeleteMany(_ context.Context, ids []string) (bool, error) {
	ids = dedupe(ids)

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.tasks[id]; !ok {
			return false, nil
		}
	}
	for _, id := range ids {
		delete(r.tasks, id)
	}
	return true, nil
}

func (r *MemoryTaskRepository) AddSubtask(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error) {
	return r.mutate(ctx, taskID, func(t *domain.Task) bool {
		t.Subtasks = append(t.Subtasks, domain.Subtask{Order: order, SubtaskID: subtaskID})
		return true
	})
}

func (r *MemoryTaskRepository) AppendSubtaskIfAbsent(ctx context.Context, taskID, subtaskID string) (*domain.Task, error) {
	linked := false
	task, err := r.mutate(ctx, taskID, func(t *domain.Task) bool {
		if t.HasSubtask(subtaskID) {
			linked = true
			return false
		}
		t.Subtasks = append(t.Subtasks, domain.Subtask{Order: t.MaxSubtaskOrder() + 1, SubtaskID: subtaskID})
		return true
	})
	if linked {
		return nil, domain.ErrSubtaskAlreadyLinked
	}
	return task, err
}

func (r *MemoryTaskRepository) RemoveSubtask(ctx context.Context, taskID, subtaskID string) (bool, error) {
	removed := false
	_, err := r.mutate(ctx, taskID, func(t *domain.Task) bool {
		kept := make(domain.SubtaskList, 0, len(t.Subtasks))
		for _, st := range t.Subtasks {
			if st.SubtaskID == subtaskID {
				removed = true
				continue
			}
			kept = append(kept, st)
		}
		t.Subtasks = kept
		return removed
	})
	return removed, err
}

func (r *MemoryTaskRepository) UpdateSubtaskOrder(ctx context.Context, taskID, subtaskID string, order int) (*domain.Task, error) {
	found := false
	task, err := r.mutate(ctx, taskID, func(t *domain.Task) bool {
		for i := range t.Subtasks {
			if t.Subtasks[i].SubtaskID == subtaskID {
				t.Subtasks[i].Order = order
				found = true
			}
		}
		return found
	})
	if !found {
		return nil, err
	}
	return task, err
}

func (r *MemoryTaskRepository) FindSubtasks(_ context.Context, taskID string) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	children := make([]*domain.Task, 0)
	parent, ok := r.tasks[taskID]
	if !ok {
		return children, nil
	}
	for _, id := range parent.SubtaskIDs() {
		if child, ok := r.tasks[id]; ok {
			children = append(children, child.Clone())
		}
	}
	domain.SortByLinkOrder(parent, children)
	return children, nil
}

func (r *MemoryTaskRepository) FindOverdue(_ context.Context, now time.Time) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Task, 0)
	for _, t := range r.tasks {
		if t.IsOverdue(now) {
			out = append(out, t.Clone())
		}
	}
	return out, nil
}

func (r *MemoryTaskRepository) MarkMissed(ctx context.Context, id string) (bool, error) {
	marked := false
	_, err := r.mutate(ctx, id, func(t *domain.Task) bool {
		if t.Status != domain.TaskStatusPending && t.Status != domain.TaskStatusInProgress {
			return false
		}
		t.Status = domain.TaskStatusMissed
		marked = true
		return true
	})
	return marked, err
}

// mutate runs fn against the stored task under the write lock.
// fn returns false when it made no change.
func (r *MemoryTaskRepository) mutate(_ context.Context, id string, fn func(*domain.Task) bool) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	if fn(t) {
		t.UpdatedAt = time.Now()
	}
	return t.Clone(), nil
}
