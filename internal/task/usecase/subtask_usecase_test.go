package usecase

import (
	"context"
	"testing"

	"reliance-backend/internal/task/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubtaskScenario(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()

	p := mustCreate(t, uc, owner, "P")

	s, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("S"), 0)
	require.NoError(t, err)
	got, _ := uc.GetTask(ctx, owner, p.ID)
	assert.Equal(t, domain.SubtaskList{{Order: 0, SubtaskID: s.ID}}, got.Subtasks)

	x := mustCreate(t, uc, owner, "X")
	got, err = uc.AddExistingSubtask(ctx, owner, p.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SubtaskList{{Order: 0, SubtaskID: s.ID}, {Order: 1, SubtaskID: x.ID}}, got.Subtasks)

	require.NoError(t, uc.RemoveSubtask(ctx, owner, p.ID, s.ID, false))
	got, _ = uc.GetTask(ctx, owner, p.ID)
	assert.Equal(t, domain.SubtaskList{{Order: 1, SubtaskID: x.ID}}, got.Subtasks)
	_, err = uc.GetTask(ctx, owner, s.ID)
	require.NoError(t, err)

	require.NoError(t, uc.DeleteTask(ctx, owner, p.ID, true))
	_, err = uc.GetTask(ctx, owner, p.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = uc.GetTask(ctx, owner, x.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = uc.GetTask(ctx, owner, s.ID)
	assert.NoError(t, err, "unlinked child is not part of the cascade")
}

func TestListSubtasks_SortedByOrderWithoutParent(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")

	late, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("late"), 10)
	require.NoError(t, err)
	early, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("early"), 2)
	require.NoError(t, err)
	mid, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("mid"), 5)
	require.NoError(t, err)

	subtasks, err := uc.ListSubtasks(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Len(t, subtasks, 3)
	assert.Equal(t, []string{early.ID, mid.ID, late.ID}, []string{subtasks[0].ID, subtasks[1].ID, subtasks[2].ID})
	for _, st := range subtasks {
		assert.NotEqual(t, p.ID, st.ID)
	}

	_, err = uc.ListSubtasks(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestCreateSubtask_Validation(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")

	_, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("child"), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidTask)

	_, err = uc.CreateSubtask(ctx, owner, p.ID, newInput(""), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidTask)

	_, err = uc.CreateSubtask(ctx, owner, "missing", newInput("child"), 0)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = uc.CreateSubtask(ctx, stranger, p.ID, newInput("child"), 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, _ := uc.GetTask(ctx, owner, p.ID)
	assert.Empty(t, got.Subtasks)
}

func TestAddExistingSubtask_SecondCallConflicts(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	x := mustCreate(t, uc, owner, "X")

	_, err := uc.AddExistingSubtask(ctx, owner, p.ID, x.ID)
	require.NoError(t, err)
	_, err = uc.AddExistingSubtask(ctx, owner, p.ID, x.ID)
	assert.ErrorIs(t, err, domain.ErrSubtaskAlreadyLinked)

	got, _ := uc.GetTask(ctx, owner, p.ID)
	assert.Len(t, got.Subtasks, 1)
}

func TestAddExistingSubtask_AppendsAfterHighestOrder(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	_, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("a"), 7)
	require.NoError(t, err)
	x := mustCreate(t, uc, owner, "X")

	got, err := uc.AddExistingSubtask(ctx, owner, p.ID, x.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.Subtask{Order: 8, SubtaskID: x.ID}, got.Subtasks[len(got.Subtasks)-1])
}

func TestAddExistingSubtask_Rejections(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	theirs := mustCreate(t, uc, stranger, "theirs")

	_, err := uc.AddExistingSubtask(ctx, owner, p.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrSelfReference)

	_, err = uc.AddExistingSubtask(ctx, owner, p.ID, "missing")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = uc.AddExistingSubtask(ctx, owner, p.ID, theirs.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = uc.AddExistingSubtask(ctx, stranger, p.ID, theirs.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	got, _ := uc.GetTask(ctx, owner, p.ID)
	assert.Empty(t, got.Subtasks)
}

func TestRemoveSubtask_ThenRelinkSucceeds(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	x := mustCreate(t, uc, owner, "X")

	_, err := uc.AddExistingSubtask(ctx, owner, p.ID, x.ID)
	require.NoError(t, err)
	require.NoError(t, uc.RemoveSubtask(ctx, owner, p.ID, x.ID, false))
	_, err = uc.AddExistingSubtask(ctx, owner, p.ID, x.ID)
	assert.NoError(t, err)
}

func TestRemoveSubtask_WithDeleteTask(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	s, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("S"), 0)
	require.NoError(t, err)

	require.NoError(t, uc.RemoveSubtask(ctx, owner, p.ID, s.ID, true))

	_, err = uc.GetTask(ctx, owner, s.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	got, _ := uc.GetTask(ctx, owner, p.ID)
	assert.Empty(t, got.Subtasks)
}

func TestRemoveSubtask_Rejections(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	loose := mustCreate(t, uc, owner, "loose")
	s, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("S"), 0)
	require.NoError(t, err)

	assert.ErrorIs(t, uc.RemoveSubtask(ctx, owner, p.ID, loose.ID, false), domain.ErrSubtaskNotLinked)
	assert.ErrorIs(t, uc.RemoveSubtask(ctx, owner, p.ID, "missing", false), domain.ErrTaskNotFound)
	assert.ErrorIs(t, uc.RemoveSubtask(ctx, stranger, p.ID, s.ID, true), domain.ErrForbidden)

	got, _ := uc.GetTask(ctx, owner, p.ID)
	assert.Len(t, got.Subtasks, 1)
	_, err = uc.GetTask(ctx, owner, s.ID)
	assert.NoError(t, err)
}

func TestUpdateSubtaskOrder(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	a, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("a"), 0)
	require.NoError(t, err)
	b, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("b"), 1)
	require.NoError(t, err)

	updated, err := uc.UpdateSubtaskOrder(ctx, owner, p.ID, a.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, subtaskIDs(updated), "list position is unchanged, only the key")

	subtasks, err := uc.ListSubtasks(ctx, owner, p.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, subtasks[0].ID)
	assert.Equal(t, a.ID, subtasks[1].ID)
}

func TestUpdateSubtaskOrder_NotMemberLeavesListUnchanged(t *testing.T) {
	uc, _ := setupUsecase()
	ctx := context.Background()
	p := mustCreate(t, uc, owner, "P")
	a, err := uc.CreateSubtask(ctx, owner, p.ID, newInput("a"), 3)
	require.NoError(t, err)
	before, _ := uc.GetTask(ctx, owner, p.ID)

	_, err = uc.UpdateSubtaskOrder(ctx, owner, p.ID, "not-linked", 0)
	assert.ErrorIs(t, err, domain.ErrSubtaskNotLinked)

	_, err = uc.UpdateSubtaskOrder(ctx, owner, p.ID, a.ID, -2)
	assert.ErrorIs(t, err, domain.ErrInvalidTask)

	_, err = uc.UpdateSubtaskOrder(ctx, stranger, p.ID, a.ID, 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	after, _ := uc.GetTask(ctx, owner, p.ID)
	assert.Equal(t, before.Subtasks, after.Subtasks)
}
