package domain

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTask() *Task {
	return &Task{
		UserID:                "user-1",
		Title:                 "Write report",
		ValueZoneID:           "zone-1",
		Brainpower:            BrainpowerMedium,
		Priority:              PriorityAuto,
		Status:                TaskStatusPending,
		EffortEstimateMinutes: 30,
	}
}

func TestTask_MaxSubtaskOrder(t *testing.T) {
	task := validTask()
	assert.Equal(t, -1, task.MaxSubtaskOrder())

	task.Subtasks = SubtaskList{{Order: 3, SubtaskID: "a"}, {Order: 7, SubtaskID: "b"}, {Order: 1, SubtaskID: "c"}}
	assert.Equal(t, 7, task.MaxSubtaskOrder())
	assert.True(t, task.HasSubtask("b"))
	assert.False(t, task.HasSubtask("z"))
}

func TestTask_SubtaskIDsSkipsDuplicatesAndSelf(t *testing.T) {
	task := validTask()
	task.ID = "parent"
	task.Subtasks = SubtaskList{
		{Order: 0, SubtaskID: "a"},
		{Order: 1, SubtaskID: "parent"},
		{Order: 2, SubtaskID: "a"},
		{Order: 3, SubtaskID: "b"},
	}
	assert.Equal(t, []string{"a", "b"}, task.SubtaskIDs())
}

func TestSortByLinkOrder(t *testing.T) {
	parent := &Task{ID: "p", Subtasks: SubtaskList{
		{Order: 5, SubtaskID: "x"},
		{Order: 1, SubtaskID: "y"},
		{Order: 5, SubtaskID: "a"},
	}}
	children := []*Task{{ID: "x"}, {ID: "y"}, {ID: "a"}}

	SortByLinkOrder(parent, children)

	ids := []string{children[0].ID, children[1].ID, children[2].ID}
	assert.Equal(t, []string{"y", "a", "x"}, ids, "ties are broken by id")
}

func TestTask_CloneIsDeep(t *testing.T) {
	start := time.Now()
	task := validTask()
	task.ScheduledStart = &start
	task.Tags = StringList{"one"}
	task.Metadata = Metadata{"k": "v"}
	task.Subtasks = SubtaskList{{Order: 0, SubtaskID: "a"}}

	c := task.Clone()
	c.Tags[0] = "changed"
	c.Metadata["k"] = "changed"
	c.Subtasks[0].Order = 9
	*c.ScheduledStart = start.Add(time.Hour)

	assert.Equal(t, "one", task.Tags[0])
	assert.Equal(t, "v", task.Metadata["k"])
	assert.Equal(t, 0, task.Subtasks[0].Order)
	assert.True(t, task.ScheduledStart.Equal(start))
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	task := validTask()
	assert.False(t, task.IsOverdue(now), "no deadline")

	task.Deadline = &future
	assert.False(t, task.IsOverdue(now))

	task.Deadline = &past
	assert.True(t, task.IsOverdue(now))

	task.Status = TaskStatusCompleted
	assert.False(t, task.IsOverdue(now))
}

func TestTask_Validate(t *testing.T) {
	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	before := start.Add(-time.Hour)

	tests := []struct {
		name    string
		mutate  func(*Task)
		wantErr string
	}{
		{name: "valid", mutate: func(*Task) {}},
		{name: "blank title", mutate: func(t *Task) { t.Title = "   " }, wantErr: "title is required"},
		{name: "long title", mutate: func(t *Task) { t.Title = strings.Repeat("a", 201) }, wantErr: "title cannot exceed"},
		{name: "missing zone", mutate: func(t *Task) { t.ValueZoneID = "" }, wantErr: "valueZoneId is required"},
		{name: "bad brainpower", mutate: func(t *Task) { t.Brainpower = "EXTREME" }, wantErr: "brainpower"},
		{name: "bad status", mutate: func(t *Task) { t.Status = "SKIPPED" }, wantErr: "status"},
		{name: "effort too low", mutate: func(t *Task) { t.EffortEstimateMinutes = 0 }, wantErr: "effortEstimateMinutes"},
		{name: "effort too high", mutate: func(t *Task) { t.EffortEstimateMinutes = 1441 }, wantErr: "effortEstimateMinutes"},
		{name: "too many tags", mutate: func(t *Task) { t.Tags = make(StringList, 11) }, wantErr: "maximum 10 tags"},
		{name: "long tag", mutate: func(t *Task) { t.Tags = StringList{strings.Repeat("x", 51)} }, wantErr: "tags must be"},
		{name: "multibyte title at limit", mutate: func(t *Task) { t.Title = strings.Repeat("日", 200) }},
		{name: "multibyte title over limit", mutate: func(t *Task) { t.Title = strings.Repeat("日", 201) }, wantErr: "title cannot exceed"},
		{name: "multibyte description at limit", mutate: func(t *Task) { t.Description = strings.Repeat("ü", 1000) }},
		{name: "accented tag at limit", mutate: func(t *Task) { t.Tags = StringList{strings.Repeat("é", 50)} }},
		{name: "accented tag over limit", mutate: func(t *Task) { t.Tags = StringList{strings.Repeat("é", 51)} }, wantErr: "tags must be"},
		{name: "duplicate dependency", mutate: func(t *Task) { t.DependencyIDs = StringList{"a", "a"} }, wantErr: "duplicate"},
		{name: "recurring without pattern", mutate: func(t *Task) { t.IsRecurring = true }, wantErr: "recurrencePattern"},
		{name: "time fixed without window", mutate: func(t *Task) { t.TimeFixed = true; t.ScheduledStart = &start }, wantErr: "timeFixed"},
		{name: "end before start", mutate: func(t *Task) { t.ScheduledStart = &start; t.ScheduledEnd = &before }, wantErr: "scheduledEnd must be after"},
		{name: "deadline before end", mutate: func(t *Task) { t.ScheduledStart = &start; t.ScheduledEnd = &end; t.Deadline = &start }, wantErr: "deadline must be after"},
		{name: "time fixed with window", mutate: func(t *Task) { t.TimeFixed = true; t.ScheduledStart = &start; t.ScheduledEnd = &end }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(task)
			err := task.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTask))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTaskFilter_Matches(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	task := validTask()
	task.ScheduledStart = &day
	task.Deadline = &day

	from := day.Add(-24 * time.Hour)
	until := day.Add(24 * time.Hour)
	early := day.Add(-48 * time.Hour)

	assert.True(t, TaskFilter{UserID: "user-1"}.Matches(task))
	assert.False(t, TaskFilter{UserID: "user-2"}.Matches(task))
	assert.True(t, TaskFilter{UserID: "user-1", ValueZoneID: "zone-1", Status: TaskStatusPending}.Matches(task))
	assert.False(t, TaskFilter{Status: TaskStatusCompleted}.Matches(task))
	assert.True(t, TaskFilter{ScheduledFrom: &from, ScheduledUntil: &until}.Matches(task))
	assert.False(t, TaskFilter{ScheduledUntil: &early}.Matches(task))
	assert.True(t, TaskFilter{DeadlineBefore: &until}.Matches(task))
	assert.False(t, TaskFilter{DeadlineBefore: &early}.Matches(task))
}

func TestTaskPatch_Apply(t *testing.T) {
	task := validTask()
	title := "Renamed"
	status := TaskStatusInProgress
	tags := []string{"a", "b"}

	patch := TaskPatch{Title: &title, Status: &status, Tags: &tags}
	assert.False(t, patch.IsEmpty())
	assert.True(t, TaskPatch{}.IsEmpty())

	patch.Apply(task)
	assert.Equal(t, "Renamed", task.Title)
	assert.Equal(t, TaskStatusInProgress, task.Status)
	assert.Equal(t, StringList{"a", "b"}, task.Tags)
	assert.Equal(t, "user-1", task.UserID)
}

func TestTask_Normalize(t *testing.T) {
	task := validTask()
	task.Title = "  Write report\t"
	task.Description = " details "
	task.Tags = StringList{" work", "q1 "}

	task.Normalize()
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "details", task.Description)
	assert.Equal(t, StringList{"work", "q1"}, task.Tags)
}

func TestTaskPatch_Normalize(t *testing.T) {
	title := " Renamed "
	tags := []string{" a ", "b"}
	patch := TaskPatch{Title: &title, Tags: &tags}

	normalized := patch.Normalize()
	assert.Equal(t, "Renamed", *normalized.Title)
	assert.Equal(t, []string{"a", "b"}, *normalized.Tags)
	assert.Nil(t, normalized.Description)
	assert.Equal(t, " Renamed ", title, "caller's values are left alone")
	assert.Equal(t, []string{" a ", "b"}, tags)
}

func TestSubtaskList_ValueScan(t *testing.T) {
	list := SubtaskList{{Order: 2, SubtaskID: "abc"}}
	v, err := list.Value()
	require.NoError(t, err)

	var scanned SubtaskList
	require.NoError(t, scanned.Scan(v))
	assert.Equal(t, list, scanned)

	var empty SubtaskList
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}
