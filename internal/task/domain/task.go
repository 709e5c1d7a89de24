package domain

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"time"
)

// Brainpower represents how much focus a task demands
type Brainpower string

const (
	BrainpowerHigh   Brainpower = "HIGH"
	BrainpowerMedium Brainpower = "MEDIUM"
	BrainpowerLow    Brainpower = "LOW"
)

// Priority represents task priority level
type Priority string

const (
	PriorityAuto   Priority = "AUTO"
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "PENDING"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusMissed     TaskStatus = "MISSED"
	TaskStatusClosed     TaskStatus = "CLOSED"
)

// Subtask links a parent task to another task record.
// The link carries an ordering key only; the child's lifetime is independent.
type Subtask struct {
	Order     int    `json:"order" bson:"order"`
	SubtaskID string `json:"subtaskId" bson:"subtaskId"`
}

// Task represents a schedulable unit of work owned by a single user
type Task struct {
	ID                    string      `json:"id" gorm:"primaryKey" bson:"_id"`
	UserID                string      `json:"userId" gorm:"index;not null" bson:"userId"`
	Title                 string      `json:"title" gorm:"not null" bson:"title"`
	Description           string      `json:"description,omitempty" bson:"description,omitempty"`
	ValueZoneID           string      `json:"valueZoneId" gorm:"index;not null" bson:"valueZoneId"`
	ScheduledStart        *time.Time  `json:"scheduledStart,omitempty" gorm:"index" bson:"scheduledStart,omitempty"`
	ScheduledEnd          *time.Time  `json:"scheduledEnd,omitempty" bson:"scheduledEnd,omitempty"`
	Deadline              *time.Time  `json:"deadline,omitempty" gorm:"index" bson:"deadline,omitempty"`
	Brainpower            Brainpower  `json:"brainpower" gorm:"default:MEDIUM" bson:"brainpower"`
	TimeFixed             bool        `json:"timeFixed" bson:"timeFixed"`
	MultitaskAllowed      bool        `json:"multitaskAllowed" bson:"multitaskAllowed"`
	EffortEstimateMinutes int         `json:"effortEstimateMinutes" bson:"effortEstimateMinutes"`
	Priority              Priority    `json:"priority" gorm:"default:AUTO" bson:"priority"`
	Status                TaskStatus  `json:"status" gorm:"index;default:PENDING" bson:"status"`
	Tags                  StringList  `json:"tags" gorm:"type:jsonb" bson:"tags"`
	IsRecurring           bool        `json:"isRecurring" bson:"isRecurring"`
	RecurrencePattern     string      `json:"recurrencePattern,omitempty" bson:"recurrencePattern,omitempty"`
	DependencyIDs         StringList  `json:"dependencyIds" gorm:"type:jsonb" bson:"dependencyIds"`
	Metadata              Metadata    `json:"metadata" gorm:"type:jsonb" bson:"metadata"`
	Subtasks              SubtaskList `json:"subtasks" gorm:"type:jsonb" bson:"subtasks"`
	CreatedAt             time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// HasSubtask reports whether subtaskID is linked to this task
func (t *Task) HasSubtask(subtaskID string) bool {
	for _, st := range t.Subtasks {
		if st.SubtaskID == subtaskID {
			return true
		}
	}
	return false
}

// MaxSubtaskOrder returns the highest order key in the subtask list, or -1 if empty
func (t *Task) MaxSubtaskOrder() int {
	maxOrder := -1
	for _, st := range t.Subtasks {
		if st.Order > maxOrder {
			maxOrder = st.Order
		}
	}
	return maxOrder
}

// SubtaskIDs returns the distinct linked ids in list order
func (t *Task) SubtaskIDs() []string {
	seen := make(map[string]bool, len(t.Subtasks))
	ids := make([]string, 0, len(t.Subtasks))
	for _, st := range t.Subtasks {
		if seen[st.SubtaskID] || st.SubtaskID == t.ID {
			continue
		}
		seen[st.SubtaskID] = true
		ids = append(ids, st.SubtaskID)
	}
	return ids
}

// IsOverdue reports whether the deadline has passed while the task is still open
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Deadline == nil || !t.Deadline.Before(now) {
		return false
	}
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}

// Clone returns a deep copy so callers never share slices or maps with a store
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	c.ScheduledStart = cloneTime(t.ScheduledStart)
	c.ScheduledEnd = cloneTime(t.ScheduledEnd)
	c.Deadline = cloneTime(t.Deadline)
	if t.Tags != nil {
		c.Tags = append(StringList{}, t.Tags...)
	}
	if t.DependencyIDs != nil {
		c.DependencyIDs = append(StringList{}, t.DependencyIDs...)
	}
	if t.Subtasks != nil {
		c.Subtasks = append(SubtaskList{}, t.Subtasks...)
	}
	if t.Metadata != nil {
		c.Metadata = make(Metadata, len(t.Metadata))
		for k, v := range t.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// SortByLinkOrder orders resolved children by the parent's order keys.
// Colliding order keys fall back to the child id so the result is deterministic.
func SortByLinkOrder(parent *Task, children []*Task) {
	orders := make(map[string]int, len(parent.Subtasks))
	for _, st := range parent.Subtasks {
		if _, ok := orders[st.SubtaskID]; !ok {
			orders[st.SubtaskID] = st.Order
		}
	}
	sort.SliceStable(children, func(i, j int) bool {
		oi, oj := orders[children[i].ID], orders[children[j].ID]
		if oi != oj {
			return oi < oj
		}
		return children[i].ID < children[j].ID
	})
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// StringList is a JSON-encoded string array column
type StringList []string

// Value implements driver.Valuer
func (a StringList) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

// Scan implements sql.Scanner
func (a *StringList) Scan(value interface{}) error {
	*a = StringList{}
	return scanJSON(value, a)
}

// SubtaskList is the embedded, ordered list of subtask links
type SubtaskList []Subtask

// Value implements driver.Valuer
func (l SubtaskList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements sql.Scanner
func (l *SubtaskList) Scan(value interface{}) error {
	*l = SubtaskList{}
	return scanJSON(value, l)
}

// Metadata is an open key-value bag
type Metadata map[string]interface{}

// Value implements driver.Valuer
func (m Metadata) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	return string(b), err
}

// Scan implements sql.Scanner
func (m *Metadata) Scan(value interface{}) error {
	*m = Metadata{}
	return scanJSON(value, m)
}

func scanJSON(value interface{}, dest interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dest)
}
