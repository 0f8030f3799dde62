package store

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/sadopc/studyr/internal/study"
)

type Setting struct {
	Key   string
	Value string
}

// Field is a patch value that tells an absent JSON key apart from an
// explicit null.
type Field[T any] struct {
	Set   bool
	Value *T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// Set returns a patch field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

// Null returns a patch field that clears the column.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

type TaskInput struct {
	Title             string           `json:"title"`
	Description       *string          `json:"description"`
	Status            study.TaskStatus `json:"status"`
	Priority          study.Priority   `json:"priority"`
	Subject           *string          `json:"subject"`
	Deadline          *time.Time       `json:"deadline"`
	EstimatedDuration *int             `json:"estimatedDuration"`
	ActualDuration    *int             `json:"actualDuration"`
	ParentTaskID      *string          `json:"parentTaskId"`
	Resources         []string         `json:"resources"`
	IsRecurring       bool             `json:"isRecurring"`
	RecurringSchedule *string          `json:"recurringSchedule"`
	CompletedAt       *time.Time       `json:"completedAt"`
}

// TaskPatch is a partial task update. completedAt is managed by the store.
type TaskPatch struct {
	Title             *string           `json:"title"`
	Description       Field[string]     `json:"description"`
	Status            *study.TaskStatus `json:"status"`
	Priority          *study.Priority   `json:"priority"`
	Subject           Field[string]     `json:"subject"`
	Deadline          Field[time.Time]  `json:"deadline"`
	EstimatedDuration Field[int]        `json:"estimatedDuration"`
	ActualDuration    Field[int]        `json:"actualDuration"`
	ParentTaskID      Field[string]     `json:"parentTaskId"`
	Resources         *[]string         `json:"resources"`
	IsRecurring       *bool             `json:"isRecurring"`
	RecurringSchedule Field[string]     `json:"recurringSchedule"`
}

// TaskFilter narrows ListTasks. Zero value lists every task.
type TaskFilter struct {
	Status       study.TaskStatus
	Subject      string
	ParentID     string
	TopLevelOnly bool
	Limit        int
}

type GoalInput struct {
	Title          string           `json:"title"`
	Description    *string          `json:"description"`
	Type           study.GoalType   `json:"type"`
	TargetDate     time.Time        `json:"targetDate"`
	Status         study.GoalStatus `json:"status"`
	Progress       int              `json:"progress"`
	RelatedTaskIDs []string         `json:"relatedTaskIds"`
}

type GoalPatch struct {
	Title          *string           `json:"title"`
	Description    Field[string]     `json:"description"`
	Type           *study.GoalType   `json:"type"`
	TargetDate     *time.Time        `json:"targetDate"`
	Status         *study.GoalStatus `json:"status"`
	Progress       *int              `json:"progress"`
	RelatedTaskIDs *[]string         `json:"relatedTaskIds"`
}

type SessionInput struct {
	TaskID        *string    `json:"taskId"`
	FocusDuration int        `json:"focusDuration"`
	BreakDuration int        `json:"breakDuration"`
	WasCompleted  bool       `json:"wasCompleted"`
	CompletedAt   *time.Time `json:"completedAt"`
}

// SettingsPatch updates user preferences. Streak fields are not patchable.
type SettingsPatch struct {
	PomodoroFocusDuration     *int    `json:"pomodoroFocusDuration"`
	PomodoroBreakDuration     *int    `json:"pomodoroBreakDuration"`
	PomodoroLongBreakDuration *int    `json:"pomodoroLongBreakDuration"`
	PomodoroCount             *int    `json:"pomodoroCount"`
	Theme                     *string `json:"theme"`
	NotificationsEnabled      *bool   `json:"notificationsEnabled"`
	SoundEnabled              *bool   `json:"soundEnabled"`
}

// Snapshot is a consistent read of everything the analytics engine needs.
type Snapshot struct {
	Tasks    []study.Task
	Sessions []study.PomodoroSession
	Streak   study.Streak
}
