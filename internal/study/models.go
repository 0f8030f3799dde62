package study

import "time"

type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityCritical  Priority = "critical"
	PriorityImportant Priority = "important"
	PriorityOptional  Priority = "optional"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityImportant, PriorityOptional:
		return true
	}
	return false
}

type Task struct {
	ID                string     `json:"id"`
	Title             string     `json:"title"`
	Description       *string    `json:"description"`
	Status            TaskStatus `json:"status"`
	Priority          Priority   `json:"priority"`
	Subject           *string    `json:"subject"`
	Deadline          *time.Time `json:"deadline"`
	EstimatedDuration *int       `json:"estimatedDuration"` // minutes
	ActualDuration    *int       `json:"actualDuration"`    // minutes
	ParentTaskID      *string    `json:"parentTaskId"`
	Resources         []string   `json:"resources"`
	IsRecurring       bool       `json:"isRecurring"`
	RecurringSchedule *string    `json:"recurringSchedule"`
	CompletedAt       *time.Time `json:"completedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// SubjectName returns the subject label, or "" when the task has none.
func (t Task) SubjectName() string {
	if t.Subject == nil {
		return ""
	}
	return *t.Subject
}

type TaskWithSubtasks struct {
	Task
	Subtasks []Task `json:"subtasks,omitempty"`
}

type GoalType string

const (
	GoalDaily   GoalType = "daily"
	GoalWeekly  GoalType = "weekly"
	GoalMonthly GoalType = "monthly"
)

func (g GoalType) Valid() bool {
	switch g {
	case GoalDaily, GoalWeekly, GoalMonthly:
		return true
	}
	return false
}

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

func (g GoalStatus) Valid() bool {
	switch g {
	case GoalActive, GoalCompleted, GoalCancelled:
		return true
	}
	return false
}

type Goal struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    *string    `json:"description"`
	Type           GoalType   `json:"type"`
	TargetDate     time.Time  `json:"targetDate"`
	Status         GoalStatus `json:"status"`
	Progress       int        `json:"progress"` // 0-100
	RelatedTaskIDs []string   `json:"relatedTaskIds"`
	CompletedAt    *time.Time `json:"completedAt"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// PomodoroSession is one terminated focus interval, finished or abandoned.
type PomodoroSession struct {
	ID            string     `json:"id"`
	TaskID        *string    `json:"taskId"`
	FocusDuration int        `json:"focusDuration"` // minutes
	BreakDuration int        `json:"breakDuration"` // minutes
	WasCompleted  bool       `json:"wasCompleted"`
	CompletedAt   *time.Time `json:"completedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Streak is the consecutive-study-day counter owned by the settings store.
type Streak struct {
	CurrentStreak int        `json:"currentStreak"`
	LongestStreak int        `json:"longestStreak"`
	LastStudyDate *time.Time `json:"lastStudyDate"`
}

type Settings struct {
	PomodoroFocusDuration     int        `json:"pomodoroFocusDuration"`
	PomodoroBreakDuration     int        `json:"pomodoroBreakDuration"`
	PomodoroLongBreakDuration int        `json:"pomodoroLongBreakDuration"`
	PomodoroCount             int        `json:"pomodoroCount"`
	Theme                     string     `json:"theme"`
	NotificationsEnabled      bool       `json:"notificationsEnabled"`
	SoundEnabled              bool       `json:"soundEnabled"`
	CurrentStreak             int        `json:"currentStreak"`
	LongestStreak             int        `json:"longestStreak"`
	LastStudyDate             *time.Time `json:"lastStudyDate"`
	UpdatedAt                 time.Time  `json:"updatedAt"`
}

func (s Settings) Streak() Streak {
	return Streak{
		CurrentStreak: s.CurrentStreak,
		LongestStreak: s.LongestStreak,
		LastStudyDate: s.LastStudyDate,
	}
}

type DailyStats struct {
	Date                      string         `json:"date"`
	TotalMinutesStudied       int            `json:"totalMinutesStudied"`
	TasksCompleted            int            `json:"tasksCompleted"`
	PomodoroSessionsCompleted int            `json:"pomodoroSessionsCompleted"`
	SubjectBreakdown          map[string]int `json:"subjectBreakdown"`
}

type SubjectMinutes struct {
	Subject string `json:"subject"`
	Minutes int    `json:"minutes"`
}

// Summary is the AnalyticsSummary snapshot. All durations are minutes,
// rates are whole percentages.
type Summary struct {
	TotalStudyTime      int              `json:"totalStudyTime"`
	TodayStudyTime      int              `json:"todayStudyTime"`
	WeekStudyTime       int              `json:"weekStudyTime"`
	TasksCompletedToday int              `json:"tasksCompletedToday"`
	TasksCompletedWeek  int              `json:"tasksCompletedWeek"`
	CurrentStreak       int              `json:"currentStreak"`
	LongestStreak       int              `json:"longestStreak"`
	SubjectDistribution []SubjectMinutes `json:"subjectDistribution"`
	CompletionRate      int              `json:"completionRate"`
	FocusEfficiency     int              `json:"focusEfficiency"`
}
