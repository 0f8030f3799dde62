// Package api serves the study data over a JSON HTTP interface.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

// Store is the persistence the handlers need. *store.Store satisfies it.
type Store interface {
	ListTasks(ctx context.Context, f store.TaskFilter) ([]study.Task, error)
	ListTasksWithSubtasks(ctx context.Context) ([]study.TaskWithSubtasks, error)
	GetTask(ctx context.Context, id string) (*study.Task, error)
	CreateTask(ctx context.Context, in store.TaskInput) (*study.Task, error)
	UpdateTask(ctx context.Context, id string, p store.TaskPatch) (*study.Task, error)
	DeleteTask(ctx context.Context, id string) error

	ListGoals(ctx context.Context, status study.GoalStatus) ([]study.Goal, error)
	GetGoal(ctx context.Context, id string) (*study.Goal, error)
	CreateGoal(ctx context.Context, in store.GoalInput) (*study.Goal, error)
	UpdateGoal(ctx context.Context, id string, p store.GoalPatch) (*study.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	ListPomodoroSessions(ctx context.Context) ([]study.PomodoroSession, error)
	CreatePomodoroSession(ctx context.Context, in store.SessionInput) (*study.PomodoroSession, error)

	GetSettings(ctx context.Context) (*study.Settings, error)
	UpdateSettings(ctx context.Context, p store.SettingsPatch) (*study.Settings, error)
	GetStreak(ctx context.Context) (study.Streak, error)

	AnalyticsSummary(ctx context.Context) (study.Summary, error)
	DailyStats(ctx context.Context) ([]study.DailyStats, error)
}

type API struct {
	store Store
	log   *slog.Logger
}

func New(s Store, log *slog.Logger) *API {
	if log == nil {
		log = slog.Default()
	}
	return &API{store: s, log: log}
}

// Handler returns the routed API wrapped in request logging and panic
// recovery.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.registerRoutes(mux)
	return a.recoverPanics(a.logRequests(mux))
}

func (a *API) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tasks", a.HandleListTasks)
	mux.HandleFunc("POST /api/tasks", a.HandleCreateTask)
	mux.HandleFunc("GET /api/tasks/{id}", a.HandleGetTask)
	mux.HandleFunc("PATCH /api/tasks/{id}", a.HandleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", a.HandleDeleteTask)

	mux.HandleFunc("GET /api/goals", a.HandleListGoals)
	mux.HandleFunc("POST /api/goals", a.HandleCreateGoal)
	mux.HandleFunc("GET /api/goals/{id}", a.HandleGetGoal)
	mux.HandleFunc("PATCH /api/goals/{id}", a.HandleUpdateGoal)
	mux.HandleFunc("DELETE /api/goals/{id}", a.HandleDeleteGoal)

	mux.HandleFunc("GET /api/pomodoro-sessions", a.HandleListSessions)
	mux.HandleFunc("POST /api/pomodoro-sessions", a.HandleCreateSession)

	mux.HandleFunc("GET /api/settings", a.HandleGetSettings)
	mux.HandleFunc("PATCH /api/settings", a.HandleUpdateSettings)
	mux.HandleFunc("GET /api/streak", a.HandleStreak)

	mux.HandleFunc("GET /api/analytics/summary", a.HandleSummary)
	mux.HandleFunc("GET /api/analytics/daily", a.HandleDaily)

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// failure holds the client-facing messages for one resource and action.
type failure struct {
	invalid  string // "Invalid task data"
	notFound string // "Task not found"
	internal string // "Failed to update task"
}

// fail maps a store error to a response: validation problems and bad bodies
// are 400, missing records 404, anything else 500.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error, f failure) {
	var verr *study.ValidationError
	switch {
	case errors.As(err, &verr) && f.invalid != "":
		WriteAPIError(w, http.StatusBadRequest, APIError{Error: f.invalid, Details: verr.Fields})
	case errors.Is(err, store.ErrNotFound) && f.notFound != "":
		WriteError(w, http.StatusNotFound, f.notFound)
	default:
		a.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusInternalServerError, f.internal)
	}
}

// badBody reports a body that could not be decoded.
func badBody(w http.ResponseWriter, msg string, err error) {
	WriteAPIError(w, http.StatusBadRequest, APIError{
		Error:   msg,
		Details: []study.FieldError{{Field: "body", Message: err.Error()}},
	})
}
