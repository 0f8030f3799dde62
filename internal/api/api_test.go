package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

var fixedNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	s, err := store.NewMemory(
		store.WithClock(func() time.Time { return fixedNow }),
		store.WithLocation(time.UTC),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	a := New(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv, s
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+path, rdr)
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestTaskCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/tasks",
		`{"title":"Revise Chapter 5","subject":"Physics","priority":"critical","estimatedDuration":120}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
	created := decode[study.Task](t, body)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, study.StatusPending, created.Status)
	assert.Equal(t, study.PriorityCritical, created.Priority)

	resp, body = do(t, srv, http.MethodGet, "/api/tasks/"+created.ID, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Revise Chapter 5", decode[study.Task](t, body).Title)

	resp, body = do(t, srv, http.MethodPatch, "/api/tasks/"+created.ID, `{"status":"completed","actualDuration":90}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	updated := decode[study.Task](t, body)
	require.NotNil(t, updated.CompletedAt)
	assert.True(t, updated.CompletedAt.Equal(fixedNow))
	assert.Equal(t, 90, *updated.ActualDuration)

	resp, body = do(t, srv, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]study.Task](t, body), 1)

	resp, _ = do(t, srv, http.MethodDelete, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/tasks/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Task not found", decode[APIError](t, body).Error)
}

func TestListTasksEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, srv, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestListTasksFiltersAndSubtasks(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()
	math := "Math"
	parent, err := s.CreateTask(ctx, store.TaskInput{Title: "Calculus", Subject: &math})
	require.NoError(t, err)
	_, err = s.CreateTask(ctx, store.TaskInput{Title: "Integrals", ParentTaskID: &parent.ID, Status: study.StatusInProgress})
	require.NoError(t, err)

	_, body := do(t, srv, http.MethodGet, "/api/tasks?status=in_progress", "")
	tasks := decode[[]study.Task](t, body)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Integrals", tasks[0].Title)

	_, body = do(t, srv, http.MethodGet, "/api/tasks?subject=Math", "")
	assert.Len(t, decode[[]study.Task](t, body), 1)

	_, body = do(t, srv, http.MethodGet, "/api/tasks?topLevel=true", "")
	assert.Len(t, decode[[]study.Task](t, body), 1)

	_, body = do(t, srv, http.MethodGet, "/api/tasks?withSubtasks=true", "")
	tree := decode[[]study.TaskWithSubtasks](t, body)
	require.Len(t, tree, 1)
	assert.Len(t, tree[0].Subtasks, 1)

	resp, body := do(t, srv, http.MethodGet, "/api/tasks?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid task filter", decode[APIError](t, body).Error)
}

func TestCreateTaskValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/tasks", `{"title":"","priority":"urgent"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	apiErr := decode[APIError](t, body)
	assert.Equal(t, "Invalid task data", apiErr.Error)
	fields := make([]string, 0, len(apiErr.Details))
	for _, d := range apiErr.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"title", "priority"}, fields)
}

func TestCreateTaskRejectsBadBody(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed", body: `{"title":`},
		{name: "unknown field", body: `{"title":"x","owner":"me"}`},
		{name: "wrong type", body: `{"title":"x","estimatedDuration":"long"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, srv, http.MethodPost, "/api/tasks", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			apiErr := decode[APIError](t, body)
			assert.Equal(t, "Invalid task data", apiErr.Error)
			require.Len(t, apiErr.Details, 1)
			assert.Equal(t, "body", apiErr.Details[0].Field)
		})
	}
}

func TestCreateTaskBodyTooLarge(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	defer s.Close()

	a := New(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	big := `{"title":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(big)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateTaskNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, srv, http.MethodPatch, "/api/tasks/missing", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Task not found", decode[APIError](t, body).Error)
}

func TestUpdateTaskClearsNullableField(t *testing.T) {
	srv, s := newTestServer(t)
	subject := "History"
	task, err := s.CreateTask(context.Background(), store.TaskInput{Title: "WWII", Subject: &subject})
	require.NoError(t, err)

	resp, body := do(t, srv, http.MethodPatch, "/api/tasks/"+task.ID, `{"subject":null}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Nil(t, decode[study.Task](t, body).Subject)
}

func TestUpdateTaskRejectsCompletedAt(t *testing.T) {
	srv, s := newTestServer(t)
	task, err := s.CreateTask(context.Background(), store.TaskInput{Title: "x"})
	require.NoError(t, err)

	resp, _ := do(t, srv, http.MethodPatch, "/api/tasks/"+task.ID, `{"completedAt":"2025-01-01T00:00:00Z"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDeleteTaskNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := do(t, srv, http.MethodDelete, "/api/tasks/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGoalCRUD(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/goals",
		`{"title":"Study 2 hours daily","type":"daily","targetDate":"2025-03-10T00:00:00Z","progress":50}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	goal := decode[study.Goal](t, body)
	assert.Equal(t, study.GoalActive, goal.Status)
	assert.Equal(t, []string{}, goal.RelatedTaskIDs)

	resp, body = do(t, srv, http.MethodPatch, "/api/goals/"+goal.ID, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	goal = decode[study.Goal](t, body)
	assert.Equal(t, 100, goal.Progress)
	assert.NotNil(t, goal.CompletedAt)

	_, body = do(t, srv, http.MethodGet, "/api/goals?status=completed", "")
	assert.Len(t, decode[[]study.Goal](t, body), 1)

	resp, _ = do(t, srv, http.MethodGet, "/api/goals?status=paused", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/api/goals/"+goal.ID, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/goals/"+goal.ID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Goal not found", decode[APIError](t, body).Error)
}

func TestCreateGoalValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, body := do(t, srv, http.MethodPost, "/api/goals",
		`{"title":"x","type":"yearly","targetDate":"2025-03-10T00:00:00Z","progress":101}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	apiErr := decode[APIError](t, body)
	assert.Equal(t, "Invalid goal data", apiErr.Error)
	assert.Len(t, apiErr.Details, 2)
}

func TestPomodoroSessions(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodPost, "/api/pomodoro-sessions",
		`{"focusDuration":25,"breakDuration":5,"wasCompleted":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	session := decode[study.PomodoroSession](t, body)
	require.NotNil(t, session.CompletedAt)

	resp, body = do(t, srv, http.MethodPost, "/api/pomodoro-sessions",
		`{"focusDuration":25,"breakDuration":5,"wasCompleted":false,"completedAt":"2025-03-10T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Nil(t, decode[study.PomodoroSession](t, body).CompletedAt)

	resp, body = do(t, srv, http.MethodPost, "/api/pomodoro-sessions", `{"focusDuration":0}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid session data", decode[APIError](t, body).Error)

	_, body = do(t, srv, http.MethodGet, "/api/pomodoro-sessions", "")
	assert.Len(t, decode[[]study.PomodoroSession](t, body), 2)

	_, body = do(t, srv, http.MethodGet, "/api/streak", "")
	streak := decode[study.Streak](t, body)
	assert.Equal(t, 1, streak.CurrentStreak)
}

func TestSettings(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, srv, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 25, decode[study.Settings](t, body).PomodoroFocusDuration)

	resp, body = do(t, srv, http.MethodPatch, "/api/settings", `{"pomodoroFocusDuration":45,"theme":"light"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	settings := decode[study.Settings](t, body)
	assert.Equal(t, 45, settings.PomodoroFocusDuration)
	assert.Equal(t, "light", settings.Theme)

	resp, body = do(t, srv, http.MethodPatch, "/api/settings", `{"currentStreak":99}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid settings data", decode[APIError](t, body).Error)

	resp, _ = do(t, srv, http.MethodPatch, "/api/settings", `{"theme":"neon"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv, s := newTestServer(t)
	ctx := context.Background()
	chem := "Chemistry"
	mins := 75
	_, err := s.CreateTask(ctx, store.TaskInput{Title: "Lab", Subject: &chem, Status: study.StatusCompleted, ActualDuration: &mins})
	require.NoError(t, err)
	_, err = s.CreatePomodoroSession(ctx, store.SessionInput{FocusDuration: 25, WasCompleted: true})
	require.NoError(t, err)

	resp, body := do(t, srv, http.MethodGet, "/api/analytics/summary", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	summary := decode[study.Summary](t, body)
	assert.Equal(t, 25, summary.TodayStudyTime)
	assert.Equal(t, 1, summary.TasksCompletedToday)
	assert.Equal(t, 100, summary.CompletionRate)
	assert.Equal(t, []study.SubjectMinutes{{Subject: "Chemistry", Minutes: 75}}, summary.SubjectDistribution)

	resp, body = do(t, srv, http.MethodGet, "/api/analytics/daily", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	daily := decode[[]study.DailyStats](t, body)
	require.Len(t, daily, 1)
	assert.Equal(t, "2025-03-10", daily[0].Date)
	assert.Equal(t, 100, daily[0].TotalMinutesStudied)
}

func TestDailyEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t)
	_, body := do(t, srv, http.MethodGet, "/api/analytics/daily", "")
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, _ := do(t, srv, http.MethodPut, "/api/tasks", `{}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// failingStore fails every analytics call.
type failingStore struct{ Store }

func (failingStore) AnalyticsSummary(context.Context) (study.Summary, error) {
	return study.Summary{}, errors.New("disk on fire")
}

func (failingStore) DailyStats(context.Context) ([]study.DailyStats, error) {
	panic("boom")
}

func TestInternalErrorsAreLoggedNotLeaked(t *testing.T) {
	var logs bytes.Buffer
	a := New(failingStore{}, slog.New(slog.NewTextHandler(&logs, nil)))
	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	resp, body := do(t, srv, http.MethodGet, "/api/analytics/summary", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to fetch analytics summary", decode[APIError](t, body).Error)
	assert.NotContains(t, string(body), "disk on fire")
	assert.Contains(t, logs.String(), "disk on fire")

	resp, _ = do(t, srv, http.MethodGet, "/api/analytics/daily", "")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, logs.String(), "handler panic")
}

func TestRequestLogging(t *testing.T) {
	var logs bytes.Buffer
	s, err := store.NewMemory()
	require.NoError(t, err)
	defer s.Close()

	a := New(s, slog.New(slog.NewTextHandler(&logs, nil)))
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, logs.String(), "method=GET")
	assert.Contains(t, logs.String(), "path=/api/tasks/nope")
	assert.Contains(t, logs.String(), "status=404")
}

func TestServeListenerShutsDown(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	defer s.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	a := New(s, slog.New(slog.NewTextHandler(io.Discard, nil)))
	done := make(chan error, 1)
	go func() { done <- ServeListener(ctx, ln, a) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
