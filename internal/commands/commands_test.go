package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/studyr/internal/study"
)

var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	dir    string
	dbPath string
	now    time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Chdir(dir)
	return &harness{t: t, dir: dir, dbPath: filepath.Join(dir, "studyr.db"), now: testNow}
}

// run executes one studyr invocation against the harness database.
func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	a := newApp("1.2.3")
	a.now = func() time.Time { return h.now }
	defer a.close()

	var out, errOut bytes.Buffer
	root := newRootCommand(a)
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--db", h.dbPath, "--timezone", "UTC"}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "studyr %v", args)
	return out
}

func (h *harness) tasks() []study.Task {
	h.t.Helper()
	var tasks []study.Task
	require.NoError(h.t, json.Unmarshal([]byte(h.mustRun("task", "list", "--all", "--json")), &tasks))
	return tasks
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("version")
	assert.Equal(t, "studyr 1.2.3\n", out)
}

func TestTaskLifecycle(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("task", "add", "Read", "chapter", "4", "--subject", "Biology", "--estimate", "45", "--deadline", "2025-03-12")
	assert.Contains(t, out, "Read chapter 4")

	tasks := h.tasks()
	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, study.StatusPending, task.Status)
	assert.Equal(t, study.PriorityImportant, task.Priority)
	require.NotNil(t, task.Deadline)
	assert.Equal(t, "2025-03-12", study.DateKey(*task.Deadline, time.UTC))

	h.mustRun("task", "start", task.ID[:6])
	assert.Equal(t, study.StatusInProgress, h.tasks()[0].Status)

	h.mustRun("task", "done", task.ID, "--minutes", "40")
	task = h.tasks()[0]
	assert.True(t, task.Completed())
	require.NotNil(t, task.ActualDuration)
	assert.Equal(t, 40, *task.ActualDuration)
	require.NotNil(t, task.CompletedAt)

	var streak study.Streak
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("streak", "--json")), &streak))
	assert.Equal(t, 1, streak.CurrentStreak)
}

func TestTaskSubtasksHiddenByDefault(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Parent")
	parent := h.tasks()[0]
	h.mustRun("task", "add", "Child", "--parent", parent.ID[:8])

	out := h.mustRun("task", "list")
	assert.Contains(t, out, "Parent")
	assert.NotContains(t, out, "Child")

	out = h.mustRun("task", "list", "--all")
	assert.Contains(t, out, "Child")

	h.mustRun("task", "rm", parent.ID)
	tasks := h.tasks()
	require.Len(t, tasks, 1)
	assert.Nil(t, tasks[0].ParentTaskID)
}

func TestTaskErrors(t *testing.T) {
	h := newHarness(t)

	_, err := h.run("task", "done", "nope")
	assert.ErrorContains(t, err, "not found")

	_, err = h.run("task", "add", "Bad", "--priority", "urgent")
	assert.ErrorContains(t, err, "priority")

	_, err = h.run("task", "add", "Bad", "--deadline", "tomorrow")
	assert.ErrorContains(t, err, "--deadline")

	_, err = h.run("task", "list", "--status", "done")
	assert.ErrorContains(t, err, "--status")
}

func TestFocusSessions(t *testing.T) {
	h := newHarness(t)
	h.mustRun("task", "add", "Essay", "--subject", "English")
	task := h.tasks()[0]

	out := h.mustRun("focus", "--task", task.ID[:8])
	assert.Contains(t, out, "Streak: 1 days")

	out = h.mustRun("focus", "--minutes", "10", "--abandoned")
	assert.Contains(t, out, "abandoned")

	var sum study.Summary
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "--json")), &sum))
	assert.Equal(t, 25, sum.TodayStudyTime)
	assert.Equal(t, 50, sum.FocusEfficiency)
	assert.Empty(t, sum.SubjectDistribution, "open tasks carry no subject time")

	h.mustRun("task", "done", task.ID, "-m", "30")
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("stats", "--json")), &sum))
	assert.Equal(t, []study.SubjectMinutes{{Subject: "English", Minutes: 30}}, sum.SubjectDistribution)
	assert.Equal(t, 100, sum.CompletionRate)
}

func TestStreakAcrossDays(t *testing.T) {
	h := newHarness(t)
	h.mustRun("focus")
	h.now = h.now.Add(24 * time.Hour)
	h.mustRun("focus")

	var streak study.Streak
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("streak", "--json")), &streak))
	assert.Equal(t, 2, streak.CurrentStreak)
	assert.Equal(t, 2, streak.LongestStreak)

	h.now = h.now.Add(72 * time.Hour)
	out := h.mustRun("streak")
	assert.Contains(t, out, "start a new streak")
}

func TestDailyAndStatsOutput(t *testing.T) {
	h := newHarness(t)

	out := h.mustRun("daily")
	assert.Contains(t, out, "No study activity")

	h.mustRun("seed")
	out = h.mustRun("daily")
	assert.Contains(t, out, "2025-03-10")

	var days []study.DailyStats
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("daily", "--json", "--days", "1")), &days))
	require.Len(t, days, 1)
	assert.Equal(t, "2025-03-10", days[0].Date)

	out = h.mustRun("stats")
	assert.Contains(t, out, "Study summary")
	assert.Contains(t, out, "Chemistry")
}

func TestExport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("seed")

	out := h.mustRun("export", "--format", "yaml")
	assert.Contains(t, out, "studyr-export-2025-03-10.yaml")
	_, err := os.Stat(filepath.Join(h.dir, "studyr-export-2025-03-10.yaml"))
	require.NoError(t, err)

	path := filepath.Join(h.dir, "out.json")
	h.mustRun("export", "-f", "json", "-o", path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc["tasks"], 4)

	_, err = h.run("export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestConfigFileSetsDatabase(t *testing.T) {
	h := newHarness(t)
	dbPath := filepath.Join(h.dir, "from-config.db")
	cfg := filepath.Join(h.dir, "studyr.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("storage:\n  db_path: "+dbPath+"\n"), 0o644))

	a := newApp("dev")
	defer a.close()
	root := newRootCommand(a)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"seed"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestInvalidTimezone(t *testing.T) {
	h := newHarness(t)
	_, err := h.run("--timezone", "Mars/Olympus", "stats")
	assert.ErrorContains(t, err, "timezone")
}
