package tui

import (
	"context"
	"time"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

// timerState tracks the current state of the timer.
type timerState int

const (
	timerStopped timerState = iota
	timerRunning
	timerPaused
)

// timerModel times study on a single task. Stopping it adds the elapsed
// whole minutes to the task's actual duration.
type timerModel struct {
	store *store.Store

	state     timerState
	startTime time.Time
	elapsed   time.Duration
	pausedAt  time.Time // when paused, to compute pause gap
	pauseGap  time.Duration

	task study.Task

	// Idle detection
	lastActivity time.Time
	idleTimeout  time.Duration
	isIdle       bool
}

func newTimerModel(s *store.Store) timerModel {
	return timerModel{
		store:        s,
		state:        timerStopped,
		lastActivity: time.Now(),
		idleTimeout:  5 * time.Minute,
	}
}

// start begins timing t. A pending task is moved to in progress.
func (t *timerModel) start(task study.Task) error {
	if task.Completed() {
		return errTaskCompleted
	}
	if task.Status == study.StatusPending {
		status := study.StatusInProgress
		updated, err := t.store.UpdateTask(context.Background(), task.ID, store.TaskPatch{Status: &status})
		if err != nil {
			return err
		}
		task = *updated
	}
	t.state = timerRunning
	t.startTime = time.Now()
	t.elapsed = 0
	t.pauseGap = 0
	t.task = task
	t.lastActivity = time.Now()
	t.isIdle = false
	return nil
}

// stop ends the session and returns the minutes credited to the task.
func (t *timerModel) stop() (int, error) {
	if t.state == timerStopped {
		return 0, nil
	}
	minutes := int(t.currentElapsed() / time.Minute)
	t.state = timerStopped
	t.elapsed = 0
	if minutes == 0 {
		return 0, nil
	}
	task, err := t.store.AddTaskDuration(context.Background(), t.task.ID, minutes)
	if err != nil {
		return 0, err
	}
	t.task = *task
	return minutes, nil
}

func (t *timerModel) pause() {
	if t.state != timerRunning {
		return
	}
	t.state = timerPaused
	t.pausedAt = time.Now()
}

func (t *timerModel) resume() {
	if t.state != timerPaused {
		return
	}
	t.pauseGap += time.Since(t.pausedAt)
	t.state = timerRunning
	t.isIdle = false
	t.lastActivity = time.Now()
}

func (t *timerModel) toggle() {
	switch t.state {
	case timerRunning:
		t.pause()
	case timerPaused:
		t.resume()
	}
}

func (t *timerModel) tick() {
	if t.state == timerRunning {
		t.elapsed = time.Since(t.startTime) - t.pauseGap

		if time.Since(t.lastActivity) > t.idleTimeout && !t.isIdle {
			t.isIdle = true
			t.pause()
		}
	}
}

func (t *timerModel) recordActivity() {
	t.lastActivity = time.Now()
	if t.isIdle && t.state == timerPaused {
		t.resume()
		t.isIdle = false
	}
}

func (t timerModel) running() bool {
	return t.state != timerStopped
}

func (t timerModel) paused() bool {
	return t.state == timerPaused
}

func (t timerModel) currentElapsed() time.Duration {
	if t.state == timerStopped {
		return 0
	}
	if t.state == timerPaused {
		return time.Since(t.startTime) - t.pauseGap - time.Since(t.pausedAt)
	}
	return time.Since(t.startTime) - t.pauseGap
}
