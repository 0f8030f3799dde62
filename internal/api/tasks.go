package api

import (
	"net/http"
	"strconv"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

var (
	fetchTasksFailure = failure{invalid: "Invalid task filter", internal: "Failed to fetch tasks"}
	fetchTaskFailure  = failure{notFound: "Task not found", internal: "Failed to fetch task"}
	createTaskFailure = failure{invalid: "Invalid task data", internal: "Failed to create task"}
	updateTaskFailure = failure{invalid: "Invalid task data", notFound: "Task not found", internal: "Failed to update task"}
	deleteTaskFailure = failure{notFound: "Task not found", internal: "Failed to delete task"}
)

// HandleListTasks lists tasks. Query parameters status, subject, parentId and
// topLevel narrow the list; withSubtasks=true nests direct subtasks under
// each top-level task instead.
func (a *API) HandleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if ok, _ := strconv.ParseBool(q.Get("withSubtasks")); ok {
		tree, err := a.store.ListTasksWithSubtasks(r.Context())
		if err != nil {
			a.fail(w, r, err, fetchTasksFailure)
			return
		}
		WriteJSON(w, http.StatusOK, nonNil(tree))
		return
	}

	f := store.TaskFilter{
		Status:   study.TaskStatus(q.Get("status")),
		Subject:  q.Get("subject"),
		ParentID: q.Get("parentId"),
	}
	f.TopLevelOnly, _ = strconv.ParseBool(q.Get("topLevel"))
	if f.Status != "" && !f.Status.Valid() {
		v := &study.ValidationError{Kind: "task"}
		v.Add("status", "must be one of pending, in_progress, completed")
		a.fail(w, r, v, fetchTasksFailure)
		return
	}

	tasks, err := a.store.ListTasks(r.Context(), f)
	if err != nil {
		a.fail(w, r, err, fetchTasksFailure)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(tasks))
}

func (a *API) HandleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := a.store.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, fetchTaskFailure)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

func (a *API) HandleCreateTask(w http.ResponseWriter, r *http.Request) {
	var in store.TaskInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, createTaskFailure.invalid, err)
		return
	}
	task, err := a.store.CreateTask(r.Context(), in)
	if err != nil {
		a.fail(w, r, err, createTaskFailure)
		return
	}
	WriteJSON(w, http.StatusCreated, task)
}

func (a *API) HandleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var p store.TaskPatch
	if err := readJSON(r, &p); err != nil {
		badBody(w, updateTaskFailure.invalid, err)
		return
	}
	task, err := a.store.UpdateTask(r.Context(), r.PathValue("id"), p)
	if err != nil {
		a.fail(w, r, err, updateTaskFailure)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

func (a *API) HandleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteTask(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, deleteTaskFailure)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
