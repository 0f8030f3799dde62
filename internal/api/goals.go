package api

import (
	"net/http"

	"github.com/sadopc/studyr/internal/store"
	"github.com/sadopc/studyr/internal/study"
)

var (
	fetchGoalsFailure = failure{invalid: "Invalid goal filter", internal: "Failed to fetch goals"}
	fetchGoalFailure  = failure{notFound: "Goal not found", internal: "Failed to fetch goal"}
	createGoalFailure = failure{invalid: "Invalid goal data", internal: "Failed to create goal"}
	updateGoalFailure = failure{invalid: "Invalid goal data", notFound: "Goal not found", internal: "Failed to update goal"}
	deleteGoalFailure = failure{notFound: "Goal not found", internal: "Failed to delete goal"}
)

func (a *API) HandleListGoals(w http.ResponseWriter, r *http.Request) {
	status := study.GoalStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		v := &study.ValidationError{Kind: "goal"}
		v.Add("status", "must be one of active, completed, cancelled")
		a.fail(w, r, v, fetchGoalsFailure)
		return
	}
	goals, err := a.store.ListGoals(r.Context(), status)
	if err != nil {
		a.fail(w, r, err, fetchGoalsFailure)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(goals))
}

func (a *API) HandleGetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := a.store.GetGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err, fetchGoalFailure)
		return
	}
	WriteJSON(w, http.StatusOK, goal)
}

func (a *API) HandleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var in store.GoalInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, createGoalFailure.invalid, err)
		return
	}
	goal, err := a.store.CreateGoal(r.Context(), in)
	if err != nil {
		a.fail(w, r, err, createGoalFailure)
		return
	}
	WriteJSON(w, http.StatusCreated, goal)
}

func (a *API) HandleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var p store.GoalPatch
	if err := readJSON(r, &p); err != nil {
		badBody(w, updateGoalFailure.invalid, err)
		return
	}
	goal, err := a.store.UpdateGoal(r.Context(), r.PathValue("id"), p)
	if err != nil {
		a.fail(w, r, err, updateGoalFailure)
		return
	}
	WriteJSON(w, http.StatusOK, goal)
}

func (a *API) HandleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		a.fail(w, r, err, deleteGoalFailure)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
