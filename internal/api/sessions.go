package api

import (
	"net/http"

	"github.com/sadopc/studyr/internal/store"
)

var (
	fetchSessionsFailure = failure{internal: "Failed to fetch pomodoro sessions"}
	createSessionFailure = failure{invalid: "Invalid session data", internal: "Failed to create pomodoro session"}
)

func (a *API) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := a.store.ListPomodoroSessions(r.Context())
	if err != nil {
		a.fail(w, r, err, fetchSessionsFailure)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(sessions))
}

func (a *API) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	var in store.SessionInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, createSessionFailure.invalid, err)
		return
	}
	session, err := a.store.CreatePomodoroSession(r.Context(), in)
	if err != nil {
		a.fail(w, r, err, createSessionFailure)
		return
	}
	WriteJSON(w, http.StatusCreated, session)
}
