package api

import (
	"net/http"

	"github.com/sadopc/studyr/internal/store"
)

var (
	fetchSettingsFailure  = failure{internal: "Failed to fetch settings"}
	updateSettingsFailure = failure{invalid: "Invalid settings data", internal: "Failed to update settings"}
	fetchStreakFailure    = failure{internal: "Failed to fetch streak"}
)

func (a *API) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := a.store.GetSettings(r.Context())
	if err != nil {
		a.fail(w, r, err, fetchSettingsFailure)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

// HandleUpdateSettings patches preferences. Streak fields are rejected as
// unknown.
func (a *API) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var p store.SettingsPatch
	if err := readJSON(r, &p); err != nil {
		badBody(w, updateSettingsFailure.invalid, err)
		return
	}
	settings, err := a.store.UpdateSettings(r.Context(), p)
	if err != nil {
		a.fail(w, r, err, updateSettingsFailure)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

func (a *API) HandleStreak(w http.ResponseWriter, r *http.Request) {
	streak, err := a.store.GetStreak(r.Context())
	if err != nil {
		a.fail(w, r, err, fetchStreakFailure)
		return
	}
	WriteJSON(w, http.StatusOK, streak)
}
