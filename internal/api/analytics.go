package api

import "net/http"

var (
	summaryFailure = failure{internal: "Failed to fetch analytics summary"}
	dailyFailure   = failure{internal: "Failed to fetch daily stats"}
)

func (a *API) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.store.AnalyticsSummary(r.Context())
	if err != nil {
		a.fail(w, r, err, summaryFailure)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (a *API) HandleDaily(w http.ResponseWriter, r *http.Request) {
	stats, err := a.store.DailyStats(r.Context())
	if err != nil {
		a.fail(w, r, err, dailyFailure)
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(stats))
}
