package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metricsHandler http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerPairingRoutes(mux, handler, verifier)
	registerSubstitutionRoutes(mux, handler, verifier)
	registerSeasonRoutes(mux, handler, verifier)
	registerRosterRoutes(mux, handler, verifier)
}

func registerPairingRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/pairings/{pairingID}", RequireAuth(verifier, http.HandlerFunc(handler.GetPairing)))
	mux.Handle("POST /v1/pairings/{pairingID}/schedule", RequireAuth(verifier, http.HandlerFunc(handler.UpdatePairingSchedule)))
	mux.Handle("POST /v1/pairings/{pairingID}/report", RequireAuth(verifier, http.HandlerFunc(handler.ReportResult)))
	mux.Handle("POST /v1/pairings/{pairingID}/confirm", RequireAuth(verifier, http.HandlerFunc(handler.ConfirmResult)))
	mux.Handle("POST /v1/pairings/{pairingID}/dispute", RequireAuth(verifier, http.HandlerFunc(handler.DisputeResult)))
	mux.Handle("POST /v1/pairings/{pairingID}/admin-resolve", RequireAuth(verifier, http.HandlerFunc(handler.AdminResolve)))
}

func registerSubstitutionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/pairings/{pairingID}/substitutions", RequireAuth(verifier, http.HandlerFunc(handler.RequestSubstitution)))
	mux.Handle("POST /v1/pairings/{pairingID}/substitutions/{requestID}/approve", RequireAuth(verifier, http.HandlerFunc(handler.ApproveSubstitution)))
	mux.Handle("POST /v1/pairings/{pairingID}/substitutions/{requestID}/reject", RequireAuth(verifier, http.HandlerFunc(handler.RejectSubstitution)))
	mux.Handle("GET /v1/seasons/{seasonID}/substitutions", RequireAuth(verifier, http.HandlerFunc(handler.ListSeasonSubstitutions)))
}

func registerSeasonRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/seasons/{seasonID}/schedule", RequireAuth(verifier, http.HandlerFunc(handler.GenerateSeasonSchedule)))
	mux.Handle("POST /v1/seasons/{seasonID}/weeks/{weekIndex}/generate", RequireAuth(verifier, http.HandlerFunc(handler.GenerateWeek)))
	mux.Handle("POST /v1/seasons/{seasonID}/weeks/{weekIndex}/open", RequireAuth(verifier, http.HandlerFunc(handler.OpenWeek)))
	mux.Handle("GET /v1/seasons/{seasonID}/weeks/current", RequireAuth(verifier, http.HandlerFunc(handler.GetCurrentWeek)))
	mux.Handle("GET /v1/seasons/{seasonID}/standings", RequireAuth(verifier, http.HandlerFunc(handler.GetStandings)))
	mux.Handle("POST /v1/weeks/{weekID}/finalize", RequireAuth(verifier, http.HandlerFunc(handler.FinalizeWeek)))
}

func registerRosterRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/teams/{teamID}/roster", RequireAuth(verifier, http.HandlerFunc(handler.SubmitRoster)))
	mux.Handle("POST /v1/teams/{teamID}/roster/approve", RequireAuth(verifier, http.HandlerFunc(handler.ApproveRoster)))
	mux.Handle("PUT /v1/leagues/{leagueID}/ratings/{userID}", RequireAuth(verifier, http.HandlerFunc(handler.SetRating)))
}
