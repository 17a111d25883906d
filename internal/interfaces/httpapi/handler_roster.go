package httpapi

import (
	"net/http"

	"github.com/riskibarqy/playhub-league/internal/usecase"
)

func (h *Handler) SubmitRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitRoster")
	defer span.End()

	teamID := r.PathValue("teamID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req submitRosterRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	in := make([]usecase.SlotInput, 0, len(req.Slots))
	for _, s := range req.Slots {
		in = append(in, usecase.SlotInput{SeedIndex: s.SeedIndex, UserID: s.UserID, Email: s.Email})
	}

	c, err := h.access.ForTeam(ctx, principal, teamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	slots, err := h.rosters.Submit(ctx, c, teamID, in)
	if err != nil {
		h.logger.WarnContext(ctx, "submit roster failed", "team_id", teamID, "user_id", c.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(slots))
}

func (h *Handler) ApproveRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveRoster")
	defer span.End()

	teamID := r.PathValue("teamID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	c, err := h.access.ForTeam(ctx, principal, teamID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	slots, err := h.rosters.Approve(ctx, c, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve roster failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rosterToDTO(slots))
}

func (h *Handler) SetRating(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetRating")
	defer span.End()

	leagueID := r.PathValue("leagueID")
	userID := r.PathValue("userID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req setRatingRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForLeague(ctx, principal, leagueID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	event, err := h.ratings.SetRating(ctx, c, leagueID, userID, *req.Hidden, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "set rating failed", "league_id", leagueID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, ratingEventToDTO(event))
}
