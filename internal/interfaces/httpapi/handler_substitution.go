package httpapi

import (
	"net/http"

	"github.com/riskibarqy/playhub-league/internal/usecase"
)

func (h *Handler) RequestSubstitution(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RequestSubstitution")
	defer span.End()

	pairingID := r.PathValue("pairingID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req substitutionRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForPairing(ctx, principal, pairingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.substitutions.Request(ctx, c, pairingID, usecase.SubstitutionInput{
		SubUserID: req.SubUserID,
		SubEmail:  req.SubEmail,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "request substitution failed", "pairing_id", pairingID, "user_id", c.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, substitutionToDTO(item))
}

func (h *Handler) ApproveSubstitution(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveSubstitution")
	defer span.End()

	pairingID := r.PathValue("pairingID")
	requestID := r.PathValue("requestID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	c, err := h.access.ForPairing(ctx, principal, pairingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	decision, err := h.substitutions.Approve(ctx, c, pairingID, requestID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve substitution failed", "pairing_id", pairingID, "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, decisionToDTO(ctx, decision))
}

func (h *Handler) RejectSubstitution(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectSubstitution")
	defer span.End()

	pairingID := r.PathValue("pairingID")
	requestID := r.PathValue("requestID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req rejectSubstitutionRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForPairing(ctx, principal, pairingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.substitutions.Reject(ctx, c, pairingID, requestID, req.Note)
	if err != nil {
		h.logger.WarnContext(ctx, "reject substitution failed", "pairing_id", pairingID, "request_id", requestID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, substitutionToDTO(item))
}

func (h *Handler) ListSeasonSubstitutions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasonSubstitutions")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	c, err := h.access.ForSeason(ctx, principal, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.substitutions.ListBySeason(ctx, c, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "list substitutions failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, substitutionsToDTO(items))
}
