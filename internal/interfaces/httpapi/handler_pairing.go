package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/usecase"
)

func (h *Handler) GetPairing(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPairing")
	defer span.End()

	pairingID := r.PathValue("pairingID")
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

	view, err := h.pairings.Get(ctx, c, pairingID)
	if err != nil {
		h.logger.WarnContext(ctx, "get pairing failed", "pairing_id", pairingID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pairingViewToDTO(ctx, view))
}

func (h *Handler) UpdatePairingSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePairingSchedule")
	defer span.End()

	pairingID := r.PathValue("pairingID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req scheduleRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	var in usecase.ScheduleInput
	if req.ProposedForUTC != "" {
		proposed, err := time.Parse(time.RFC3339, req.ProposedForUTC)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: proposed_for_utc: %v", usecase.ErrInvalidInput, err))
			return
		}
		proposed = proposed.UTC()
		in.ProposedFor = &proposed
	}

	c, err := h.access.ForPairing(ctx, principal, pairingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.pairings.UpdateSchedule(ctx, c, pairingID, in)
	if err != nil {
		h.logger.WarnContext(ctx, "update pairing schedule failed", "pairing_id", pairingID, "user_id", c.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pairingToDTO(ctx, item))
}

func (h *Handler) ReportResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ReportResult")
	defer span.End()

	pairingID := r.PathValue("pairingID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req reportRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForPairing(ctx, principal, pairingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.pairings.ReportResult(ctx, c, pairingID, pairing.Score{A: *req.GamesA, B: *req.GamesB})
	if err != nil {
		h.logger.WarnContext(ctx, "report result failed", "pairing_id", pairingID, "user_id", c.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pairingToDTO(ctx, item))
}

func (h *Handler) ConfirmResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConfirmResult")
	defer span.End()

	pairingID := r.PathValue("pairingID")
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

	item, err := h.pairings.ConfirmResult(ctx, c, pairingID)
	if err != nil {
		h.logger.WarnContext(ctx, "confirm result failed", "pairing_id", pairingID, "user_id", c.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pairingToDTO(ctx, item))
}

func (h *Handler) DisputeResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DisputeResult")
	defer span.End()

	pairingID := r.PathValue("pairingID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req disputeRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForPairing(ctx, principal, pairingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.pairings.Dispute(ctx, c, pairingID, req.Note)
	if err != nil {
		h.logger.WarnContext(ctx, "dispute result failed", "pairing_id", pairingID, "user_id", c.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pairingToDTO(ctx, item))
}

func (h *Handler) AdminResolve(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminResolve")
	defer span.End()

	pairingID := r.PathValue("pairingID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req adminResolveRequest
	if err := h.decodeRequest(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	in := usecase.ResolveInput{Winner: pairing.Side(req.Winner)}
	if req.GamesA != nil && req.GamesB != nil {
		in.Score = &pairing.Score{A: *req.GamesA, B: *req.GamesB}
	}

	c, err := h.access.ForPairing(ctx, principal, pairingID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.pairings.AdminResolve(ctx, c, pairingID, in)
	if err != nil {
		h.logger.WarnContext(ctx, "admin resolve failed", "pairing_id", pairingID, "user_id", c.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pairingToDTO(ctx, item))
}
