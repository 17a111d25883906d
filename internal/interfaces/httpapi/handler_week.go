package httpapi

import "net/http"

func (h *Handler) GenerateSeasonSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateSeasonSchedule")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req generateScheduleRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForSeason(ctx, principal, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	plans, err := h.weeks.GenerateSeasonSchedule(ctx, c, seasonID, req.Overwrite)
	if err != nil {
		h.logger.WarnContext(ctx, "generate season schedule failed", "season_id", seasonID, "overwrite", req.Overwrite, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]weekPlanDTO, 0, len(plans))
	for _, plan := range plans {
		items = append(items, weekPlanToDTO(plan))
	}
	writeSuccess(ctx, w, http.StatusCreated, items)
}

func (h *Handler) GenerateWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateWeek")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	index, err := pathIndex(r, "weekIndex")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req generateWeekRequest
	if err := h.decodeRequest(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForSeason(ctx, principal, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	plan, err := h.weeks.GenerateWeek(ctx, c, seasonID, index, req.open())
	if err != nil {
		h.logger.WarnContext(ctx, "generate week failed", "season_id", seasonID, "week_index", index, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, weekPlanToDTO(plan))
}

func (h *Handler) OpenWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenWeek")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	index, err := pathIndex(r, "weekIndex")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	c, err := h.access.ForSeason(ctx, principal, seasonID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	item, err := h.weeks.OpenWeek(ctx, c, seasonID, index)
	if err != nil {
		h.logger.WarnContext(ctx, "open week failed", "season_id", seasonID, "week_index", index, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weekToDTO(item))
}

func (h *Handler) GetCurrentWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentWeek")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	current, err := h.weeks.CurrentWeek(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get current week failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, currentWeekDTO{
		Week:      weekToDTO(current.Week),
		Matchups:  matchupsToDTO(current.Matchups),
		Deadlines: deadlinesToDTO(current.Deadlines),
	})
}

func (h *Handler) FinalizeWeek(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.FinalizeWeek")
	defer span.End()

	weekID := r.PathValue("weekID")
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	c, err := h.access.ForWeek(ctx, principal, weekID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	res, err := h.finalizer.FinalizeWeek(ctx, c, weekID)
	if err != nil {
		h.logger.WarnContext(ctx, "finalize week failed", "week_id", weekID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, finalizeResultToDTO(ctx, res))
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStandings")
	defer span.End()

	seasonID := r.PathValue("seasonID")
	standings, err := h.standings.Get(ctx, seasonID)
	if err != nil {
		h.logger.WarnContext(ctx, "get standings failed", "season_id", seasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingsToDTO(ctx, standings))
}

