package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
	"github.com/riskibarqy/playhub-league/internal/usecase"
)

type Handler struct {
	access        *usecase.AccessService
	pairings      *usecase.PairingService
	substitutions *usecase.SubstitutionService
	weeks         *usecase.WeekService
	finalizer     *usecase.FinalizeService
	rosters       *usecase.RosterService
	ratings       *usecase.RatingService
	standings     *usecase.StandingsService
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	access *usecase.AccessService,
	pairings *usecase.PairingService,
	substitutions *usecase.SubstitutionService,
	weeks *usecase.WeekService,
	finalizer *usecase.FinalizeService,
	rosters *usecase.RosterService,
	ratings *usecase.RatingService,
	standings *usecase.StandingsService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		access:        access,
		pairings:      pairings,
		substitutions: substitutions,
		weeks:         weeks,
		finalizer:     finalizer,
		rosters:       rosters,
		ratings:       ratings,
		standings:     standings,
		logger:        logger.Named("httpapi"),
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeRequest reads a JSON body into dst and validates it. An empty body
// is accepted when optional is set and leaves dst at its zero value.
func (h *Handler) decodeRequest(ctx context.Context, r *http.Request, dst any, optional bool) error {
	if optional && (r.Body == nil || r.ContentLength == 0) {
		return h.validateRequest(ctx, dst)
	}

	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
		}
	}
	return h.validateRequest(ctx, dst)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return principal, nil
}

func pathIndex(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer, got %q", usecase.ErrInvalidInput, name, raw)
	}
	return v, nil
}
