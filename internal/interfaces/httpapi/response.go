package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	crdberrors "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/playhub-league/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "playhub-league"
)

// googleResponseEnvelope follows the Google JSON style guide: exactly one of
// data or error is set.
type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain   string `json:"domain"`
	Reason   string `json:"reason"`
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

var internalError = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

// errorKinds is checked in order; the first sentinel the error wraps wins.
var errorKinds = []struct {
	sentinel error
	mapped   mappedError
}{
	{usecase.ErrInvalidInput, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{usecase.ErrNotFound, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{usecase.ErrUnauthorized, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{usecase.ErrForbidden, mappedError{http.StatusForbidden, "forbidden", "PERMISSION_DENIED"}},
	{usecase.ErrConflict, mappedError{http.StatusConflict, "conflict", "FAILED_PRECONDITION"}},
	{usecase.ErrRuleViolation, mappedError{http.StatusUnprocessableEntity, "ruleViolation", "FAILED_PRECONDITION"}},
	{usecase.ErrDependencyUnavailable, mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

func mapError(err error) mappedError {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.sentinel) {
			return kind.mapped
		}
	}
	return internalError
}

var jsonBuffers bytebufferpool.Pool

// writeJSON encodes into a pooled buffer first so an encoding failure can
// still produce a clean 500.
func writeJSON(_ context.Context, w http.ResponseWriter, status int, payload any) {
	buf := jsonBuffers.Get()
	defer jsonBuffers.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		http.Error(w, `{"apiVersion":"2.0","error":{"code":500,"message":"encode response","status":"INTERNAL"}}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.B)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(ctx, w, status, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: data})
}

func writeFailure(ctx context.Context, w http.ResponseWriter, mapped mappedError, message string, items []googleErrorItem) {
	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors:  items,
		},
	})
}

// writeError maps err onto an error envelope. Unmapped errors never leak
// their text to the client.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	if mapped == internalError {
		writeInternalError(ctx, w)
		return
	}
	writeFailure(ctx, w, mapped, err.Error(), errorItems(mapped, err))
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	const msg = "internal server error"
	writeFailure(ctx, w, internalError, msg, []googleErrorItem{{Domain: errorDomain, Reason: internalError.Reason, Message: msg}})
}

// errorItems lists the primary error, then one item per hint and one per
// pairing that blocks a finalization.
func errorItems(mapped mappedError, err error) []googleErrorItem {
	items := []googleErrorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: err.Error()}}
	for _, hint := range crdberrors.GetAllHints(err) {
		items = append(items, googleErrorItem{Domain: errorDomain, Reason: "hint", Message: hint})
	}

	var notFinal *usecase.NotFinalError
	if errors.As(err, &notFinal) {
		for _, p := range notFinal.Pairings {
			items = append(items, googleErrorItem{
				Domain:   errorDomain,
				Reason:   "pairingNotFinal",
				Message:  string(p.State),
				Location: p.PairingID,
			})
		}
	}
	return items
}
