package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	crdberrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/usecase"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()
	var env googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, googleAPIVersion, env.APIVersion)
	return env
}

func TestWriteSuccess_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusCreated, map[string]string{"week": "w-1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Data)
	require.Nil(t, env.Error)
}

func TestWriteError_Envelope(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: games out of range", usecase.ErrInvalidInput))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	require.Equal(t, "INVALID_ARGUMENT", env.Error.Status)
	require.Equal(t, "invalidInput", env.Error.Errors[0].Reason)
}

func TestWriteError_UnmappedHidesMessage(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, errors.New("pq: relation \"pairings\" does not exist"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Equal(t, "internal server error", env.Error.Message)
	require.NotContains(t, rec.Body.String(), "pq:")
}

func TestMapError_Kinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{name: "not found", err: fmt.Errorf("%w: pairing p-1", usecase.ErrNotFound), status: http.StatusNotFound, reason: "notFound"},
		{name: "unauthorized", err: usecase.ErrUnauthorized, status: http.StatusUnauthorized, reason: "unauthorized"},
		{name: "forbidden", err: usecase.ErrForbidden, status: http.StatusForbidden, reason: "forbidden"},
		{name: "conflict", err: usecase.ErrConflict, status: http.StatusConflict, reason: "conflict"},
		{name: "rule violation", err: usecase.ErrRuleViolation, status: http.StatusUnprocessableEntity, reason: "ruleViolation"},
		{name: "dependency", err: usecase.ErrDependencyUnavailable, status: http.StatusServiceUnavailable, reason: "dependencyUnavailable"},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, reason: "internalError"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			require.Equal(t, tt.status, got.HTTPStatus)
			require.Equal(t, tt.reason, got.Reason)
		})
	}
}

func TestWriteError_HintsAndPendingPairings(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	err := crdberrors.WithHintf(&usecase.NotFinalError{
		WeekID: "w-1",
		Pairings: []usecase.PendingPairing{
			{PairingID: "p-1", MatchupID: "m-1", SeedIndex: 1, State: pairing.StateReported},
			{PairingID: "p-2", MatchupID: "m-1", SeedIndex: 2, State: pairing.StateDisputed},
		},
	}, "resolve the pending pairings before finalizing")
	writeError(context.Background(), rec, err)

	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	items := env.Error.Errors
	require.Len(t, items, 4)
	require.Equal(t, googleErrorItem{Domain: errorDomain, Reason: "hint", Message: "resolve the pending pairings before finalizing"}, items[1])
	require.Equal(t, "p-1", items[2].Location)
	require.Equal(t, "p-2", items[3].Location)
	require.Equal(t, string(pairing.StateDisputed), items[3].Message)
}
