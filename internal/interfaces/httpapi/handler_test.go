package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/playhub-league/internal/domain/pairing"
	"github.com/riskibarqy/playhub-league/internal/domain/store"
	"github.com/riskibarqy/playhub-league/internal/domain/user"
	"github.com/riskibarqy/playhub-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/playhub-league/internal/platform/cache"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
	"github.com/riskibarqy/playhub-league/internal/usecase"
)

// tokenAsUser treats the bearer token as a directory user id.
type tokenAsUser struct{}

func (tokenAsUser) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token == "expired" {
		return user.Principal{}, fmt.Errorf("%w: token expired", usecase.ErrUnauthorized)
	}
	return user.Principal{UserID: token, Email: token + "@playhub.test"}, nil
}

type apiFixture struct {
	store  *memory.Store
	router http.Handler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	st := memory.NewStore(memory.DemoSeed())
	logger := logging.NewNop()
	standings := usecase.NewStandingsService(st, cache.NewStore[usecase.Standings](time.Minute), logger)
	handler := NewHandler(
		usecase.NewAccessService(st, nil),
		usecase.NewPairingService(st, logger, nil),
		usecase.NewSubstitutionService(st, nil, logger, nil),
		usecase.NewWeekService(st, nil, logger),
		usecase.NewFinalizeService(st, nil, standings, logger, nil),
		usecase.NewRosterService(st, logger),
		usecase.NewRatingService(st, nil, logger, nil),
		standings,
		logger,
	)
	return &apiFixture{
		store:  st,
		router: NewRouter(handler, tokenAsUser{}, logger, []string{"https://app.playhub.test"}, nil),
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token, body string) (int, googleResponseEnvelope, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env googleResponseEnvelope
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &env), "body=%s", rec.Body.String())
	return rec.Code, env, rec.Body.Bytes()
}

// openWeekOne generates and opens week 1 through the API and returns the
// week id with its pairings.
func (f *apiFixture) openWeekOne(t *testing.T) (string, []pairing.Pairing) {
	t.Helper()

	code, _, raw := f.do(t, http.MethodPost, "/v1/seasons/"+memory.DemoSeasonID+"/weeks/1/generate", memory.DemoAdminID, `{"open":true}`)
	require.Equal(t, http.StatusCreated, code, string(raw))

	var body struct {
		Data weekPlanDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &body))
	require.Equal(t, "OPEN", body.Data.Week.State)
	require.NotEmpty(t, body.Data.Matchups)

	var pairings []pairing.Pairing
	err := f.store.View(context.Background(), func(ctx context.Context, r store.Repositories) error {
		var err error
		pairings, err = r.Pairings.ListByWeek(ctx, body.Data.Week.ID)
		return err
	})
	require.NoError(t, err)
	require.NotEmpty(t, pairings)
	return body.Data.Week.ID, pairings
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	code, env, _ := f.do(t, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "2.0", env.APIVersion)
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	tests := []struct {
		name  string
		token string
	}{
		{name: "missing token", token: ""},
		{name: "rejected token", token: "expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env, _ := f.do(t, http.MethodGet, "/v1/seasons/"+memory.DemoSeasonID+"/standings", tt.token, "")
			require.Equal(t, http.StatusUnauthorized, code)
			require.NotNil(t, env.Error)
			require.Equal(t, "UNAUTHENTICATED", env.Error.Status)
		})
	}
}

func TestRouter_ReportConfirmFlow(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, pairings := f.openWeekOne(t)
	p := pairings[0]
	base := "/v1/pairings/" + p.ID

	code, _, raw := f.do(t, http.MethodPost, base+"/report", p.PlayerAID, `{"games_a":2,"games_b":1}`)
	require.Equal(t, http.StatusOK, code, string(raw))

	code, env, _ := f.do(t, http.MethodPost, base+"/confirm", p.PlayerAID, "")
	require.Equal(t, http.StatusConflict, code)
	require.Equal(t, "conflict", env.Error.Errors[0].Reason)

	code, _, raw = f.do(t, http.MethodPost, base+"/confirm", p.PlayerBID, "")
	require.Equal(t, http.StatusOK, code, string(raw))

	var confirmed struct {
		Data pairingDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &confirmed))
	require.Equal(t, string(pairing.StateFinal), confirmed.Data.State)
	require.NotNil(t, confirmed.Data.Score)
	require.Equal(t, scoreDTO{A: 2, B: 1}, *confirmed.Data.Score)

	code, _, raw = f.do(t, http.MethodGet, base, p.PlayerBID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var view struct {
		Data pairingViewDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &view))
	require.Equal(t, 1, view.Data.WeekIndex)
	require.Equal(t, p.MatchupID, view.Data.Matchup.ID)
}

func TestRouter_ReportRejections(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, pairings := f.openWeekOne(t)
	p := pairings[0]

	tests := []struct {
		name   string
		token  string
		body   string
		status int
	}{
		{name: "games out of range", token: p.PlayerAID, body: `{"games_a":3,"games_b":0}`, status: http.StatusBadRequest},
		{name: "unknown field", token: p.PlayerAID, body: `{"games_a":2,"games_b":0,"winner":"A"}`, status: http.StatusBadRequest},
		{name: "missing games", token: p.PlayerAID, body: `{"games_a":2}`, status: http.StatusBadRequest},
		{name: "not a best of three result", token: p.PlayerAID, body: `{"games_a":1,"games_b":1}`, status: http.StatusBadRequest},
		{name: "outsider", token: "u-outsider", body: `{"games_a":2,"games_b":0}`, status: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env, raw := f.do(t, http.MethodPost, "/v1/pairings/"+p.ID+"/report", tt.token, tt.body)
			require.Equal(t, tt.status, code, string(raw))
			require.NotNil(t, env.Error)
		})
	}
}

func TestRouter_FinalizeListsPendingPairings(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	weekID, pairings := f.openWeekOne(t)

	code, env, raw := f.do(t, http.MethodPost, "/v1/weeks/"+weekID+"/finalize", memory.DemoAdminID, "")
	require.Equal(t, http.StatusConflict, code, string(raw))
	require.NotNil(t, env.Error)

	pending := 0
	for _, item := range env.Error.Errors {
		if item.Reason == "pairingNotFinal" {
			pending++
		}
	}
	require.Equal(t, len(pairings), pending)
}

func TestRouter_FinalizeRequiresAdmin(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	weekID, pairings := f.openWeekOne(t)

	code, _, _ := f.do(t, http.MethodPost, "/v1/weeks/"+weekID+"/finalize", pairings[0].PlayerAID, "")
	require.Equal(t, http.StatusForbidden, code)
}

func TestRouter_CurrentWeekAndStandings(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	seasonPath := "/v1/seasons/" + memory.DemoSeasonID

	code, _, _ := f.do(t, http.MethodGet, seasonPath+"/weeks/current", memory.DemoAdminID, "")
	require.Equal(t, http.StatusNotFound, code)

	f.openWeekOne(t)

	code, _, raw := f.do(t, http.MethodGet, seasonPath+"/weeks/current", memory.DemoAdminID, "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var current struct {
		Data currentWeekDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &current))
	require.Equal(t, 1, current.Data.Week.Index)
	require.Equal(t, "America/New_York", current.Data.Deadlines.Timezone)

	code, _, raw = f.do(t, http.MethodGet, seasonPath+"/standings", "u-aces-2", "")
	require.Equal(t, http.StatusOK, code, string(raw))
	var standings struct {
		Data standingsDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &standings))
	require.Len(t, standings.Data.Teams, 4)
}

func TestRouter_GenerateWeekOpensByDefault(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		state string
	}{
		{name: "no body", body: "", state: "OPEN"},
		{name: "open omitted", body: `{}`, state: "OPEN"},
		{name: "kept as draft", body: `{"open":false}`, state: "DRAFT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newAPIFixture(t)
			code, _, raw := f.do(t, http.MethodPost, "/v1/seasons/"+memory.DemoSeasonID+"/weeks/1/generate", memory.DemoAdminID, tt.body)
			require.Equal(t, http.StatusCreated, code, string(raw))

			var body struct {
				Data weekPlanDTO `json:"data"`
			}
			require.NoError(t, sonic.Unmarshal(raw, &body))
			require.Equal(t, tt.state, body.Data.Week.State)
		})
	}
}

func TestRouter_WeekIndexMustBePositive(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	for _, index := range []string{"0", "-1", "first"} {
		code, _, _ := f.do(t, http.MethodPost, "/v1/seasons/"+memory.DemoSeasonID+"/weeks/"+index+"/open", memory.DemoAdminID, "")
		require.Equal(t, http.StatusBadRequest, code, "index=%s", index)
	}
}

func TestRouter_SetRating(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	path := "/v1/leagues/" + memory.DemoLeagueID + "/ratings/u-aces-2"

	code, _, _ := f.do(t, http.MethodPut, path, "u-aces-1", `{"hidden":400,"reason":"boost"}`)
	require.Equal(t, http.StatusForbidden, code)

	code, _, raw := f.do(t, http.MethodPut, path, memory.DemoAdminID, `{"hidden":400,"reason":"season review"}`)
	require.Equal(t, http.StatusOK, code, string(raw))
	var event struct {
		Data ratingEventDTO `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &event))
	require.Equal(t, 400, event.Data.After)
	require.Equal(t, "season review", event.Data.Reason)
}

func TestRouter_SubstitutionRequestValidation(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	_, pairings := f.openWeekOne(t)

	code, env, _ := f.do(t, http.MethodPost, "/v1/pairings/"+pairings[0].ID+"/substitutions", memory.DemoAdminID, `{}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.True(t, strings.Contains(env.Error.Message, "validation failed"), env.Error.Message)
}
