package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/playhub-league/internal/config"
	"github.com/riskibarqy/playhub-league/internal/platform/logging"
)

func TestStartProfiling_Disabled(t *testing.T) {
	t.Parallel()

	p, err := StartProfiling(config.Config{}, logging.NewNop())
	require.NoError(t, err)
	require.Nil(t, p.debug)
	require.Nil(t, p.agent)
	require.NoError(t, p.Stop(context.Background()))
}

func TestStartProfiling_PprofListener(t *testing.T) {
	t.Parallel()

	p, err := StartProfiling(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	require.NoError(t, err)
	require.NotNil(t, p.debug)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Stop(ctx))
}

func TestDebugMux_ServesIndex(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	debugMux().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestPyroscopeConfig_Tags(t *testing.T) {
	t.Parallel()

	cfg := pyroscopeConfig(config.Config{
		PyroscopeAppName:       "playhub-league-api",
		PyroscopeServerAddress: "http://pyroscope:4040",
		AppEnv:                 config.EnvDev,
		ServiceName:            "playhub-league-api",
		StoreDriver:            "memory",
	})
	require.Equal(t, "playhub-league-api", cfg.ApplicationName)
	require.Equal(t, map[string]string{"env": config.EnvDev, "service": "playhub-league-api", "store": "memory"}, cfg.Tags)
	require.NotEmpty(t, cfg.ProfileTypes)
}
