package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestIsProbeAccessLog(t *testing.T) {
	t.Parallel()

	require.True(t, isProbeAccessLog("http request", map[string]any{"path": "/healthz"}))
	require.False(t, isProbeAccessLog("http request", map[string]any{"path": "/v1/pairings/p-1"}))
	require.False(t, isProbeAccessLog("finalize week failed", map[string]any{"path": "/healthz"}))
}

func TestAttributes_SortedWithNativeScalars(t *testing.T) {
	t.Parallel()

	attrs := attributes(map[string]any{
		"week_id": "w-1",
		"attempt": int64(2),
		"elapsed": 1500 * time.Millisecond,
		"ledger":  map[string]any{"t-aces": 3},
		"error":   errors.New("pairing not final"),
	})
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	require.Equal(t, []string{"attempt", "elapsed", "error", "ledger", "week_id"}, keys)
	require.Equal(t, int64(2), attrs[0].Value.AsInt64())
	require.Equal(t, "1.5s", attrs[1].Value.AsString())
	require.Equal(t, "pairing not final", attrs[2].Value.AsString())
	require.Equal(t, `{"t-aces":3}`, attrs[3].Value.AsString())
	require.Equal(t, otellog.KindString, attrs[4].Value.Kind())
}

func TestSeverityOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, otellog.SeverityDebug, severityOf(zapcore.DebugLevel))
	require.Equal(t, otellog.SeverityWarn, severityOf(zapcore.WarnLevel))
	require.Equal(t, otellog.SeverityError, severityOf(zapcore.ErrorLevel))
	require.Equal(t, otellog.SeverityFatal, severityOf(zapcore.PanicLevel))
}

func TestLogBridge_WithKeepsParentUntouched(t *testing.T) {
	t.Parallel()

	parent := newLogBridge("test", zapcore.WarnLevel)
	require.False(t, parent.Enabled(zapcore.InfoLevel))

	child, ok := parent.With([]zapcore.Field{zap.String("component", "finalizer")}).(*logBridge)
	require.True(t, ok)
	require.Len(t, child.context, 1)
	require.Empty(t, parent.context)
	require.NoError(t, child.Write(zapcore.Entry{Level: zapcore.ErrorLevel, Message: "finalize week failed", Time: time.Now()}, nil))
}
