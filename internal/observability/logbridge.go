package observability

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	sonic "github.com/bytedance/sonic"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const logBridgeScope = "github.com/riskibarqy/playhub-league/internal/platform/logging"

// logBridge is a zap core that re-emits entries as OpenTelemetry log records
// through the global provider that uptrace configures.
type logBridge struct {
	zapcore.LevelEnabler
	emitter otellog.Logger
	context []zapcore.Field
}

func newLogBridge(serviceVersion string, level zapcore.LevelEnabler) *logBridge {
	return &logBridge{
		LevelEnabler: level,
		emitter:      otelglobal.Logger(logBridgeScope, otellog.WithInstrumentationVersion(serviceVersion)),
	}
}

func (b *logBridge) With(fields []zapcore.Field) zapcore.Core {
	return &logBridge{
		LevelEnabler: b.LevelEnabler,
		emitter:      b.emitter,
		context:      append(slices.Clip(b.context), fields...),
	}
}

func (b *logBridge) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !b.Enabled(ent.Level) {
		return ce
	}
	return ce.AddCore(ent, b)
}

func (b *logBridge) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range b.context {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	if isProbeAccessLog(ent.Message, enc.Fields) {
		return nil
	}

	ctx := context.Background()
	severity := severityOf(ent.Level)
	if !b.emitter.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: ent.Message}) {
		return nil
	}

	var rec otellog.Record
	rec.SetTimestamp(ent.Time)
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(severity)
	rec.SetSeverityText(ent.Level.CapitalString())
	rec.SetEventName(ent.Message)
	rec.SetBody(otellog.StringValue(ent.Message))
	if ent.LoggerName != "" {
		rec.AddAttributes(otellog.String("logger", ent.LoggerName))
	}
	if ent.Caller.Defined {
		rec.AddAttributes(otellog.String("code.location", ent.Caller.TrimmedPath()))
	}
	rec.AddAttributes(attributes(enc.Fields)...)

	b.emitter.Emit(ctx, rec)
	return nil
}

func (b *logBridge) Sync() error { return nil }

// isProbeAccessLog reports whether an entry is the access log of a health probe.
func isProbeAccessLog(msg string, fields map[string]any) bool {
	if msg != "http request" {
		return false
	}
	switch fields["path"] {
	case "/healthz", "/livez", "/readyz":
		return true
	}
	return false
}

func attributes(fields map[string]any) []otellog.KeyValue {
	out := make([]otellog.KeyValue, 0, len(fields))
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		out = append(out, otellog.KeyValue{Key: key, Value: logValue(fields[key])})
	}
	return out
}

func severityOf(level zapcore.Level) otellog.Severity {
	switch level {
	case zapcore.DebugLevel:
		return otellog.SeverityDebug
	case zapcore.InfoLevel:
		return otellog.SeverityInfo
	case zapcore.WarnLevel:
		return otellog.SeverityWarn
	case zapcore.ErrorLevel:
		return otellog.SeverityError
	default:
		if level < zapcore.DebugLevel {
			return otellog.SeverityTrace
		}
		return otellog.SeverityFatal
	}
}

// logValue maps scalars onto native log values. Anything structured is
// shipped as its JSON text.
func logValue(v any) otellog.Value {
	switch v := v.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int64:
		return otellog.Int64Value(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case float64:
		return otellog.Float64Value(v)
	case time.Duration:
		return otellog.StringValue(v.String())
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	}
	raw, err := sonic.MarshalString(v)
	if err != nil {
		return otellog.StringValue(fmt.Sprint(v))
	}
	return otellog.StringValue(raw)
}
