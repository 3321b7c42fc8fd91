package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	return out
}

func withSpan(t *testing.T, ctx context.Context) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	return trace.ContextWithSpanContext(ctx, trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("catalog-service", "warn", &buf)

	l.Info("dropped")
	assert.Zero(t, buf.Len(), "info is below warn")

	l.Warn("slow store operation", slog.String("operation", "save"))
	out := decodeLine(t, &buf)
	assert.Equal(t, "catalog-service", out["service"])
	assert.Equal(t, "WARN", out["level"])
	assert.Equal(t, "save", out["operation"])
	assert.NotContains(t, out, "source")
}

func TestNewWithWriter_DebugAddsSource(t *testing.T) {
	var buf bytes.Buffer
	NewWithWriter("catalog-service", "debug", &buf).Debug("loaded")

	assert.Contains(t, decodeLine(t, &buf), "source")
}

func TestWithContext(t *testing.T) {
	tests := []struct {
		name   string
		ctx    func(t *testing.T) context.Context
		want   map[string]string
		absent []string
	}{
		{
			name:   "empty context",
			ctx:    func(*testing.T) context.Context { return context.Background() },
			absent: []string{"correlation_id", "trace_id", "span_id"},
		},
		{
			name: "correlation id only",
			ctx: func(*testing.T) context.Context {
				return WithCorrelationID(context.Background(), "req-123")
			},
			want:   map[string]string{"correlation_id": "req-123"},
			absent: []string{"trace_id", "span_id"},
		},
		{
			name: "span only",
			ctx: func(t *testing.T) context.Context {
				return withSpan(t, context.Background())
			},
			want: map[string]string{
				"trace_id": "4bf92f3577b34da6a3ce929d0e0e4736",
				"span_id":  "00f067aa0ba902b7",
			},
			absent: []string{"correlation_id"},
		},
		{
			name: "correlation id and span",
			ctx: func(t *testing.T) context.Context {
				return withSpan(t, WithCorrelationID(context.Background(), "req-456"))
			},
			want: map[string]string{
				"correlation_id": "req-456",
				"trace_id":       "4bf92f3577b34da6a3ce929d0e0e4736",
				"span_id":        "00f067aa0ba902b7",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WithContext(tt.ctx(t), NewWithWriter("catalog-service", "info", &buf)).Info("product created")

			out := decodeLine(t, &buf)
			for k, v := range tt.want {
				assert.Equal(t, v, out[k], k)
			}
			for _, k := range tt.absent {
				assert.NotContains(t, out, k)
			}
		})
	}
}

func TestCorrelationIDFromContext(t *testing.T) {
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
	assert.Equal(t, "abc", CorrelationIDFromContext(WithCorrelationID(context.Background(), "abc")))
}

func TestFromContext(t *testing.T) {
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	l := NewWithWriter("catalog-service", "info", &bytes.Buffer{})
	assert.Same(t, l, FromContext(NewContext(context.Background(), l)))
}
