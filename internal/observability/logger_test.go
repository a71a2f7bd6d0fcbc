package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev")

	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	log.DebugContext(ctx, "user_added", "user_id", 7)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json log line: %v: %s", err, buf.String())
	}
	if rec["trace_id"] != traceID.String() {
		t.Fatalf("trace_id: got %v", rec["trace_id"])
	}
	if rec["span_id"] != spanID.String() {
		t.Fatalf("span_id: got %v", rec["span_id"])
	}
}

func TestLoggerLevelByEnv(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod")

	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug should be dropped outside dev, got %s", buf.String())
	}

	log.Info("shown")
	if buf.Len() == 0 {
		t.Fatalf("info should be logged")
	}
}
