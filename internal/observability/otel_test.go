package observability

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestInitTracingDisabled(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), TracingConfig{})
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
}

func TestInitTracingExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.Background()
	shutdown, err := InitTracing(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), TracingConfig{Enabled: true, Writer: &buf})
	if err != nil {
		t.Fatalf("InitTracing() error = %v", err)
	}

	_, span := otel.Tracer("test").Start(ctx, "unit-span")
	span.End()

	// shutdown flushes the batcher
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if !strings.Contains(buf.String(), "unit-span") {
		t.Fatalf("span not exported: %q", buf.String())
	}
}
