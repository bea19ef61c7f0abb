package tracing

import (
	"context"
	"testing"
)

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init("forcemap-test", Options{Enabled: false})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if shutdown == nil {
		t.Fatal("shutdown function should never be nil")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned %v", err)
	}
	if tracer != nil {
		t.Error("disabled Init should not install a tracer")
	}
}

func TestGetTracerBeforeInit(t *testing.T) {
	tracer = nil
	if GetTracer() == nil {
		t.Fatal("GetTracer should fall back to a no-op tracer")
	}
}

func TestStartSpanWithoutProvider(t *testing.T) {
	tracer = nil
	ctx, span := StartSpan(context.Background(), "test-span")
	if ctx == nil || span == nil {
		t.Fatal("StartSpan should work before Init")
	}
	span.End()
}
