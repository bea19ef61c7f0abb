package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/onnwee/forcemap/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	config.ResetForTest()
	os.Setenv("DEMO_NODES", "50")
	t.Cleanup(func() {
		os.Unsetenv("DEMO_NODES")
		config.ResetForTest()
	})
	return config.Load()
}

func TestNewServesHealth(t *testing.T) {
	srv, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestTickerAdvancesSimulation(t *testing.T) {
	srv, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.Start(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for srv.Sim().Ticks() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Sim().Ticks() == 0 {
		t.Fatal("ticker never advanced the simulation")
	}

	cancel()
	// After cancellation the in-flight tick completes and the loop
	// exits; the count must stop moving.
	time.Sleep(100 * time.Millisecond)
	stopped := srv.Sim().Ticks()
	time.Sleep(100 * time.Millisecond)
	if srv.Sim().Ticks() != stopped {
		t.Error("ticker kept running after context cancellation")
	}
}

func TestDisableStopsTicking(t *testing.T) {
	srv, err := New(context.Background(), testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv.Start(ctx)

	deadline := time.Now().Add(5 * time.Second)
	for srv.Sim().Ticks() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	srv.Sim().Enable(false)
	time.Sleep(100 * time.Millisecond)
	paused := srv.Sim().Ticks()
	time.Sleep(150 * time.Millisecond)
	if srv.Sim().Ticks() != paused {
		t.Error("simulation ticked while disabled")
	}
}
