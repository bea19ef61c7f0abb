package cache

import (
	"testing"
	"time"
)

// Ristretto applies writes asynchronously; give it a moment before
// asserting on Get.
const settle = 50 * time.Millisecond

func TestLRUSetGet(t *testing.T) {
	c, err := NewLRU(1, time.Minute)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	c.Set("k", []byte("value"), 0)
	time.Sleep(settle)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("value not found after settle")
	}
	if string(got) != "value" {
		t.Errorf("got %q, want %q", got, "value")
	}
}

func TestLRUExpiry(t *testing.T) {
	c, err := NewLRU(1, time.Minute)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	c.Set("k", []byte("value"), 20*time.Millisecond)
	time.Sleep(settle)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry still served")
	}
}

func TestLRUDelete(t *testing.T) {
	c, err := NewLRU(1, time.Minute)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}

	c.Set("k", []byte("value"), 0)
	time.Sleep(settle)
	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry still served")
	}
}

func TestLRUMissingKey(t *testing.T) {
	c, err := NewLRU(1, time.Minute)
	if err != nil {
		t.Fatalf("NewLRU: %v", err)
	}
	if _, ok := c.Get("absent"); ok {
		t.Error("missing key reported found")
	}
}
