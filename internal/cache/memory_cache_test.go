package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestPlanCache_SetAndGet(t *testing.T) {
	cache := NewPlanCache(1 * time.Second)
	ctx := context.Background()
	key := "what is 2 + 2"
	value := map[string]any{"tool": "calc", "args": map[string]any{"expr": "2 + 2"}}

	if err := cache.Set(ctx, key, value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	plan, ok := got.(map[string]any)
	if !ok || plan["tool"] != "calc" {
		t.Errorf("expected cached plan back, got %v", got)
	}
}

func TestPlanCache_Expiration(t *testing.T) {
	cache := NewPlanCache(50 * time.Millisecond)
	ctx := context.Background()

	if err := cache.Set(ctx, "q", "answer"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := cache.Get(ctx, "q"); err == nil {
		t.Error("expected error for expired entry, got nil")
	}
}

func TestPlanCache_MissReportsNotFound(t *testing.T) {
	cache := NewPlanCache(time.Second)

	_, err := cache.Get(context.Background(), "never stored")
	if err == nil {
		t.Fatal("expected error for missing entry")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "not") {
		t.Errorf("unexpected miss error: %v", err)
	}
}

func TestPlanCache_CancelledContext(t *testing.T) {
	cache := NewPlanCache(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := cache.Set(ctx, "q", "v"); err == nil {
		t.Error("expected Set to fail under cancelled context")
	}
	if _, err := cache.Get(ctx, "q"); err == nil {
		t.Error("expected Get to fail under cancelled context")
	}
}

func TestPlanCache_Concurrency(t *testing.T) {
	cache := NewPlanCache(time.Second)
	ctx := context.Background()
	setErr := make(chan error, 1)
	getErr := make(chan error, 1)

	go func() {
		setErr <- cache.Set(ctx, "concurrent", "val")
	}()
	go func() {
		_, err := cache.Get(ctx, "concurrent")
		getErr <- err
	}()

	if err := <-setErr; err != nil {
		t.Errorf("Set failed: %v", err)
	}
	if err := <-getErr; err != nil && !strings.Contains(err.Error(), "not") {
		t.Errorf("unexpected Get error: %v", err)
	}
}
