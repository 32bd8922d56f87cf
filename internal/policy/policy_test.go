package policy

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRetryPolicy_Delay_Exponential(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts:     5,
		BaseDelay:       time.Second,
		ExponentialBase: 2.0,
		MaxDelay:        10 * time.Second,
	}

	expected := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		10 * time.Second, // capped
	}
	for i, want := range expected {
		if got := p.Delay(i + 1); got != want {
			t.Errorf("Delay(%d) = %v, want %v", i+1, got, want)
		}
	}
}

func TestRetryPolicy_Delay_NonDecreasing(t *testing.T) {
	p := DefaultRetryPolicy()
	prev := time.Duration(0)
	for n := 1; n <= 20; n++ {
		d := p.Delay(n)
		if d < prev {
			t.Fatalf("Delay(%d) = %v decreased from %v", n, d, prev)
		}
		if d > p.MaxDelay {
			t.Fatalf("Delay(%d) = %v exceeds max %v", n, d, p.MaxDelay)
		}
		prev = d
	}
}

func TestManager_WithRetry_SuccessFirstAttempt(t *testing.T) {
	m := NewManager(DefaultRetryPolicy())
	calls := 0

	result, err := m.WithRetry(context.Background(), func() (any, error) {
		calls++
		return "success", nil
	}, "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected success, got %v", result)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestManager_WithRetry_SuccessAfterFailures(t *testing.T) {
	m := NewManager(RetryPolicy{
		MaxAttempts:     3,
		BaseDelay:       time.Millisecond,
		ExponentialBase: 2.0,
		MaxDelay:        10 * time.Millisecond,
	})
	calls := 0

	result, err := m.WithRetry(context.Background(), func() (any, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("temporary failure")
		}
		return "success", nil
	}, "flaky")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected success, got %v", result)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestManager_WithRetry_Exhaustion(t *testing.T) {
	m := NewManager(RetryPolicy{
		MaxAttempts:     2,
		BaseDelay:       time.Millisecond,
		ExponentialBase: 2.0,
		MaxDelay:        10 * time.Millisecond,
	})

	_, err := m.WithRetry(context.Background(), func() (any, error) {
		return nil, errors.New("persistent failure")
	}, "doomed")
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "2 attempts") {
		t.Errorf("error should mention attempt count, got: %v", err)
	}
	if !strings.Contains(err.Error(), "context: doomed") {
		t.Errorf("error should mention context label, got: %v", err)
	}
}

func TestManager_WithRetry_Cancellation(t *testing.T) {
	m := NewManager(RetryPolicy{
		MaxAttempts:     5,
		BaseDelay:       time.Hour, // would hang without cancellation
		ExponentialBase: 2.0,
		MaxDelay:        time.Hour,
	})
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := m.WithRetry(ctx, func() (any, error) {
		calls++
		return nil, errors.New("fail")
	}, "cancelled")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestExecutionPolicy_StepLimit(t *testing.T) {
	p := ExecutionPolicy{MaxSteps: 5}

	if !p.CheckStepLimit(1) || !p.CheckStepLimit(5) {
		t.Error("steps within limit should pass")
	}
	if p.CheckStepLimit(6) || p.CheckStepLimit(10) {
		t.Error("steps beyond limit should fail")
	}
}

func TestExecutionPolicy_TimeLimit(t *testing.T) {
	p := ExecutionPolicy{MaxExecutionTime: time.Second}

	if !p.CheckTimeLimit(time.Now()) {
		t.Error("fresh start time should be within limit")
	}
	if p.CheckTimeLimit(time.Now().Add(-2 * time.Second)) {
		t.Error("old start time should exceed limit")
	}
}
