package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExecutor_NoPatterns(t *testing.T) {
	e := NewExecutor()
	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("Execute() = %v, calls = %d", err, calls)
	}
	if e.CircuitBreaker() != nil {
		t.Error("CircuitBreaker() should be nil")
	}
}

func TestExecutor_NilRunsDirectly(t *testing.T) {
	var e *Executor
	got, err := Do(context.Background(), e, func(context.Context) (int, error) { return 7, nil })
	if err != nil || got != 7 {
		t.Errorf("Do() = %d, %v", got, err)
	}
}

func TestExecutor_RetryInsideBreaker(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 2})
	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
	)

	calls := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		calls++
		return errors.New("bad gateway")
	})

	if !errors.Is(err, ErrRetriesExhausted) {
		t.Errorf("Execute() error = %v, want ErrRetriesExhausted", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if cb.Stats().Failures != 1 {
		t.Errorf("breaker failures = %d, want 1 per exhausted call", cb.Stats().Failures)
	}
}

func TestExecutor_TimeoutPerAttempt(t *testing.T) {
	e := NewExecutor(
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 2, InitialDelay: time.Millisecond})),
		WithTimeout(5*time.Millisecond),
	)

	calls := 0
	got, err := Do(context.Background(), e, func(ctx context.Context) (string, error) {
		calls++
		if calls == 1 {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "ok", nil
	})

	if err != nil || got != "ok" {
		t.Errorf("Do() = %q, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestExecutor_OpenCircuitSkipsCall(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour})
	e := NewExecutor(WithCircuitBreaker(cb), WithRateLimiter(NewRateLimiter(RateLimiterConfig{})))

	_ = e.Execute(context.Background(), fail(errors.New("down")))

	calls := 0
	_, err := Do(context.Background(), e, func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Do() error = %v, want ErrCircuitOpen", err)
	}
	if calls != 0 {
		t.Errorf("calls = %d, want 0", calls)
	}
}

func TestDo_KeepsZeroValueOnError(t *testing.T) {
	e := NewExecutor()
	want := Permanent(errors.New("not found"))
	got, err := Do(context.Background(), e, func(context.Context) ([]int, error) {
		return []int{1}, want
	})
	if got != nil {
		t.Errorf("Do() value = %v, want nil on error", got)
	}
	if !errors.Is(err, want) {
		t.Errorf("Do() error = %v", err)
	}
}
