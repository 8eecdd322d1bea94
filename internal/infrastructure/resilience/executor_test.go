package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestExecuteRetriesUntilSuccess(t *testing.T) {
	exec := NewExecutor(Policy{
		RetryAttempts:  3,
		RetryBaseDelay: 1 * time.Millisecond,
		RetryMaxDelay:  2 * time.Millisecond,
		RetryFactor:    2,
		BreakerEnabled: false,
	})

	attempts := 0
	errTransient := errors.New("transient")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errTransient
		}
		return nil
	}, func(err error) Outcome {
		return Outcome{Retryable: errors.Is(err, errTransient), RecordFailure: true}
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestExecuteStopsOnNonRetryableFailure(t *testing.T) {
	exec := NewExecutor(Policy{
		RetryAttempts:  3,
		RetryBaseDelay: 1 * time.Millisecond,
		RetryMaxDelay:  2 * time.Millisecond,
		RetryFactor:    2,
		BreakerEnabled: false,
	})

	attempts := 0
	errPermanent := errors.New("permanent")
	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		attempts++
		return errPermanent
	}, func(error) Outcome {
		return Outcome{Retryable: false, RecordFailure: false}
	})
	if !errors.Is(err, errPermanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestExecuteOpensCircuitAfterFailures(t *testing.T) {
	exec := NewExecutor(Policy{
		RetryAttempts:       1,
		RetryBaseDelay:      1 * time.Millisecond,
		RetryMaxDelay:       1 * time.Millisecond,
		RetryFactor:         2,
		BreakerEnabled:      true,
		BreakerMinRequests:  2,
		BreakerFailureRatio: 0.5,
		BreakerOpenTimeout:  50 * time.Millisecond,
		BreakerHalfOpenMax:  1,
	})

	errBackend := errors.New("backend down")
	classify := func(error) Outcome {
		return Outcome{Retryable: false, RecordFailure: true}
	}

	for i := 0; i < 2; i++ {
		err := exec.Execute(context.Background(), "op", func(context.Context) error {
			return errBackend
		}, classify)
		if !errors.Is(err, errBackend) {
			t.Fatalf("expected backend error on iteration %d, got %v", i, err)
		}
	}

	err := exec.Execute(context.Background(), "op", func(context.Context) error {
		t.Fatalf("circuit should be open and must not call operation")
		return nil
	}, classify)
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("expected gobreaker open state, got %v", err)
	}
}
