package latency

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWait_Elapses(t *testing.T) {
	start := time.Now()
	if err := Wait(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("Wait returned early")
	}
}

func TestWait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if err := Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("zero wait on cancelled ctx: expected context.Canceled, got %v", err)
	}
}

func TestWait_Zero(t *testing.T) {
	if err := Wait(context.Background(), 0); err != nil {
		t.Errorf("Wait(0): %v", err)
	}
}
