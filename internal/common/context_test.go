package common

import (
	"context"
	"testing"
	"time"
)

func TestRunID(t *testing.T) {
	ctx := context.Background()
	if got := RunIDFromContext(ctx); got != "" {
		t.Errorf("empty context run id = %q", got)
	}
	if got := RunIDFromContext(WithRunID(ctx, "run-1")); got != "run-1" {
		t.Errorf("run id = %q, want run-1", got)
	}
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(WithRunID(context.Background(), "run-1"), time.Minute)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > time.Minute {
		t.Errorf("deadline = %v %v", deadline, ok)
	}
	if got := RunIDFromContext(ctx); got != "run-1" {
		t.Errorf("run id lost through WithTimeout: %q", got)
	}
	cancel()
	if ctx.Err() == nil {
		t.Error("context should be done after cancel")
	}
}
