package cli

import (
	"context"
	"io"
	"testing"
	"time"
)

func quietSpinner(ctx context.Context, msg string) *Spinner {
	s := newSpinner(ctx, msg)
	s.w = io.Discard
	return s
}

func TestSpinnerBasic(t *testing.T) {
	s := quietSpinner(context.Background(), "Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if s.Cancelled() {
		t.Error("a stopped spinner should not report cancellation")
	}
}

func TestSpinnerWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := quietSpinner(ctx, "Testing with context...")
	s.Start()
	cancel()

	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerWithTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	s := quietSpinner(ctx, "Testing with timeout...")
	s.Start()
	time.Sleep(100 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("Spinner should be cancelled after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := quietSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerUpdate(t *testing.T) {
	s := quietSpinner(context.Background(), "Rendering SVG...")
	s.Start()
	s.Update("PDF")
	s.Stop()

	if len(s.message) != len("Rendering SVG...") {
		t.Errorf("message %q should be padded to the previous length", s.message)
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	captureOutput(t)

	s := quietSpinner(context.Background(), "Testing success...")
	s.Start()
	time.Sleep(50 * time.Millisecond)
	s.StopWithSuccess("Done!")

	s = quietSpinner(context.Background(), "Testing error...")
	s.Start()
	s.StopWithError("Failed!")
}
