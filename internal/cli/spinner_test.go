package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerCancellation(t *testing.T) {
	tests := []struct {
		name          string
		stop          func(s *Spinner, cancel context.CancelFunc)
		wantCancelled bool
	}{
		{"stop", func(s *Spinner, _ context.CancelFunc) { s.Stop() }, false},
		{"context cancelled", func(_ *Spinner, cancel context.CancelFunc) { cancel() }, true},
		{"cancel then stop", func(s *Spinner, cancel context.CancelFunc) { cancel(); s.Stop() }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			s := newSpinnerWithContext(ctx, "Rendering...")
			s.out = &bytes.Buffer{}
			s.Start()
			tt.stop(s, cancel)
			time.Sleep(20 * time.Millisecond)

			if got := s.Cancelled(); got != tt.wantCancelled {
				t.Errorf("Cancelled() = %v, want %v", got, tt.wantCancelled)
			}
		})
	}
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	s := newSpinnerWithContext(ctx, "Computing layout...")
	s.out = &bytes.Buffer{}
	s.Start()
	time.Sleep(80 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after its context timed out")
	}
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Rendering...")
	s.out = &buf

	s.draw("⠋", 3*time.Second)
	if out := buf.String(); !strings.Contains(out, "Rendering...") || !strings.Contains(out, "(3s)") {
		t.Errorf("draw() = %q, want message and elapsed seconds", out)
	}

	buf.Reset()
	s.draw("⠙", time.Second)
	if strings.Contains(buf.String(), "(1s)") {
		t.Error("elapsed time shown too early")
	}

	buf.Reset()
	s.Stop()
	if !strings.HasPrefix(buf.String(), "\r ") {
		t.Errorf("Stop() should blank the line, wrote %q", buf.String())
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s := newSpinner("Testing idempotent stop...")
	s.out = &bytes.Buffer{}
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopBeforeStart(t *testing.T) {
	s := newSpinner("Never started")
	s.Stop()
	if s.Cancelled() {
		t.Error("Stop() before Start() should not report cancellation")
	}
}
