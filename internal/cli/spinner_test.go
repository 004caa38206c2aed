package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

// captureSpinner routes spinner frames into a buffer for the duration of a test.
func captureSpinner(t *testing.T) *syncWriter {
	t.Helper()
	w := &syncWriter{}
	old := spinnerOut
	spinnerOut = w
	t.Cleanup(func() { spinnerOut = old })
	return w
}

func TestSpinnerDrawsMessageAndClears(t *testing.T) {
	out := captureSpinner(t)

	s := startSpinner(context.Background(), "Laying out")
	time.Sleep(3 * spinnerInterval)
	s.stop()

	got := out.String()
	if !strings.Contains(got, "Laying out") {
		t.Errorf("output %q lacks message", got)
	}
	if !strings.HasSuffix(got, "\r") {
		t.Errorf("output %q does not end by clearing the line", got)
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	captureSpinner(t)
	s := startSpinner(context.Background(), "Exporting")
	s.stop()
	s.stop()
	s.stop()
}

func TestSpinnerStopsWithContext(t *testing.T) {
	out := captureSpinner(t)
	ctx, cancel := context.WithCancel(context.Background())

	s := startSpinner(ctx, "Exporting")
	cancel()
	select {
	case <-s.finished:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after cancel")
	}

	n := len(out.String())
	time.Sleep(3 * spinnerInterval)
	if len(out.String()) != n {
		t.Error("spinner drew after its context ended")
	}
	s.stop()
}

func TestSpinnerStopBeforeFirstFrame(t *testing.T) {
	out := captureSpinner(t)
	s := startSpinner(context.Background(), "Exporting")
	s.stop()
	if got := out.String(); got != "" {
		t.Errorf("output = %q, want nothing before the first frame", got)
	}
}

func TestWithSpinner(t *testing.T) {
	captureSpinner(t)
	want := errors.New("layout failed")

	ran := false
	err := withSpinner(context.Background(), "Laying out", func() error {
		ran = true
		return want
	})
	if !ran {
		t.Fatal("fn not called")
	}
	if err != want {
		t.Errorf("err = %v, want %v", err, want)
	}
}

// syncWriter serializes writes from the spinner goroutine and reads from the test.
type syncWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

var _ io.Writer = (*syncWriter)(nil)

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncWriter) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
