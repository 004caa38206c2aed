package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerOut receives spinner frames. Tests swap it out.
var spinnerOut io.Writer = os.Stderr

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerInterval = 80 * time.Millisecond

// spinner animates a status line with the elapsed time while a slow step
// (Graphviz layout, a store round trip) runs.
type spinner struct {
	out     io.Writer
	message string
	started time.Time

	mu       sync.Mutex
	width    int
	quit     chan struct{}
	finished chan struct{}
	once     sync.Once
}

// startSpinner starts animating immediately. The animation ends on stop or
// when ctx is done; stop must still be called to clear the line.
func startSpinner(ctx context.Context, message string) *spinner {
	s := &spinner{
		out:      spinnerOut,
		message:  message,
		started:  time.Now(),
		quit:     make(chan struct{}),
		finished: make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.finished)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame rune) {
	elapsed := time.Since(s.started).Round(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s %s", styleIconSpinner.Render(string(frame)),
		StyleDim.Render(s.message), StyleDim.Render(elapsed.String()))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(s.message)+len(elapsed.String())+3)
	fmt.Fprintf(s.out, "\r%s", line)
}

// stop ends the animation and clears the line. Repeated calls are no-ops.
func (s *spinner) stop() {
	s.once.Do(func() {
		close(s.quit)
		<-s.finished

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// withSpinner runs fn behind a spinner labelled message.
func withSpinner(ctx context.Context, message string, fn func() error) error {
	s := startSpinner(ctx, message)
	defer s.stop()
	return fn()
}
