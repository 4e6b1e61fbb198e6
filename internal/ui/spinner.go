package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Spinner shows progress while a blocking step runs, such as connecting
// to the audit database. It writes to stderr so stdout stays clean for
// scripted console sessions.
type Spinner struct {
	ui      *UI
	out     io.Writer
	label   string
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// Spinner animation frames (braille pattern).
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewSpinner creates a new animated spinner.
func (u *UI) NewSpinner(label string) *Spinner {
	return &Spinner{
		ui:    u,
		out:   os.Stderr,
		label: label,
		done:  make(chan struct{}),
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if !s.ui.shouldStyle() {
		fmt.Fprintf(s.out, "%s...", s.label)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		frame := 0
		spinnerStyle := lipgloss.NewStyle().Foreground(ColorPrimary)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				fmt.Fprintf(s.out, "\r%s %s...",
					spinnerStyle.Render(spinnerFrames[frame]),
					s.label,
				)
				frame = (frame + 1) % len(spinnerFrames)
			}
		}
	}()
}

// halt stops the animation goroutine. It reports false if Start was never called.
func (s *Spinner) halt() bool {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return false
	}

	s.once.Do(func() { close(s.done) })
	s.wg.Wait()
	return true
}

// Success stops the spinner and shows a success message.
func (s *Spinner) Success(msg string) {
	if !s.halt() {
		return
	}

	if !s.ui.shouldStyle() {
		fmt.Fprintf(s.out, " %s\n", msg)
		return
	}

	fmt.Fprintf(s.out, "\r\033[K%s %s... %s\n",
		StyleSuccess.Render(SymbolSuccess),
		s.label,
		msg,
	)
}

// Error stops the spinner and shows an error message.
func (s *Spinner) Error(msg string) {
	if !s.halt() {
		return
	}

	if !s.ui.shouldStyle() {
		fmt.Fprintf(s.out, " %s\n", msg)
		return
	}

	fmt.Fprintf(s.out, "\r\033[K%s %s... %s\n",
		StyleError.Render(SymbolError),
		s.label,
		StyleError.Render(msg),
	)
}
