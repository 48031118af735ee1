package output

import (
	"fmt"
	"time"
)

// Spinner is a terminal spinner for an operation whose duration isn't
// known up front — a scan pass before the hit count exists, a profile
// load — as distinct from progress.Bar, which needs a total.
type Spinner struct {
	message string
	done    chan bool
	ticker  *time.Ticker
	frame   int
}

// NewSpinner starts a spinner animation immediately.
func NewSpinner(message string) *Spinner {
	s := &Spinner{
		message: message,
		done:    make(chan bool),
		ticker:  time.NewTicker(100 * time.Millisecond),
	}

	go func() {
		frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				fmt.Printf("\r%s %s", frames[s.frame%len(frames)], s.message)
				s.frame++
			}
		}
	}()

	return s
}

// Succeed stops the spinner and prints a success line.
func (s *Spinner) Succeed(message string) {
	s.Stop()
	fmt.Printf("\r✓ %s\n", message)
}

// Fail stops the spinner and prints a failure line.
func (s *Spinner) Fail(message string) {
	s.Stop()
	fmt.Printf("\r✗ %s\n", message)
}

// Stop halts the animation.
func (s *Spinner) Stop() {
	s.ticker.Stop()
	s.done <- true
	fmt.Print("\r")
}

// Update changes the message shown on the next frame.
func (s *Spinner) Update(message string) {
	s.message = message
}
