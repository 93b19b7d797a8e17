package annotate

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultQuietPeriod is how long the selection must hold still before anchor
// resolution runs and the bubble appears.
const DefaultQuietPeriod = 400 * time.Millisecond

// SettledMsg fires when a debounce window elapses without further input.
type SettledMsg struct {
	generation int
}

// Debouncer coalesces the continuous selection-change events a drag produces
// into a single settle. Each Reset supersedes outstanding timers by bumping a
// generation counter, so only the last scheduled firing within a burst is
// honored.
type Debouncer struct {
	quiet      time.Duration
	generation int
}

// NewDebouncer builds a debouncer with the given quiet period; zero or
// negative durations fall back to DefaultQuietPeriod.
func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer{quiet: quiet}
}

// Reset notes a new selection-change event and schedules a settle check.
func (d *Debouncer) Reset() tea.Cmd {
	d.generation++
	generation := d.generation
	return tea.Tick(d.quiet, func(time.Time) tea.Msg {
		return SettledMsg{generation: generation}
	})
}

// Cancel invalidates every outstanding timer, e.g. when the user navigates
// away or closes the bubble mid-drag.
func (d *Debouncer) Cancel() {
	d.generation++
}

// Settled reports whether the message is the live generation; stale firings
// from superseded resets return false and must be ignored.
func (d *Debouncer) Settled(msg SettledMsg) bool {
	return msg.generation == d.generation
}
