// Package annotate drives the floating annotation UI: the contextual bubble
// shown over a fresh selection, the menu over an existing underline, and the
// idea-list popup. One Machine instance exists per open document; it is a
// single-state holder, not a queue, so gestures that arrive in an illegal
// state are simply ignored.
package annotate

import (
	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/underline"
)

// State enumerates the interaction states.
type State int

const (
	// StateIdle means no annotation surface is visible.
	StateIdle State = iota
	// StateSelecting holds a settled selection with a resolved anchor.
	StateSelecting
	// StateConfirming shows the bubble: Underline | Meaning | Cancel.
	StateConfirming
	// StateAwaitingIdea shows the idea composer after a successful create.
	StateAwaitingIdea
	// StateExistingSelected shows the menu over a tapped underline.
	StateExistingSelected
	// StateIdeaListOpen shows the modal idea-list popup.
	StateIdeaListOpen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateConfirming:
		return "confirming"
	case StateAwaitingIdea:
		return "awaiting-idea"
	case StateExistingSelected:
		return "existing-selected"
	case StateIdeaListOpen:
		return "idea-list-open"
	default:
		return "unknown"
	}
}

// Machine is the single interaction-state holder for an open document.
// Every mutator reports whether the event was accepted; rejected events
// leave the machine untouched.
type Machine struct {
	state       State
	text        string
	address     anchor.Address
	underlineID string
	ideaCount   int
	ideas       []underline.Idea
	creating    bool
}

// NewMachine returns a machine at rest.
func NewMachine() *Machine {
	return &Machine{state: StateIdle}
}

// State reports the current interaction state.
func (m *Machine) State() State { return m.state }

// Text returns the pending selection text.
func (m *Machine) Text() string { return m.text }

// Address returns the pending resolved anchor.
func (m *Machine) Address() anchor.Address { return m.address }

// UnderlineID returns the underline the bubble or popup refers to.
func (m *Machine) UnderlineID() string { return m.underlineID }

// IdeaCount returns the tapped underline's idea count.
func (m *Machine) IdeaCount() int { return m.ideaCount }

// Ideas returns the thread shown by the idea-list popup.
func (m *Machine) Ideas() []underline.Idea { return m.ideas }

// CreateInFlight reports whether an underline create has been requested and
// not yet resolved.
func (m *Machine) CreateInFlight() bool { return m.creating }

// Select records a settled selection with its resolved anchor. A selection
// arriving while a create is in flight is ignored; a selection made while
// the confirm bubble is up replaces the pending one.
func (m *Machine) Select(text string, addr anchor.Address) bool {
	if m.creating {
		return false
	}
	switch m.state {
	case StateIdle, StateSelecting, StateConfirming:
		m.state = StateSelecting
		m.text = text
		m.address = addr
		return true
	default:
		return false
	}
}

// Settle promotes the held selection to the confirm bubble.
func (m *Machine) Settle() bool {
	if m.state != StateSelecting {
		return false
	}
	m.state = StateConfirming
	return true
}

// RequestUnderline marks the confirm bubble's Underline action as taken.
// Only one create may be in flight; further requests are ignored until the
// outcome arrives.
func (m *Machine) RequestUnderline() bool {
	if m.state != StateConfirming || m.creating {
		return false
	}
	m.creating = true
	return true
}

// CreateSucceeded moves to the idea composer for the new underline.
func (m *Machine) CreateSucceeded(underlineID string) bool {
	if !m.creating {
		return false
	}
	m.creating = false
	if m.state != StateConfirming {
		// The bubble was dismissed while the request was in flight; the
		// store has already applied the result silently.
		return false
	}
	m.state = StateAwaitingIdea
	m.underlineID = underlineID
	return true
}

// CreateFailed returns to rest; the caller surfaces the error.
func (m *Machine) CreateFailed() bool {
	if !m.creating {
		return false
	}
	m.creating = false
	m.reset()
	return true
}

// IdeaSaved closes the composer after the idea persisted.
func (m *Machine) IdeaSaved() bool {
	if m.state != StateAwaitingIdea {
		return false
	}
	m.reset()
	return true
}

// SkipIdea discards the idea draft but keeps the underline; an underline
// with zero ideas is valid and intentional.
func (m *Machine) SkipIdea() bool {
	if m.state != StateAwaitingIdea {
		return false
	}
	m.reset()
	return true
}

// TapExisting opens the menu over an already-persisted underline. Revisits
// never pass through the confirm bubble.
func (m *Machine) TapExisting(u underline.Underline) bool {
	if m.creating {
		return false
	}
	switch m.state {
	case StateIdle, StateSelecting, StateConfirming, StateExistingSelected, StateIdeaListOpen:
		m.state = StateExistingSelected
		m.text = u.Text
		m.address = u.Address
		m.underlineID = u.ID
		m.ideaCount = u.IdeaCount
		m.ideas = nil
		return true
	default:
		return false
	}
}

// IdeasLoaded opens the idea-list popup with the fetched thread. The popup
// and the bubble are mutually exclusive; opening one closes the other.
func (m *Machine) IdeasLoaded(ideas []underline.Idea) bool {
	if m.state != StateExistingSelected {
		return false
	}
	m.state = StateIdeaListOpen
	m.ideas = append([]underline.Idea(nil), ideas...)
	m.ideaCount = len(m.ideas)
	return true
}

// IdeaListChanged refreshes the open popup after thread CRUD.
func (m *Machine) IdeaListChanged(ideas []underline.Idea) bool {
	if m.state != StateIdeaListOpen {
		return false
	}
	m.ideas = append([]underline.Idea(nil), ideas...)
	m.ideaCount = len(m.ideas)
	return true
}

// UnderlineDeleted closes any surface referencing the deleted underline.
func (m *Machine) UnderlineDeleted(underlineID string) bool {
	if m.underlineID != underlineID {
		return false
	}
	switch m.state {
	case StateAwaitingIdea, StateExistingSelected, StateIdeaListOpen:
		m.reset()
		return true
	default:
		return false
	}
}

// Dismiss returns to rest: explicit cancel, click-outside, or document
// navigation. A create already sent stays in flight; its eventual outcome is
// applied to the store silently and no longer touches the UI, and no second
// create can start until it resolves.
func (m *Machine) Dismiss() {
	m.reset()
}

func (m *Machine) reset() {
	m.state = StateIdle
	m.text = ""
	m.address = anchor.Address{}
	m.underlineID = ""
	m.ideaCount = 0
	m.ideas = nil
}
