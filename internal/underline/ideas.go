package underline

import (
	"context"
	"fmt"
	"strings"
)

// Ideas manages the note thread attached to an underline. Every successful
// create or delete notifies the store so the owning underline's idea count
// stays consistent; edits are content-only and never touch the count.
type Ideas struct {
	backend Backend
	store   *Store
}

// NewIdeas wires the thread manager to its backend and the underline store.
func NewIdeas(backend Backend, store *Store) *Ideas {
	return &Ideas{backend: backend, store: store}
}

// List returns the ideas attached to an underline, oldest first.
func (m *Ideas) List(ctx context.Context, underlineID string) ([]Idea, error) {
	if !m.backend.Authenticated() {
		return nil, ErrUnauthenticated
	}
	return m.backend.ListIdeas(ctx, underlineID)
}

// Create appends a new idea to the thread and bumps the owning count.
func (m *Ideas) Create(ctx context.Context, underlineID, content string) (Idea, error) {
	if strings.TrimSpace(content) == "" {
		return Idea{}, fmt.Errorf("%w: idea content is empty", ErrValidation)
	}
	if !m.backend.Authenticated() {
		return Idea{}, ErrUnauthenticated
	}
	idea, err := m.backend.CreateIdea(ctx, underlineID, content)
	if err != nil {
		return Idea{}, err
	}
	m.store.BumpIdeaCount(underlineID, 1)
	return idea, nil
}

// Update rewrites an idea's content in place.
func (m *Ideas) Update(ctx context.Context, id, content string) (Idea, error) {
	if strings.TrimSpace(content) == "" {
		return Idea{}, fmt.Errorf("%w: idea content is empty", ErrValidation)
	}
	if !m.backend.Authenticated() {
		return Idea{}, ErrUnauthenticated
	}
	return m.backend.UpdateIdea(ctx, id, content)
}

// Delete removes one idea and decrements the owning count.
func (m *Ideas) Delete(ctx context.Context, underlineID, id string) error {
	if !m.backend.Authenticated() {
		return ErrUnauthenticated
	}
	if err := m.backend.DeleteIdea(ctx, id); err != nil {
		return err
	}
	m.store.BumpIdeaCount(underlineID, -1)
	return nil
}
