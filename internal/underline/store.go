package underline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/logan676/bookpost/internal/anchor"
)

// Store owns the ordered underline collection for one open document. It is
// the only mutator of that collection; the renderer and the interaction state
// machine read through List and never write, so every consumer derives from
// the same confirmed state.
type Store struct {
	mu         sync.Mutex
	backend    Backend
	snapshots  Snapshotter
	documentID string
	underlines []Underline
	offline    bool
}

// NewStore returns a store for the given document. snapshots may be nil when
// no local cache is configured.
func NewStore(backend Backend, snapshots Snapshotter, documentID string) *Store {
	return &Store{backend: backend, snapshots: snapshots, documentID: documentID}
}

// DocumentID reports which document this store serves.
func (s *Store) DocumentID() string {
	return s.documentID
}

// Load fetches the document's underlines. Unauthenticated readers get an
// empty collection and no error. When the API is unreachable the last local
// snapshot is served instead and the store switches to offline mode.
func (s *Store) Load(ctx context.Context) error {
	if !s.backend.Authenticated() {
		s.replace(nil, false)
		return nil
	}
	fetched, err := s.backend.ListUnderlines(ctx, s.documentID)
	if err != nil {
		if s.snapshots != nil {
			if cached, cacheErr := s.snapshots.Load(s.documentID); cacheErr == nil {
				s.replace(cached, true)
				return nil
			}
		}
		return err
	}
	s.replace(fetched, false)
	s.snapshot()
	return nil
}

// Offline reports whether the collection was served from the local snapshot.
// Offline collections are read-only; mutations still require the API.
func (s *Store) Offline() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

// List returns a copy of the collection in creation order.
func (s *Store) List() []Underline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Underline(nil), s.underlines...)
}

// Get looks up one underline by id.
func (s *Store) Get(id string) (Underline, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.underlines {
		if u.ID == id {
			return u, true
		}
	}
	return Underline{}, false
}

// Create validates and persists a new underline, then appends it to the local
// collection. Failed creates never appear in the collection.
func (s *Store) Create(ctx context.Context, text string, addr anchor.Address) (Underline, error) {
	if strings.TrimSpace(text) == "" {
		return Underline{}, fmt.Errorf("%w: underline text is empty", ErrValidation)
	}
	if err := addr.Validate(); err != nil {
		return Underline{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !s.backend.Authenticated() {
		return Underline{}, ErrUnauthenticated
	}
	created, err := s.backend.CreateUnderline(ctx, s.documentID, text, addr)
	if err != nil {
		return Underline{}, err
	}
	created.IdeaCount = 0
	s.mu.Lock()
	s.underlines = append(s.underlines, created)
	s.mu.Unlock()
	s.snapshot()
	return created, nil
}

// Delete removes an underline remotely and locally. The server cascades the
// delete to attached ideas. A failed delete leaves the record in place.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !s.backend.Authenticated() {
		return ErrUnauthenticated
	}
	if _, ok := s.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := s.backend.DeleteUnderline(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	kept := s.underlines[:0]
	for _, u := range s.underlines {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	s.underlines = kept
	s.mu.Unlock()
	s.snapshot()
	return nil
}

// BumpIdeaCount adjusts an underline's idea count locally after idea CRUD
// succeeds. The count never goes negative, even under a replayed decrement.
func (s *Store) BumpIdeaCount(id string, delta int) {
	s.mu.Lock()
	for i := range s.underlines {
		if s.underlines[i].ID != id {
			continue
		}
		next := s.underlines[i].IdeaCount + delta
		if next < 0 {
			next = 0
		}
		s.underlines[i].IdeaCount = next
		break
	}
	s.mu.Unlock()
	s.snapshot()
}

func (s *Store) replace(underlines []Underline, offline bool) {
	s.mu.Lock()
	s.underlines = append([]Underline(nil), underlines...)
	s.offline = offline
	s.mu.Unlock()
}

func (s *Store) snapshot() {
	if s.snapshots == nil {
		return
	}
	// Snapshot failures are non-fatal; the cache is best effort.
	_ = s.snapshots.Save(s.documentID, s.List())
}
