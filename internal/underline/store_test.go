package underline

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/logan676/bookpost/internal/anchor"
)

type fakeBackend struct {
	authenticated bool
	listErr       error
	createErr     error
	deleteErr     error
	ideaErr       error

	nextID     int
	underlines map[string]Underline
	ideas      map[string][]Idea
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		authenticated: true,
		underlines:    map[string]Underline{},
		ideas:         map[string][]Idea{},
	}
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) Authenticated() bool { return f.authenticated }

func (f *fakeBackend) ListUnderlines(ctx context.Context, documentID string) ([]Underline, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []Underline
	for _, u := range f.underlines {
		if u.DocumentID == documentID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeBackend) CreateUnderline(ctx context.Context, documentID, text string, addr anchor.Address) (Underline, error) {
	if f.createErr != nil {
		return Underline{}, f.createErr
	}
	u := Underline{
		ID:         f.id("u"),
		DocumentID: documentID,
		Text:       text,
		Address:    addr,
		CreatedAt:  time.Now(),
	}
	f.underlines[u.ID] = u
	return u, nil
}

func (f *fakeBackend) DeleteUnderline(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.underlines, id)
	delete(f.ideas, id)
	return nil
}

func (f *fakeBackend) ListIdeas(ctx context.Context, underlineID string) ([]Idea, error) {
	if f.ideaErr != nil {
		return nil, f.ideaErr
	}
	return append([]Idea(nil), f.ideas[underlineID]...), nil
}

func (f *fakeBackend) CreateIdea(ctx context.Context, underlineID, content string) (Idea, error) {
	if f.ideaErr != nil {
		return Idea{}, f.ideaErr
	}
	idea := Idea{ID: f.id("i"), UnderlineID: underlineID, Content: content, CreatedAt: time.Now()}
	f.ideas[underlineID] = append(f.ideas[underlineID], idea)
	return idea, nil
}

func (f *fakeBackend) UpdateIdea(ctx context.Context, id, content string) (Idea, error) {
	if f.ideaErr != nil {
		return Idea{}, f.ideaErr
	}
	for underlineID, thread := range f.ideas {
		for i, idea := range thread {
			if idea.ID == id {
				thread[i].Content = content
				return thread[i], nil
			}
		}
		_ = underlineID
	}
	return Idea{}, errors.New("fake: idea not found")
}

func (f *fakeBackend) DeleteIdea(ctx context.Context, id string) error {
	if f.ideaErr != nil {
		return f.ideaErr
	}
	for underlineID, thread := range f.ideas {
		for i, idea := range thread {
			if idea.ID == id {
				f.ideas[underlineID] = append(thread[:i], thread[i+1:]...)
				return nil
			}
		}
	}
	return errors.New("fake: idea not found")
}

type memorySnapshots struct {
	saved map[string][]Underline
}

func (m *memorySnapshots) Save(documentID string, underlines []Underline) error {
	if m.saved == nil {
		m.saved = map[string][]Underline{}
	}
	m.saved[documentID] = append([]Underline(nil), underlines...)
	return nil
}

func (m *memorySnapshots) Load(documentID string) ([]Underline, error) {
	list, ok := m.saved[documentID]
	if !ok {
		return nil, errors.New("no snapshot")
	}
	return append([]Underline(nil), list...), nil
}

func paragraphAddr(start, end int) anchor.Address {
	return anchor.Address{Kind: anchor.KindParagraph, Chapter: 0, Paragraph: 2, Start: start, End: end}
}

func TestStoreCreateAppendsWithZeroIdeas(t *testing.T) {
	store := NewStore(newFakeBackend(), nil, "doc-1")
	created, err := store.Create(context.Background(), "gravity", paragraphAddr(10, 17))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.IdeaCount != 0 {
		t.Fatalf("fresh underline should have ideaCount 0, got %d", created.IdeaCount)
	}
	list := store.List()
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("collection not updated: %+v", list)
	}
}

func TestStoreCreateValidatesBeforeNetwork(t *testing.T) {
	backend := newFakeBackend()
	backend.createErr = errors.New("network should not be reached")
	store := NewStore(backend, nil, "doc-1")

	if _, err := store.Create(context.Background(), "   ", paragraphAddr(0, 5)); !errors.Is(err, ErrValidation) {
		t.Fatalf("empty text: expected ErrValidation, got %v", err)
	}
	if _, err := store.Create(context.Background(), "text", paragraphAddr(9, 9)); !errors.Is(err, ErrValidation) {
		t.Fatalf("inverted bounds: expected ErrValidation, got %v", err)
	}
}

func TestStoreCreateFailureLeavesNoLocalRecord(t *testing.T) {
	backend := newFakeBackend()
	backend.createErr = errors.New("boom")
	store := NewStore(backend, nil, "doc-1")

	if _, err := store.Create(context.Background(), "text", paragraphAddr(0, 4)); err == nil {
		t.Fatal("expected create to fail")
	}
	if got := len(store.List()); got != 0 {
		t.Fatalf("failed create must not appear locally, found %d records", got)
	}
}

func TestStoreLoadUnauthenticatedIsEmpty(t *testing.T) {
	backend := newFakeBackend()
	backend.authenticated = false
	backend.listErr = errors.New("network should not be reached")
	store := NewStore(backend, nil, "doc-1")

	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("unauthenticated load should be a silent no-op, got %v", err)
	}
	if got := len(store.List()); got != 0 {
		t.Fatalf("expected empty collection, got %d", got)
	}
}

func TestStoreLoadFallsBackToSnapshot(t *testing.T) {
	backend := newFakeBackend()
	snapshots := &memorySnapshots{}
	store := NewStore(backend, snapshots, "doc-1")

	if _, err := store.Create(context.Background(), "cached text", paragraphAddr(0, 11)); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	backend.listErr = errors.New("api unreachable")
	reopened := NewStore(backend, snapshots, "doc-1")
	if err := reopened.Load(context.Background()); err != nil {
		t.Fatalf("load should fall back to snapshot, got %v", err)
	}
	if !reopened.Offline() {
		t.Fatal("snapshot-backed store should report offline")
	}
	list := reopened.List()
	if len(list) != 1 || list[0].Text != "cached text" {
		t.Fatalf("snapshot contents wrong: %+v", list)
	}
}

func TestStoreLoadPropagatesErrorWithoutSnapshot(t *testing.T) {
	backend := newFakeBackend()
	backend.listErr = errors.New("api unreachable")
	store := NewStore(backend, nil, "doc-1")
	if err := store.Load(context.Background()); err == nil {
		t.Fatal("expected load error when no snapshot exists")
	}
}

func TestStoreDeleteRemovesRecord(t *testing.T) {
	store := NewStore(newFakeBackend(), nil, "doc-1")
	created, err := store.Create(context.Background(), "text", paragraphAddr(0, 4))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok := store.Get(created.ID); ok {
		t.Fatal("deleted underline still listed")
	}
}

func TestStoreDeleteFailureLeavesRecord(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil, "doc-1")
	created, err := store.Create(context.Background(), "text", paragraphAddr(0, 4))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	backend.deleteErr = errors.New("boom")
	if err := store.Delete(context.Background(), created.ID); err == nil {
		t.Fatal("expected delete to fail")
	}
	if _, ok := store.Get(created.ID); !ok {
		t.Fatal("failed delete must leave the underline in place")
	}
}

func TestBumpIdeaCountNeverGoesNegative(t *testing.T) {
	store := NewStore(newFakeBackend(), nil, "doc-1")
	created, err := store.Create(context.Background(), "text", paragraphAddr(0, 4))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	// Simulated race: the same idea deletion applied twice.
	store.BumpIdeaCount(created.ID, 1)
	store.BumpIdeaCount(created.ID, -1)
	store.BumpIdeaCount(created.ID, -1)
	got, _ := store.Get(created.ID)
	if got.IdeaCount != 0 {
		t.Fatalf("ideaCount went negative: %d", got.IdeaCount)
	}
}
