package underline

import (
	"context"
	"errors"
	"testing"
)

func TestIdeaCountStaysConsistentAcrossThreadMutations(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil, "doc-1")
	ideas := NewIdeas(backend, store)
	ctx := context.Background()

	created, err := store.Create(ctx, "gravity", paragraphAddr(12, 19))
	if err != nil {
		t.Fatalf("create underline failed: %v", err)
	}

	first, err := ideas.Create(ctx, created.ID, "check this")
	if err != nil {
		t.Fatalf("create idea failed: %v", err)
	}
	second, err := ideas.Create(ctx, created.ID, "compare with chapter 3")
	if err != nil {
		t.Fatalf("create second idea failed: %v", err)
	}

	assertCountMatchesThread := func() {
		t.Helper()
		thread, err := ideas.List(ctx, created.ID)
		if err != nil {
			t.Fatalf("list ideas failed: %v", err)
		}
		got, _ := store.Get(created.ID)
		if got.IdeaCount != len(thread) {
			t.Fatalf("ideaCount %d diverged from thread length %d", got.IdeaCount, len(thread))
		}
	}
	assertCountMatchesThread()

	if _, err := ideas.Update(ctx, first.ID, "check this against the errata"); err != nil {
		t.Fatalf("update idea failed: %v", err)
	}
	assertCountMatchesThread()

	if err := ideas.Delete(ctx, created.ID, second.ID); err != nil {
		t.Fatalf("delete idea failed: %v", err)
	}
	assertCountMatchesThread()

	if err := ideas.Delete(ctx, created.ID, first.ID); err != nil {
		t.Fatalf("delete last idea failed: %v", err)
	}
	got, _ := store.Get(created.ID)
	if got.IdeaCount != 0 {
		t.Fatalf("empty thread should leave ideaCount 0, got %d", got.IdeaCount)
	}
}

func TestIdeaLifecycleScenario(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil, "doc-1")
	ideas := NewIdeas(backend, store)
	ctx := context.Background()

	created, err := store.Create(ctx, "gravity", paragraphAddr(12, 19))
	if err != nil {
		t.Fatalf("create underline failed: %v", err)
	}
	if created.IdeaCount != 0 {
		t.Fatalf("fresh underline should start at ideaCount 0, got %d", created.IdeaCount)
	}

	idea, err := ideas.Create(ctx, created.ID, "check this")
	if err != nil {
		t.Fatalf("create idea failed: %v", err)
	}
	if got, _ := store.Get(created.ID); got.IdeaCount != 1 {
		t.Fatalf("ideaCount after create = %d, want 1", got.IdeaCount)
	}

	if err := ideas.Delete(ctx, created.ID, idea.ID); err != nil {
		t.Fatalf("delete idea failed: %v", err)
	}
	if got, _ := store.Get(created.ID); got.IdeaCount != 0 {
		t.Fatalf("ideaCount after delete = %d, want 0", got.IdeaCount)
	}

	if err := store.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete underline failed: %v", err)
	}
	if got := len(store.List()); got != 0 {
		t.Fatalf("deleted underline still listed (%d records)", got)
	}
}

func TestIdeasRejectEmptyContent(t *testing.T) {
	backend := newFakeBackend()
	store := NewStore(backend, nil, "doc-1")
	ideas := NewIdeas(backend, store)
	ctx := context.Background()

	if _, err := ideas.Create(ctx, "u-1", "  \n"); !errors.Is(err, ErrValidation) {
		t.Fatalf("create: expected ErrValidation, got %v", err)
	}
	if _, err := ideas.Update(ctx, "i-1", ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("update: expected ErrValidation, got %v", err)
	}
}

func TestIdeasRequireAuthenticationBeforeNetwork(t *testing.T) {
	backend := newFakeBackend()
	backend.authenticated = false
	backend.ideaErr = errors.New("network should not be reached")
	store := NewStore(backend, nil, "doc-1")
	ideas := NewIdeas(backend, store)
	ctx := context.Background()

	if _, err := ideas.List(ctx, "u-1"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("list: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := ideas.Create(ctx, "u-1", "note"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("create: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := ideas.Update(ctx, "i-1", "note"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("update: expected ErrUnauthenticated, got %v", err)
	}
	if err := ideas.Delete(ctx, "u-1", "i-1"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("delete: expected ErrUnauthenticated, got %v", err)
	}
}
