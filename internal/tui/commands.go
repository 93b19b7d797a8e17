package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/meaning"
	"github.com/logan676/bookpost/internal/underline"
)

const apiJobTimeout = 15 * time.Second

type underlinesLoadedMsg struct {
	documentID string
	offline    bool
	err        error
}

type underlineCreatedMsg struct {
	documentID string
	created    underline.Underline
	err        error
}

type underlineDeletedMsg struct {
	documentID  string
	underlineID string
	err         error
}

type ideasLoadedMsg struct {
	documentID  string
	underlineID string
	ideas       []underline.Idea
	err         error
}

type ideaSavedMsg struct {
	documentID  string
	underlineID string
	err         error
}

// ideaThreadChangedMsg carries the refreshed thread after popup CRUD so the
// open idea list and the badge stay consistent.
type ideaThreadChangedMsg struct {
	documentID  string
	underlineID string
	ideas       []underline.Idea
	err         error
}

type meaningResultMsg struct {
	documentID  string
	explanation string
	err         error
}

func loadUnderlinesJob(store *underline.Store) jobRunner {
	documentID := store.DocumentID()
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, apiJobTimeout)
		defer cancel()
		err := store.Load(ctx)
		return underlinesLoadedMsg{documentID: documentID, offline: store.Offline(), err: err}, err
	}
}

func createUnderlineJob(store *underline.Store, text string, addr anchor.Address) jobRunner {
	documentID := store.DocumentID()
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, apiJobTimeout)
		defer cancel()
		created, err := store.Create(ctx, text, addr)
		return underlineCreatedMsg{documentID: documentID, created: created, err: err}, err
	}
}

func deleteUnderlineJob(store *underline.Store, underlineID string) jobRunner {
	documentID := store.DocumentID()
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, apiJobTimeout)
		defer cancel()
		err := store.Delete(ctx, underlineID)
		return underlineDeletedMsg{documentID: documentID, underlineID: underlineID, err: err}, err
	}
}

func listIdeasJob(ideas *underline.Ideas, documentID, underlineID string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, apiJobTimeout)
		defer cancel()
		thread, err := ideas.List(ctx, underlineID)
		return ideasLoadedMsg{documentID: documentID, underlineID: underlineID, ideas: thread, err: err}, err
	}
}

func saveFirstIdeaJob(ideas *underline.Ideas, documentID, underlineID, content string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, apiJobTimeout)
		defer cancel()
		_, err := ideas.Create(ctx, underlineID, content)
		return ideaSavedMsg{documentID: documentID, underlineID: underlineID, err: err}, err
	}
}

type ideaMutation func(ctx context.Context) error

// ideaThreadJob applies one mutation against the thread and re-lists it, so
// the popup always renders the server's ordering.
func ideaThreadJob(ideas *underline.Ideas, documentID, underlineID string, mutate ideaMutation) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, apiJobTimeout)
		defer cancel()
		if mutate != nil {
			if err := mutate(ctx); err != nil {
				return ideaThreadChangedMsg{documentID: documentID, underlineID: underlineID, err: err}, err
			}
		}
		thread, err := ideas.List(ctx, underlineID)
		return ideaThreadChangedMsg{documentID: documentID, underlineID: underlineID, ideas: thread, err: err}, err
	}
}

func explainJob(client meaning.Client, documentID, selection, surrounding string) jobRunner {
	return func(parent context.Context) (tea.Msg, error) {
		ctx, cancel := context.WithTimeout(parent, 2*time.Minute)
		defer cancel()
		explanation, err := client.Explain(ctx, selection, surrounding)
		return meaningResultMsg{documentID: documentID, explanation: explanation, err: err}, err
	}
}
