// Package underline holds the persisted annotation model: underline records
// bound to document anchors and the idea threads attached to them.
package underline

import (
	"context"
	"errors"
	"time"

	"github.com/logan676/bookpost/internal/anchor"
)

var (
	// ErrValidation reports input rejected before any network call is made:
	// empty text, empty idea content, or malformed address bounds.
	ErrValidation = errors.New("underline: validation failed")
	// ErrUnauthenticated reports a call that requires a signed-in user.
	// Annotation is a signed-in-only feature; readers without a credential
	// see documents without annotation affordances, never an error dialog.
	ErrUnauthenticated = errors.New("underline: not authenticated")
	// ErrNotFound reports an id unknown to the local collection.
	ErrNotFound = errors.New("underline: not found")
)

// Underline is a durable annotation: the exact selected text plus the anchor
// that re-locates it. Text must equal the normalized container substring the
// address denotes at creation time.
type Underline struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"documentId"`
	Text       string         `json:"text"`
	Address    anchor.Address `json:"address"`
	IdeaCount  int            `json:"ideaCount"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Idea is one note in the thread attached to an underline.
type Idea struct {
	ID          string    `json:"id"`
	UnderlineID string    `json:"underlineId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Backend is the Content API contract this engine consumes. The HTTP client
// in internal/api implements it; tests substitute an in-memory fake.
type Backend interface {
	// Authenticated reports whether a bearer credential is configured.
	Authenticated() bool
	ListUnderlines(ctx context.Context, documentID string) ([]Underline, error)
	CreateUnderline(ctx context.Context, documentID, text string, addr anchor.Address) (Underline, error)
	// DeleteUnderline cascades server-side: attached ideas are removed too.
	DeleteUnderline(ctx context.Context, id string) error
	ListIdeas(ctx context.Context, underlineID string) ([]Idea, error)
	CreateIdea(ctx context.Context, underlineID, content string) (Idea, error)
	UpdateIdea(ctx context.Context, id, content string) (Idea, error)
	DeleteIdea(ctx context.Context, id string) error
}

// Snapshotter persists a last-known copy of a document's underlines so they
// stay readable when the Content API is unreachable.
type Snapshotter interface {
	Save(documentID string, underlines []Underline) error
	Load(documentID string) ([]Underline, error)
}
