// Package anchor converts ephemeral text selections into durable, re-locatable
// document addresses. An address survives reflow, pagination, and reopening a
// document because it is expressed against whitespace-normalized text rather
// than any particular rendering.
package anchor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Kind discriminates the address variants, one per renderer family.
type Kind string

const (
	// KindParagraph addresses reflow-to-plain-text renderers: chapter index,
	// paragraph index, and offsets into the paragraph's normalized text.
	KindParagraph Kind = "paragraph"
	// KindPage addresses fixed-layout text layers: page number and offsets
	// into the page's concatenated run text.
	KindPage Kind = "page"
	// KindReflow wraps a renderer-native range locator. The engine never
	// inspects it; re-resolution is delegated to the renderer.
	KindReflow Kind = "reflow"
)

var (
	// ErrEmptySelection reports a selection that is empty after trimming.
	ErrEmptySelection = errors.New("anchor: selection is empty")
	// ErrNoMatch reports that the normalized selection does not occur in the
	// normalized container text. Callers treat this as "no anchor": better to
	// produce no underline than a wrong one.
	ErrNoMatch = errors.New("anchor: selection not found in container")
	// ErrInvalidAddress reports malformed or inverted address bounds.
	ErrInvalidAddress = errors.New("anchor: invalid address")
)

var whitespaceRuns = regexp.MustCompile(`\s+`)

// Normalize collapses every run of whitespace to a single space and trims the
// ends. Offsets stored in addresses always index into normalized text so that
// formatting and wrapping variation cannot shift an anchor.
func Normalize(s string) string {
	return whitespaceRuns.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Address describes where a span of text lives in a document. Exactly one
// variant's fields are meaningful, per Kind. Offsets are byte bounds into the
// container's normalized text, half-open [Start, End).
type Address struct {
	Kind      Kind   `json:"kind"`
	Chapter   int    `json:"chapter,omitempty"`
	Paragraph int    `json:"paragraph,omitempty"`
	Page      int    `json:"page,omitempty"`
	Start     int    `json:"start,omitempty"`
	End       int    `json:"end,omitempty"`
	RangeID   string `json:"rangeId,omitempty"`
}

// Validate checks structural invariants before an address is persisted.
func (a Address) Validate() error {
	switch a.Kind {
	case KindParagraph:
		if a.Chapter < 0 || a.Paragraph < 0 {
			return fmt.Errorf("%w: negative chapter or paragraph index", ErrInvalidAddress)
		}
	case KindPage:
		if a.Page < 1 {
			return fmt.Errorf("%w: page numbers start at 1", ErrInvalidAddress)
		}
	case KindReflow:
		if strings.TrimSpace(a.RangeID) == "" {
			return fmt.Errorf("%w: empty range id", ErrInvalidAddress)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAddress, a.Kind)
	}
	if a.Start < 0 || a.End <= a.Start {
		return fmt.Errorf("%w: offsets [%d, %d) are inverted or negative", ErrInvalidAddress, a.Start, a.End)
	}
	return nil
}

// ResolveParagraph anchors a selection inside one paragraph of a reflow-text
// document. Both the selection and the full paragraph text are normalized and
// the first occurrence of the selection wins; repeated phrases therefore
// always anchor to the earliest equal span.
func ResolveParagraph(chapter, paragraph int, container, selection string) (Address, error) {
	start, end, err := matchOffsets(container, selection)
	if err != nil {
		return Address{}, err
	}
	return Address{
		Kind:      KindParagraph,
		Chapter:   chapter,
		Paragraph: paragraph,
		Start:     start,
		End:       end,
	}, nil
}

// ResolvePage anchors a selection inside the concatenated text-run string of
// a fixed-layout page. Matching follows the same first-occurrence policy as
// ResolveParagraph.
func ResolvePage(page int, pageText, selection string) (Address, error) {
	start, end, err := matchOffsets(pageText, selection)
	if err != nil {
		return Address{}, err
	}
	return Address{
		Kind:  KindPage,
		Page:  page,
		Start: start,
		End:   end,
	}, nil
}

// ResolveReflow captures a renderer-native range locator verbatim. No text
// matching happens here; the renderer owns re-resolution.
func ResolveReflow(rangeID string) (Address, error) {
	if strings.TrimSpace(rangeID) == "" {
		return Address{}, ErrEmptySelection
	}
	return Address{Kind: KindReflow, RangeID: rangeID}, nil
}

func matchOffsets(container, selection string) (int, int, error) {
	needle := Normalize(selection)
	if needle == "" {
		return 0, 0, ErrEmptySelection
	}
	haystack := Normalize(container)
	idx := strings.Index(haystack, needle)
	if idx < 0 {
		return 0, 0, ErrNoMatch
	}
	return idx, idx + len(needle), nil
}

// Slice returns the normalized container substring an offset pair denotes.
// Underline records must carry exactly this text at creation time; the
// equality is the integrity check used on reload and migration.
func Slice(container string, start, end int) (string, error) {
	normalized := Normalize(container)
	if start < 0 || end < start || end > len(normalized) {
		return "", fmt.Errorf("%w: offsets [%d, %d) out of range for container of %d bytes",
			ErrInvalidAddress, start, end, len(normalized))
	}
	return normalized[start:end], nil
}
