package reader

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/highlight"
)

// Range ids minted here look like "bp:<chapter>:<start>:<end>" where the
// offsets index the chapter's normalized text. The annotation engine treats
// them as opaque strings; only this layout can mint and resolve them.
const rangeIDPrefix = "bp"

type reflowLine struct {
	start int
	end   int
	text  string
}

// ReflowLayout renders a whole chapter as one reflowable text column. It is
// the renderer-native side of the reflow variant: it mints range ids for
// selections and answers range-to-rectangle queries after any re-wrap.
type ReflowLayout struct {
	chapter int
	text    string
	width   int
	lines   []reflowLine
}

// NewReflowLayout wraps the chapter's paragraphs to the given width. The
// chapter text (paragraphs joined by single spaces) is stable across widths,
// so range ids survive re-wrapping.
func NewReflowLayout(chapterIdx int, paragraphs []string, width int) *ReflowLayout {
	if width < 1 {
		width = 1
	}
	normalized := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		if text := anchor.Normalize(paragraph); text != "" {
			normalized = append(normalized, text)
		}
	}
	layout := &ReflowLayout{
		chapter: chapterIdx,
		text:    strings.Join(normalized, " "),
		width:   width,
	}
	cursor := 0
	for _, lineText := range strings.Split(wordwrap.String(layout.text, width), "\n") {
		lineText = strings.TrimSpace(lineText)
		if lineText == "" {
			continue
		}
		start := strings.Index(layout.text[cursor:], lineText)
		if start < 0 {
			start = 0
		}
		start += cursor
		layout.lines = append(layout.lines, reflowLine{start: start, end: start + len(lineText), text: lineText})
		cursor = start + len(lineText)
	}
	return layout
}

// Chapter reports which chapter this layout renders.
func (l *ReflowLayout) Chapter() int { return l.chapter }

// Text returns the chapter's normalized text.
func (l *ReflowLayout) Text() string { return l.text }

// RowCount reports the number of wrapped rows.
func (l *ReflowLayout) RowCount() int { return len(l.lines) }

// RowText returns one wrapped row.
func (l *ReflowLayout) RowText(row int) string {
	if row < 0 || row >= len(l.lines) {
		return ""
	}
	return l.lines[row].text
}

// MintRange produces the opaque locator for the rows between from and to
// (inclusive), plus the exact text the range denotes.
func (l *ReflowLayout) MintRange(from, to int) (rangeID, text string, ok bool) {
	if len(l.lines) == 0 {
		return "", "", false
	}
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if to >= len(l.lines) {
		to = len(l.lines) - 1
	}
	start := l.lines[from].start
	end := l.lines[to].end
	return fmt.Sprintf("%s:%d:%d:%d", rangeIDPrefix, l.chapter, start, end), l.text[start:end], true
}

// RectsFor answers the renderer's range-to-rectangle query for the current
// wrap. Ranges minted for another chapter, or offsets that no longer fit the
// chapter text, resolve to nothing: the underline renders off-screen with no
// error.
func (l *ReflowLayout) RectsFor(rangeID string) ([]highlight.Rect, bool) {
	var prefix string
	var chapter, start, end int
	if _, err := fmt.Sscanf(rangeID, "%2s:%d:%d:%d", &prefix, &chapter, &start, &end); err != nil {
		return nil, false
	}
	if prefix != rangeIDPrefix || chapter != l.chapter {
		return nil, false
	}
	if start < 0 || end <= start || end > len(l.text) {
		return nil, false
	}
	var rects []highlight.Rect
	for row, line := range l.lines {
		if line.start >= end || start >= line.end {
			continue
		}
		overlapStart := max(start, line.start)
		overlapEnd := min(end, line.end)
		rects = append(rects, highlight.Rect{
			X: float64(len([]rune(line.text[:overlapStart-line.start]))),
			Y: float64(row),
			W: float64(len([]rune(line.text[overlapStart-line.start : overlapEnd-line.start]))),
			H: 1,
		})
	}
	if len(rects) == 0 {
		return nil, false
	}
	return rects, true
}

// View exposes the layout as the reflow-mode render region.
func (l *ReflowLayout) View() highlight.View {
	return highlight.View{Kind: anchor.KindReflow, Chapter: l.chapter, Reflow: l}
}
