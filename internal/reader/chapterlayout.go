package reader

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"

	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/highlight"
)

// Line is one rendered row of a chapter. Separator rows between paragraphs
// carry Paragraph == -1.
type Line struct {
	Paragraph int
	Start     int // byte offset into the paragraph's normalized text
	Text      string
}

// ChapterLayout is the rendered form of one chapter at one width, for the
// paragraph-offset renderer variant. Rebuilt on every resize or navigation.
type ChapterLayout struct {
	Chapter    int
	Paragraphs []string // normalized paragraph texts
	Lines      []Line
}

// LayoutChapter wraps each paragraph of a chapter to the given width.
func LayoutChapter(chapterIdx int, paragraphs []string, width int) *ChapterLayout {
	if width < 1 {
		width = 1
	}
	layout := &ChapterLayout{Chapter: chapterIdx}
	for idx, paragraph := range paragraphs {
		normalized := anchor.Normalize(paragraph)
		layout.Paragraphs = append(layout.Paragraphs, normalized)
		if idx > 0 {
			layout.Lines = append(layout.Lines, Line{Paragraph: -1})
		}
		layout.Lines = append(layout.Lines, wrapParagraph(idx, normalized, width)...)
	}
	return layout
}

// wrapParagraph breaks normalized text at word boundaries and recovers each
// wrapped line's offset into the source text. Normalized text has single
// spaces only, so every wrapped line occurs verbatim at or after the cursor.
func wrapParagraph(paragraphIdx int, normalized string, width int) []Line {
	wrapped := wordwrap.String(normalized, width)
	var lines []Line
	cursor := 0
	for _, lineText := range strings.Split(wrapped, "\n") {
		lineText = strings.TrimSpace(lineText)
		if lineText == "" {
			continue
		}
		start := strings.Index(normalized[cursor:], lineText)
		if start < 0 {
			// Wrapping split inside a word longer than the width; fall back
			// to the cursor position.
			start = 0
		}
		start += cursor
		lines = append(lines, Line{Paragraph: paragraphIdx, Start: start, Text: lineText})
		cursor = start + len(lineText)
	}
	return lines
}

// View exposes the rendered runs for highlight computation: one container
// per paragraph, one run per rendered line, in cell coordinates.
func (l *ChapterLayout) View() highlight.View {
	byParagraph := map[int]*highlight.Container{}
	order := []int{}
	for row, line := range l.Lines {
		if line.Paragraph < 0 {
			continue
		}
		container, ok := byParagraph[line.Paragraph]
		if !ok {
			container = &highlight.Container{Paragraph: line.Paragraph}
			byParagraph[line.Paragraph] = container
			order = append(order, line.Paragraph)
		}
		container.Runs = append(container.Runs, highlight.Run{
			Start: line.Start,
			Text:  line.Text,
			Box: highlight.Rect{
				X: 0,
				Y: float64(row),
				W: float64(len([]rune(line.Text))),
				H: 1,
			},
		})
	}
	view := highlight.View{Kind: anchor.KindParagraph, Chapter: l.Chapter}
	for _, idx := range order {
		view.Containers = append(view.Containers, *byParagraph[idx])
	}
	return view
}

// SelectionText joins the rows between from and to (inclusive) into the
// selection string and reports which paragraph the selection starts in.
// Selections that touch nothing but separators report ok=false.
func (l *ChapterLayout) SelectionText(from, to int) (text string, paragraph int, ok bool) {
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if to >= len(l.Lines) {
		to = len(l.Lines) - 1
	}
	paragraph = -1
	var parts []string
	for i := from; i <= to && i >= 0; i++ {
		line := l.Lines[i]
		if line.Paragraph < 0 {
			continue
		}
		if paragraph < 0 {
			paragraph = line.Paragraph
		}
		parts = append(parts, line.Text)
	}
	if paragraph < 0 {
		return "", 0, false
	}
	return strings.Join(parts, " "), paragraph, true
}

// ParagraphText returns the normalized text of one paragraph.
func (l *ChapterLayout) ParagraphText(idx int) (string, bool) {
	if idx < 0 || idx >= len(l.Paragraphs) {
		return "", false
	}
	return l.Paragraphs[idx], true
}

// RowCount reports how many rendered rows the chapter occupies.
func (l *ChapterLayout) RowCount() int {
	return len(l.Lines)
}

// RowText returns the rendered text of one row; separator rows are empty.
func (l *ChapterLayout) RowText(row int) string {
	if row < 0 || row >= len(l.Lines) {
		return ""
	}
	return l.Lines[row].Text
}
