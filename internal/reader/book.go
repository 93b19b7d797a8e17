// Package reader supplies the document side of the annotation engine: parsed
// chapters and pages, the rendered text runs for the current region, and the
// reflow layout that owns renderer-native range ids.
package reader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/logan676/bookpost/internal/anchor"
)

// Chapter is one addressable unit of a reflowable book.
type Chapter struct {
	Title      string
	Paragraphs []string
}

// Book is a plain-text or EPUB-extracted document split into chapters and
// paragraphs. Parsing stays deliberately dumb; the annotation engine only
// needs stable structure, not format fidelity.
type Book struct {
	Title    string
	Chapters []Chapter
}

// LoadBook reads a plain-text book from disk. Lines beginning with "# " open
// a new chapter; paragraphs are blank-line separated.
func LoadBook(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open book: %w", err)
	}
	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	book := ParseBook(title, string(data))
	if len(book.Chapters) == 0 {
		return nil, fmt.Errorf("reader: %s contains no text", path)
	}
	return book, nil
}

// ParseBook splits raw text into chapters and paragraphs.
func ParseBook(title, content string) *Book {
	book := &Book{Title: title}
	current := Chapter{Title: title}
	var paragraph []string

	flushParagraph := func() {
		if len(paragraph) == 0 {
			return
		}
		text := anchor.Normalize(strings.Join(paragraph, " "))
		if text != "" {
			current.Paragraphs = append(current.Paragraphs, text)
		}
		paragraph = nil
	}
	flushChapter := func() {
		flushParagraph()
		if len(current.Paragraphs) > 0 {
			book.Chapters = append(book.Chapters, current)
		}
	}

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			flushChapter()
			current = Chapter{Title: strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))}
			continue
		}
		if trimmed == "" {
			flushParagraph()
			continue
		}
		paragraph = append(paragraph, trimmed)
	}
	flushChapter()
	return book
}

// Chapter returns the chapter at index, if present.
func (b *Book) Chapter(idx int) (Chapter, bool) {
	if idx < 0 || idx >= len(b.Chapters) {
		return Chapter{}, false
	}
	return b.Chapters[idx], true
}
