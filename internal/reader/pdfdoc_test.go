package reader

import (
	"testing"

	"github.com/ledongthuc/pdf"
)

func fragment(s string, x, y, w float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: w, FontSize: 12}
}

func TestAssemblePageOrdersRowsTopDown(t *testing.T) {
	// PDF extractors emit fragments in content-stream order, not reading
	// order; the bottom row arrives first here.
	page := assemblePage(1, []pdf.Text{
		fragment("second row", 72, 100, 60),
		fragment("first", 72, 200, 30),
		fragment("row", 110, 200, 20),
	})
	if len(page.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d: %v", len(page.Rows), page.Rows)
	}
	if page.Rows[0] != "first row" || page.Rows[1] != "second row" {
		t.Fatalf("rows out of reading order: %v", page.Rows)
	}
	if page.Text != "first row second row" {
		t.Fatalf("unexpected page text: %q", page.Text)
	}
}

func TestAssemblePageRunOffsetsIndexPageText(t *testing.T) {
	page := assemblePage(3, []pdf.Text{
		fragment("alpha beta", 72, 300, 70),
		fragment("gamma delta", 72, 280, 75),
	})
	for _, run := range page.Runs {
		if got := page.Text[run.Start : run.Start+len(run.Text)]; got != run.Text {
			t.Fatalf("run start %d does not recover %q (got %q)", run.Start, run.Text, got)
		}
	}
	view := page.View()
	if len(view.Containers) != 1 || view.Containers[0].Page != 3 {
		t.Fatalf("unexpected view containers: %+v", view.Containers)
	}
}

func TestAssemblePageInsertsWordGaps(t *testing.T) {
	// Two fragments with a visible horizontal gap are separate words even
	// when neither carries whitespace.
	page := assemblePage(1, []pdf.Text{
		fragment("Hello", 72, 100, 30),
		fragment("world", 112, 100, 30),
	})
	if page.Text != "Hello world" {
		t.Fatalf("gap should become a space, got %q", page.Text)
	}

	// Touching fragments are one word split across font changes.
	page = assemblePage(1, []pdf.Text{
		fragment("Hel", 72, 100, 18),
		fragment("lo", 90, 100, 12),
	})
	if page.Text != "Hello" {
		t.Fatalf("touching fragments should join, got %q", page.Text)
	}
}

func TestAssemblePageToleratesBaselineJitter(t *testing.T) {
	page := assemblePage(1, []pdf.Text{
		fragment("same", 72, 100.0, 28),
		fragment("row", 110, 101.4, 20),
	})
	if len(page.Rows) != 1 || page.Rows[0] != "same row" {
		t.Fatalf("jittered baselines should share a row: %v", page.Rows)
	}
}

func TestAssemblePageDropsWhitespaceFragments(t *testing.T) {
	page := assemblePage(1, []pdf.Text{
		fragment("  ", 72, 100, 10),
		fragment("text", 90, 100, 25),
	})
	if page.Text != "text" {
		t.Fatalf("whitespace-only fragments should vanish, got %q", page.Text)
	}
}

func TestPageSelectionText(t *testing.T) {
	page := assemblePage(1, []pdf.Text{
		fragment("line one", 72, 300, 50),
		fragment("line two", 72, 280, 50),
		fragment("line three", 72, 260, 60),
	})
	text, ok := page.SelectionText(1, 2)
	if !ok || text != "line two line three" {
		t.Fatalf("unexpected selection: %q ok=%v", text, ok)
	}
	if text, _ := page.SelectionText(2, 1); text != "line two line three" {
		t.Fatalf("inverted bounds should normalize, got %q", text)
	}
}

func TestPDFDocumentPageLookup(t *testing.T) {
	doc := &PDFDocument{Pages: []Page{
		assemblePage(1, []pdf.Text{fragment("one", 72, 100, 20)}),
		assemblePage(4, []pdf.Text{fragment("four", 72, 100, 25)}),
	}}
	if doc.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", doc.PageCount())
	}
	page, ok := doc.Page(4)
	if !ok || page.Text != "four" {
		t.Fatalf("page 4 lookup failed: %+v ok=%v", page, ok)
	}
	if _, ok := doc.Page(2); ok {
		t.Fatal("page 2 should be absent")
	}
}
