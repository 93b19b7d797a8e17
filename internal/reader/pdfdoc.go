package reader

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/highlight"
)

// Page is the fixed-layout text layer of one PDF page: rendered rows, the
// concatenated run text anchors index into, and the cell-space runs the
// highlight renderer intersects.
type Page struct {
	Number int
	Text   string
	Rows   []string
	Runs   []highlight.Run
}

// PDFDocument is a fixed-layout document backed by a PDF text layer.
type PDFDocument struct {
	Title string
	Pages []Page
}

// LoadPDF extracts every page's text runs.
func LoadPDF(path string) (*PDFDocument, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reader: open pdf: %w", err)
	}
	defer file.Close()

	doc := &PDFDocument{Title: path}
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		doc.Pages = append(doc.Pages, assemblePage(i, page.Content().Text))
	}
	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("reader: %s has no extractable text", path)
	}
	return doc, nil
}

// PageCount reports the number of pages with a text layer.
func (d *PDFDocument) PageCount() int {
	return len(d.Pages)
}

// Page returns a page by its 1-based page number.
func (d *PDFDocument) Page(number int) (Page, bool) {
	for _, page := range d.Pages {
		if page.Number == number {
			return page, true
		}
	}
	return Page{}, false
}

// View exposes the page as the fixed-layout render region.
func (p Page) View() highlight.View {
	return highlight.View{
		Kind:       anchor.KindPage,
		Containers: []highlight.Container{{Page: p.Number, Runs: p.Runs}},
	}
}

// SelectionText joins the rows between from and to (inclusive).
func (p Page) SelectionText(from, to int) (string, bool) {
	if len(p.Rows) == 0 {
		return "", false
	}
	if from > to {
		from, to = to, from
	}
	if from < 0 {
		from = 0
	}
	if to >= len(p.Rows) {
		to = len(p.Rows) - 1
	}
	return strings.Join(p.Rows[from:to+1], " "), true
}

// assemblePage turns raw PDF text fragments into ordered rows and runs.
// Fragments sharing a baseline form one row; rows read top-down, fragments
// left-to-right. Each row becomes one run whose Start indexes the page's
// concatenated normalized text.
func assemblePage(number int, fragments []pdf.Text) Page {
	rows := groupRows(fragments)
	page := Page{Number: number}
	var pageText strings.Builder
	for rowIdx, rowText := range rows {
		if rowIdx > 0 {
			pageText.WriteString(" ")
		}
		start := pageText.Len()
		pageText.WriteString(rowText)
		page.Rows = append(page.Rows, rowText)
		page.Runs = append(page.Runs, highlight.Run{
			Start: start,
			Text:  rowText,
			Box: highlight.Rect{
				X: 0,
				Y: float64(rowIdx),
				W: float64(len([]rune(rowText))),
				H: 1,
			},
		})
	}
	page.Text = pageText.String()
	return page
}

func groupRows(fragments []pdf.Text) []string {
	type row struct {
		y         float64
		fragments []pdf.Text
	}
	var rows []*row
	const baselineTolerance = 2.0

	for _, fragment := range fragments {
		if strings.TrimSpace(fragment.S) == "" {
			continue
		}
		var target *row
		for _, candidate := range rows {
			if math.Abs(candidate.y-fragment.Y) <= baselineTolerance {
				target = candidate
				break
			}
		}
		if target == nil {
			target = &row{y: fragment.Y}
			rows = append(rows, target)
		}
		target.fragments = append(target.fragments, fragment)
	}

	// PDF origin is bottom-left: larger Y means higher on the page.
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	texts := make([]string, 0, len(rows))
	for _, r := range rows {
		sort.SliceStable(r.fragments, func(i, j int) bool { return r.fragments[i].X < r.fragments[j].X })
		var b strings.Builder
		var prev *pdf.Text
		for i := range r.fragments {
			fragment := r.fragments[i]
			if prev != nil && needsSpace(*prev, fragment) {
				b.WriteString(" ")
			}
			b.WriteString(fragment.S)
			prev = &r.fragments[i]
		}
		if text := anchor.Normalize(b.String()); text != "" {
			texts = append(texts, text)
		}
	}
	return texts
}

// needsSpace decides whether two adjacent fragments were separate words. A
// horizontal gap wider than a third of the font size is treated as a word
// break; extractors that already include trailing spaces are left alone.
func needsSpace(prev, next pdf.Text) bool {
	if strings.HasSuffix(prev.S, " ") || strings.HasPrefix(next.S, " ") {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	threshold := prev.FontSize / 3
	if threshold <= 0 {
		threshold = 1
	}
	return gap > threshold
}
