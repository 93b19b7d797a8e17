// Package highlight computes overlay geometry for underlines that fall inside
// the currently rendered region: the rectangles covering the addressed text
// plus a single anchor point for the idea-count badge. Geometry is derived
// state, recomputed on every reflow, navigation, or resize, and never stored.
package highlight

import (
	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/underline"
)

// Rect is a screen-space box in the renderer's coordinate system. The
// terminal renderer uses cell coordinates; nothing here depends on units.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Point marks where the idea-count badge is drawn.
type Point struct {
	X float64
	Y float64
}

// Geometry is the ephemeral overlay for one underline.
type Geometry struct {
	UnderlineID string
	Rects       []Rect
	Badge       Point
}

// Run is one rendered text run: its byte offset into the container's
// normalized text and its on-screen box.
type Run struct {
	Start int
	Text  string
	Box   Rect
}

// Container groups the runs of one addressable unit: a paragraph in reflow
// text mode or a page text layer in fixed mode.
type Container struct {
	Paragraph int
	Page      int
	Runs      []Run
}

// RangeResolver is the reflow renderer's native range-to-rectangle query.
// Range ids are opaque here; a renderer that cannot resolve one in the
// current view reports ok=false and the underline simply draws nothing.
type RangeResolver interface {
	RectsFor(rangeID string) ([]Rect, bool)
}

// View describes the currently rendered region.
type View struct {
	Kind       anchor.Kind
	Chapter    int
	Containers []Container
	Reflow     RangeResolver
}

// Compute derives overlay geometry for every underline visible in the view.
// It reads the collection and the view, mutates neither, and is safe to run
// redundantly; underlines addressed outside the view yield no geometry.
func Compute(underlines []underline.Underline, view View) []Geometry {
	geometries := make([]Geometry, 0, len(underlines))
	for _, u := range underlines {
		rects, ok := rectsFor(u, view)
		if !ok || len(rects) == 0 {
			continue
		}
		geometries = append(geometries, Geometry{
			UnderlineID: u.ID,
			Rects:       rects,
			Badge:       badgeFor(rects),
		})
	}
	return geometries
}

func rectsFor(u underline.Underline, view View) ([]Rect, bool) {
	addr := u.Address
	if addr.Kind != view.Kind {
		return nil, false
	}
	switch addr.Kind {
	case anchor.KindParagraph:
		if addr.Chapter != view.Chapter {
			return nil, false
		}
		for _, container := range view.Containers {
			if container.Paragraph == addr.Paragraph {
				return intersectRuns(container.Runs, addr.Start, addr.End), true
			}
		}
		return nil, false
	case anchor.KindPage:
		for _, container := range view.Containers {
			if container.Page == addr.Page {
				return intersectRuns(container.Runs, addr.Start, addr.End), true
			}
		}
		return nil, false
	case anchor.KindReflow:
		if view.Reflow == nil {
			return nil, false
		}
		return view.Reflow.RectsFor(addr.RangeID)
	default:
		return nil, false
	}
}

// intersectRuns marks every run whose [start, start+len) interval overlaps
// the addressed [start, end) span; the highlight is the union of those runs'
// boxes.
func intersectRuns(runs []Run, start, end int) []Rect {
	var rects []Rect
	for _, run := range runs {
		runEnd := run.Start + len(run.Text)
		if run.Start < end && start < runEnd {
			rects = append(rects, run.Box)
		}
	}
	return rects
}

// badgeFor places the idea-count badge at the trailing edge of the last
// rectangle.
func badgeFor(rects []Rect) Point {
	last := rects[len(rects)-1]
	return Point{X: last.X + last.W, Y: last.Y}
}
