package tui

type stage int

const (
	stageLoading stage = iota
	stageReading
)

type interactionMode int

const (
	modeNormal interactionMode = iota
	modeHighlight
	modeInsert
)

// Variant selects which rendering pipeline the reader uses; the annotation
// engine adapts its addressing scheme to match.
type Variant int

const (
	// VariantParagraph renders a book chapter with paragraph-offset anchors.
	VariantParagraph Variant = iota
	// VariantPage renders a PDF text layer with page-offset anchors.
	VariantPage
	// VariantReflow renders a wrapped chapter column with opaque range ids.
	VariantReflow
)

const heroTagline = "Read, underline, and keep your ideas with BookPost."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	composerCharLimit         = 280
)
