package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/logan676/bookpost/internal/annotate"
	"github.com/logan676/bookpost/internal/highlight"
)

func (m *model) View() string {
	if m.stage == stageLoading {
		return m.frameWithHero(fmt.Sprintf("%s Loading your underlines…", m.spinner.View()))
	}
	m.refreshViewportIfDirty()
	parts := []string{m.heroView(), m.statusBarView(), m.viewport.View()}
	if panel := m.annotationPanel(); panel != "" {
		parts = append(parts, panel)
	}
	if panel := m.meaningPanel(); panel != "" {
		parts = append(parts, panel)
	}
	if m.errorMessage != "" {
		parts = append(parts, errorStyle.Render(m.errorMessage))
	}
	if m.infoMessage != "" {
		parts = append(parts, helperStyle.Render(m.infoMessage))
	}
	if m.helpVisible {
		parts = append(parts, m.helpView())
	}
	return joinNonEmpty(parts)
}

func (m *model) heroView() string {
	title := m.config.DocumentID
	if m.config.Book != nil {
		title = m.config.Book.Title
	} else if m.config.PDF != nil {
		title = m.config.PDF.Title
	}
	location := ""
	switch m.config.Variant {
	case VariantParagraph, VariantReflow:
		if m.config.Book != nil {
			if chapter, ok := m.config.Book.Chapter(m.chapter); ok {
				location = fmt.Sprintf("Chapter %d/%d · %s", m.chapter+1, len(m.config.Book.Chapters), chapter.Title)
			}
		}
	case VariantPage:
		if m.config.PDF != nil {
			location = fmt.Sprintf("Page %d of %d", m.page, m.config.PDF.PageCount())
		}
	}
	header := titleStyle.Render(title)
	if location != "" {
		header = lipgloss.JoinVertical(lipgloss.Left, header, subtitleStyle.Render(location))
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, taglineStyle.Render(heroTagline))
}

func (m *model) statusBarView() string {
	stats := []string{
		fmt.Sprintf("Mode %s", m.modeLabel()),
		fmt.Sprintf("Underlines %d", len(m.config.Store.List())),
	}
	if m.offline {
		stats = append(stats, "OFFLINE")
	}
	if m.config.ReadOnly {
		stats = append(stats, "Read-only")
	}
	if m.machine.CreateInFlight() {
		stats = append(stats, fmt.Sprintf("%s saving", m.spinner.View()))
	}
	if state := m.machine.State(); state != annotate.StateIdle {
		stats = append(stats, state.String())
	}
	return statusBarStyle.Render(strings.Join(stats, "  •  "))
}

func (m *model) modeLabel() string {
	switch m.mode {
	case modeInsert:
		return "INSERT"
	case modeHighlight:
		return "HIGHLIGHT"
	default:
		return "NORMAL"
	}
}

// annotationPanel renders whichever annotation surface is open: the confirm
// bubble, the menu over an existing underline, the idea composer, or the
// idea-list popup. At most one exists at a time.
func (m *model) annotationPanel() string {
	switch m.machine.State() {
	case annotate.StateConfirming:
		body := joinLines(
			selectionPreviewStyle.Render(previewText(m.machine.Text(), 120)),
			helperStyle.Render("u underline  •  m meaning  •  Esc cancel"),
		)
		return bubbleStyle.Render(body)
	case annotate.StateAwaitingIdea:
		body := joinLines(
			sectionHeaderStyle.Render("First idea"),
			m.composer.View(),
			helperStyle.Render("Enter to save · Esc to keep the underline without one"),
		)
		return bubbleStyle.Render(body)
	case annotate.StateExistingSelected:
		count := m.machine.IdeaCount()
		label := fmt.Sprintf("%d idea(s)", count)
		if count == 0 {
			label = "no ideas yet"
		}
		body := joinLines(
			selectionPreviewStyle.Render(previewText(m.machine.Text(), 120)),
			helperStyle.Render(label),
			helperStyle.Render("i ideas  •  m meaning  •  d delete  •  Tab next  •  Esc close"),
		)
		return bubbleStyle.Render(body)
	case annotate.StateIdeaListOpen:
		if m.mode == modeInsert {
			// Composer opened from the popup (add or edit).
			return bubbleStyle.Render(joinLines(
				sectionHeaderStyle.Render("Idea"),
				m.composer.View(),
				helperStyle.Render("Enter to save · Esc to cancel"),
			))
		}
		return m.ideaListPanel()
	}
	return ""
}

func (m *model) ideaListPanel() string {
	ideas := m.machine.Ideas()
	lines := []string{sectionHeaderStyle.Render(fmt.Sprintf("Ideas (%d)", len(ideas)))}
	if len(ideas) == 0 {
		lines = append(lines, helperStyle.Render("No ideas yet. Press a to add the first one."))
	}
	wrap := m.viewport.Width - 8
	if wrap < 20 {
		wrap = 20
	}
	for idx, idea := range ideas {
		marker := "  "
		body := wordwrap.String(idea.Content, wrap)
		if idx == m.ideaCursor {
			marker = "▸ "
			body = currentLineStyle.Render(body)
		}
		lines = append(lines, marker+strings.ReplaceAll(body, "\n", "\n  "))
	}
	lines = append(lines, helperStyle.Render("a add  •  e edit  •  x delete  •  D delete underline  •  Esc close"))
	return popupStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) meaningPanel() string {
	if m.meaningLoading {
		return meaningBoxStyle.Render(fmt.Sprintf("%s Looking up the meaning…", m.spinner.View()))
	}
	if strings.TrimSpace(m.meaningText) == "" {
		return ""
	}
	wrap := m.viewport.Width - 6
	if wrap < 20 {
		wrap = 20
	}
	body := joinLines(
		sectionHeaderStyle.Render("Meaning"),
		wordwrap.String(m.meaningText, wrap),
		helperStyle.Render("Press M to dismiss."),
	)
	return meaningBoxStyle.Render(body)
}

func (m *model) helpView() string {
	lines := []string{
		sectionHeaderStyle.Render("Keys"),
		helperStyle.Render("• j/k move, g/G jump, [ and ] change chapter or page."),
		helperStyle.Render("• v starts a selection; pause and press u to underline or m for meaning."),
		helperStyle.Render("• Tab visits underlines in view; i opens its ideas, d deletes it."),
		helperStyle.Render("• R reloads underlines from the server, Ctrl+C quits."),
	}
	return helpBoxStyle.Render(strings.Join(lines, "\n"))
}

func (m *model) refreshViewportIfDirty() {
	if !m.viewportDirty {
		return
	}
	m.viewport.SetContent(m.renderRows())
	m.viewportDirty = false
}

// renderRows draws the current region row by row, painting underline spans
// from the derived geometry and appending idea-count badges at each
// underline's trailing edge. Rows inside the live selection or under the
// cursor take the line style instead, so the selection always reads clearly.
func (m *model) renderRows() string {
	count := m.rowCount()
	if count == 0 {
		return helperStyle.Render("Nothing to read here.")
	}
	selStart, selEnd, hasSelection := m.selectionRange()
	spansByRow, badges := m.overlayByRow()

	var b strings.Builder
	for row := 0; row < count; row++ {
		text := m.rowText(row)
		inSelection := hasSelection && row >= selStart && row <= selEnd
		var line string
		switch {
		case row == m.cursorLine:
			line = currentLineStyle.Render(text)
		case inSelection:
			line = selectionLineStyle.Render(text)
		default:
			line = styleSpans(text, spansByRow[row])
		}
		if badge, ok := badges[row]; ok {
			line += " " + badge
		}
		b.WriteString(line)
		if row < count-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

type span struct {
	start   int // rune offset into the row
	width   int
	focused bool
}

// overlayByRow projects the geometry into per-row rune spans plus the badge
// strings keyed by the row they attach to.
func (m *model) overlayByRow() (map[int][]span, map[int]string) {
	spans := map[int][]span{}
	badges := map[int]string{}
	for idx, geometry := range m.geometries {
		focused := idx == m.focusedUnderline && m.machine.State() != annotate.StateIdle
		for _, rect := range geometry.Rects {
			row := int(rect.Y)
			spans[row] = append(spans[row], span{
				start:   int(rect.X),
				width:   int(rect.W),
				focused: focused,
			})
		}
		if u, ok := m.config.Store.Get(geometry.UnderlineID); ok && u.IdeaCount > 0 {
			badges[int(geometry.Badge.Y)] = badgeStyle.Render(fmt.Sprintf("[%d]", u.IdeaCount))
		}
	}
	return spans, badges
}

// styleSpans paints the underlined rune ranges of one row. Spans never
// overlap within a row; offset-scheme highlights cover whole rows and reflow
// highlights are minted from disjoint row ranges.
func styleSpans(text string, spans []span) string {
	if len(spans) == 0 {
		return text
	}
	runes := []rune(text)
	var b strings.Builder
	pos := 0
	for _, s := range orderedSpans(spans) {
		start, end := s.start, s.start+s.width
		if start < 0 {
			start = 0
		}
		if end > len(runes) {
			end = len(runes)
		}
		if start >= end || start < pos {
			continue
		}
		b.WriteString(string(runes[pos:start]))
		segment := string(runes[start:end])
		if s.focused {
			b.WriteString(focusedUnderlineStyle.Render(segment))
		} else {
			b.WriteString(underlineStyle.Render(segment))
		}
		pos = end
	}
	if pos < len(runes) {
		b.WriteString(string(runes[pos:]))
	}
	return b.String()
}

func orderedSpans(spans []span) []span {
	ordered := append([]span(nil), spans...)
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].start < ordered[j-1].start; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	return ordered
}

func (m *model) frameWithHero(body string) string {
	return joinNonEmpty([]string{m.heroView(), body})
}

func joinNonEmpty(parts []string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		filtered = append(filtered, part)
	}
	return strings.Join(filtered, "\n\n")
}

func joinLines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func previewText(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

// geometryForTest exposes the derived overlay to package tests.
func (m *model) geometryForTest() []highlight.Geometry {
	return append([]highlight.Geometry(nil), m.geometries...)
}

var (
	titleStyle            = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Underline(true)
	subtitleStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147"))
	sectionHeaderStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	errorStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	helperStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	taglineStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#908caa")).Italic(true)
	statusBarStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1)
	currentLineStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6"))
	selectionLineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe"))
	underlineStyle        = lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("#ffd166"))
	focusedUnderlineStyle = lipgloss.NewStyle().Underline(true).Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#ffd166"))
	badgeStyle            = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#a3be8c")).Padding(0, 1)
	selectionPreviewStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#e0def4"))
	bubbleStyle           = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1)
	popupStyle            = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Padding(1, 2)
	meaningBoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#8ecae6")).Padding(0, 1)
	helpBoxStyle          = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(1, 2)
)
