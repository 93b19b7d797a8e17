package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/logan676/bookpost/internal/anchor"
	"github.com/logan676/bookpost/internal/annotate"
	"github.com/logan676/bookpost/internal/highlight"
	"github.com/logan676/bookpost/internal/meaning"
	"github.com/logan676/bookpost/internal/reader"
	"github.com/logan676/bookpost/internal/underline"
)

// Config wires runtime options into the TUI program.
type Config struct {
	DocumentID string
	Variant    Variant
	Book       *reader.Book
	PDF        *reader.PDFDocument
	Store      *underline.Store
	Ideas      *underline.Ideas
	Meaning    meaning.Client
	ReadOnly   bool
	// QuietPeriod overrides the selection settle delay; zero keeps the default.
	QuietPeriod time.Duration
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	composer := textinput.New()
	composer.CharLimit = composerCharLimit
	composer.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	m := &model{
		config:           config,
		stage:            stageLoading,
		mode:             modeNormal,
		machine:          annotate.NewMachine(),
		debounce:         annotate.NewDebouncer(config.QuietPeriod),
		jobs:             newJobBus(),
		composer:         composer,
		spinner:          spin,
		viewport:         vp,
		focusedUnderline: -1,
		viewportDirty:    true,
		infoMessage:      "Loading your underlines…",
	}
	m.rebuildLayout()
	return m
}

type composerContext int

const (
	composerIdle composerContext = iota
	composerFirstIdea
	composerAddIdea
	composerEditIdea
)

type model struct {
	config Config
	stage  stage
	mode   interactionMode

	machine  *annotate.Machine
	debounce *annotate.Debouncer
	jobs     *jobBus

	composer textinput.Model
	spinner  spinner.Model
	viewport viewport.Model

	chapter int
	page    int
	layout  *reader.ChapterLayout
	reflow  *reader.ReflowLayout
	pdfPage reader.Page

	cursorLine      int
	selectionAnchor int
	selectionActive bool

	geometries []highlight.Geometry

	focusedUnderline int

	ideaCursor    int
	composerFor   composerContext
	editingIdeaID string

	meaningText    string
	meaningLoading bool

	offline       bool
	helpVisible   bool
	viewportDirty bool
	infoMessage   string
	errorMessage  string
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		m.jobs.Start(jobKindLoad, loadUnderlinesJob(m.config.Store)),
	)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.stage == stageLoading || m.meaningLoading || m.machine.CreateInFlight() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	case jobSignalMsg:
		return m, nil
	case jobResultEnvelope:
		if msg.Payload == nil {
			return m, nil
		}
		return m.Update(msg.Payload)
	case annotate.SettledMsg:
		return m.handleSettled(msg)
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	case tea.MouseMsg:
		if m.stage == stageReading && m.mode == modeNormal {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		return m, nil
	case tea.WindowSizeMsg:
		newWidth := msg.Width - viewportHorizontalPadding
		if newWidth < minViewportWidth {
			newWidth = minViewportWidth
		}
		m.viewport.Width = newWidth
		height := msg.Height - 8
		if height < 5 {
			height = 5
		}
		m.viewport.Height = height
		m.rebuildLayout()
		m.recompute()
		return m, nil
	case underlinesLoadedMsg:
		return m.handleUnderlinesLoaded(msg)
	case underlineCreatedMsg:
		return m.handleUnderlineCreated(msg)
	case underlineDeletedMsg:
		return m.handleUnderlineDeleted(msg)
	case ideasLoadedMsg:
		return m.handleIdeasLoaded(msg)
	case ideaSavedMsg:
		return m.handleIdeaSaved(msg)
	case ideaThreadChangedMsg:
		return m.handleIdeaThreadChanged(msg)
	case meaningResultMsg:
		if msg.documentID != m.config.DocumentID {
			return m, nil
		}
		m.meaningLoading = false
		if msg.err != nil {
			m.errorMessage = fmt.Sprintf("meaning error: %v", msg.err)
			return m, nil
		}
		m.meaningText = msg.explanation
		m.errorMessage = ""
		return m, nil
	}
	return m, nil
}

func (m *model) handleUnderlinesLoaded(msg underlinesLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.documentID != m.config.DocumentID {
		return m, nil
	}
	m.stage = stageReading
	m.offline = msg.offline
	switch {
	case msg.err != nil:
		m.errorMessage = fmt.Sprintf("couldn't load underlines: %v", msg.err)
		m.infoMessage = "Reading without annotations. Press R to retry."
	case msg.offline:
		m.infoMessage = "Offline: showing your last synced underlines (read-only)."
	default:
		m.infoMessage = "Press v to start a selection, Tab to visit an underline, ? for help."
	}
	m.recompute()
	return m, nil
}

func (m *model) handleUnderlineCreated(msg underlineCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.documentID != m.config.DocumentID {
		return m, nil
	}
	if msg.err != nil {
		m.machine.CreateFailed()
		m.selectionActive = false
		m.mode = modeNormal
		m.markViewportDirty()
		switch {
		case errors.Is(msg.err, underline.ErrValidation):
			m.infoMessage = "That selection can't be underlined."
		case errors.Is(msg.err, underline.ErrUnauthenticated):
			m.infoMessage = "Sign in to keep underlines."
		default:
			m.errorMessage = fmt.Sprintf("underline not saved: %v", msg.err)
			m.infoMessage = "Your text is unchanged; try again with u."
		}
		return m, nil
	}
	if !m.machine.CreateSucceeded(msg.created.ID) {
		// Dismissed while in flight; the store kept the record, just redraw.
		m.recompute()
		return m, nil
	}
	m.selectionActive = false
	m.mode = modeInsert
	m.composerFor = composerFirstIdea
	m.composer.Placeholder = "Write your first idea, or Esc to skip…"
	m.composer.SetValue("")
	m.composer.Focus()
	m.infoMessage = "Underlined. Capture an idea while it's fresh?"
	m.errorMessage = ""
	m.recompute()
	return m, nil
}

func (m *model) handleUnderlineDeleted(msg underlineDeletedMsg) (tea.Model, tea.Cmd) {
	if msg.documentID != m.config.DocumentID {
		return m, nil
	}
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("delete failed: %v", msg.err)
		m.infoMessage = "The underline is still there."
		return m, nil
	}
	m.machine.UnderlineDeleted(msg.underlineID)
	m.focusedUnderline = -1
	m.errorMessage = ""
	m.infoMessage = "Underline removed along with its ideas."
	m.recompute()
	return m, nil
}

func (m *model) handleIdeasLoaded(msg ideasLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.documentID != m.config.DocumentID || msg.underlineID != m.machine.UnderlineID() {
		return m, nil
	}
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("couldn't open ideas: %v", msg.err)
		return m, nil
	}
	if m.machine.IdeasLoaded(msg.ideas) {
		m.ideaCursor = 0
		m.errorMessage = ""
	}
	return m, nil
}

func (m *model) handleIdeaSaved(msg ideaSavedMsg) (tea.Model, tea.Cmd) {
	if msg.documentID != m.config.DocumentID {
		return m, nil
	}
	if msg.err != nil {
		if errors.Is(msg.err, underline.ErrValidation) {
			m.infoMessage = "Ideas need some content."
		} else {
			m.errorMessage = fmt.Sprintf("idea not saved: %v", msg.err)
			m.infoMessage = "The underline is safe; retry or Esc to skip."
		}
		if m.composerFor == composerFirstIdea {
			m.composer.Focus()
		}
		return m, nil
	}
	m.machine.IdeaSaved()
	m.closeComposer()
	m.infoMessage = "Idea saved."
	m.errorMessage = ""
	m.recompute()
	return m, nil
}

func (m *model) handleIdeaThreadChanged(msg ideaThreadChangedMsg) (tea.Model, tea.Cmd) {
	if msg.documentID != m.config.DocumentID || msg.underlineID != m.machine.UnderlineID() {
		return m, nil
	}
	if msg.err != nil {
		m.errorMessage = fmt.Sprintf("idea list out of date: %v", msg.err)
		return m, nil
	}
	m.machine.IdeaListChanged(msg.ideas)
	if m.ideaCursor >= len(msg.ideas) {
		m.ideaCursor = len(msg.ideas) - 1
	}
	if m.ideaCursor < 0 {
		m.ideaCursor = 0
	}
	m.errorMessage = ""
	m.recompute()
	return m, nil
}

// handleSettled fires when a selection has held still for the quiet period.
// Only the live debounce generation settles; superseded timers are noise.
func (m *model) handleSettled(msg annotate.SettledMsg) (tea.Model, tea.Cmd) {
	if !m.debounce.Settled(msg) {
		return m, nil
	}
	if m.mode != modeHighlight || !m.selectionActive {
		return m, nil
	}
	text, addr, ok := m.resolveSelection()
	if !ok {
		// The selection doesn't resolve to an anchor; keep the visual
		// selection and stay quiet.
		return m, nil
	}
	if m.machine.Select(text, addr) && m.machine.Settle() {
		m.infoMessage = "u underline  •  m meaning  •  Esc cancel"
		m.markViewportDirty()
	}
	return m, nil
}

// resolveSelection converts the current row selection into a durable address
// using the scheme of the active variant.
func (m *model) resolveSelection() (string, anchor.Address, bool) {
	start, end, ok := m.selectionRange()
	if !ok {
		return "", anchor.Address{}, false
	}
	switch m.config.Variant {
	case VariantParagraph:
		text, paragraph, ok := m.layout.SelectionText(start, end)
		if !ok {
			return "", anchor.Address{}, false
		}
		container, ok := m.layout.ParagraphText(paragraph)
		if !ok {
			return "", anchor.Address{}, false
		}
		addr, err := anchor.ResolveParagraph(m.chapter, paragraph, container, text)
		if err != nil {
			return "", anchor.Address{}, false
		}
		return text, addr, true
	case VariantPage:
		text, ok := m.pdfPage.SelectionText(start, end)
		if !ok {
			return "", anchor.Address{}, false
		}
		addr, err := anchor.ResolvePage(m.pdfPage.Number, m.pdfPage.Text, text)
		if err != nil {
			return "", anchor.Address{}, false
		}
		return text, addr, true
	case VariantReflow:
		rangeID, text, ok := m.reflow.MintRange(start, end)
		if !ok {
			return "", anchor.Address{}, false
		}
		addr, err := anchor.ResolveReflow(rangeID)
		if err != nil {
			return "", anchor.Address{}, false
		}
		return text, addr, true
	}
	return "", anchor.Address{}, false
}

func (m *model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.stage == stageLoading {
		return m, nil
	}
	if m.mode == modeInsert {
		return m.handleComposerKey(key)
	}
	switch m.machine.State() {
	case annotate.StateIdeaListOpen:
		return m.handleIdeaListKey(key)
	case annotate.StateExistingSelected:
		return m.handleExistingKey(key)
	case annotate.StateConfirming:
		if next, cmd, handled := m.handleConfirmKey(key); handled {
			return next, cmd
		}
	}
	return m.handleReadingKey(key)
}

func (m *model) handleComposerKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.Type {
	case tea.KeyEsc:
		if m.composerFor == composerFirstIdea {
			m.machine.SkipIdea()
			m.infoMessage = "Underline kept without an idea."
		}
		m.closeComposer()
		m.markViewportDirty()
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.composer.Value())
		if value == "" {
			m.infoMessage = "Write something, or press Esc to skip."
			return m, nil
		}
		underlineID := m.machine.UnderlineID()
		switch m.composerFor {
		case composerFirstIdea:
			m.infoMessage = "Saving idea…"
			m.composer.Blur()
			return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindIdea,
				saveFirstIdeaJob(m.config.Ideas, m.config.DocumentID, underlineID, value)))
		case composerAddIdea:
			m.closeComposer()
			return m, m.jobs.Start(jobKindIdea, ideaThreadJob(m.config.Ideas, m.config.DocumentID, underlineID,
				func(ctx context.Context) error {
					_, err := m.config.Ideas.Create(ctx, underlineID, value)
					return err
				}))
		case composerEditIdea:
			ideaID := m.editingIdeaID
			m.closeComposer()
			return m, m.jobs.Start(jobKindIdea, ideaThreadJob(m.config.Ideas, m.config.DocumentID, underlineID,
				func(ctx context.Context) error {
					_, err := m.config.Ideas.Update(ctx, ideaID, value)
					return err
				}))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.composer, cmd = m.composer.Update(key)
	return m, cmd
}

func (m *model) handleConfirmKey(key tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	switch key.String() {
	case "u":
		if m.config.ReadOnly || m.offline {
			m.infoMessage = "Sign in (and get back online) to keep underlines."
			return m, nil, true
		}
		if !m.machine.RequestUnderline() {
			return m, nil, true
		}
		m.infoMessage = "Saving underline…"
		text, addr := m.machine.Text(), m.machine.Address()
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindUnderline,
			createUnderlineJob(m.config.Store, text, addr))), true
	case "m":
		cmd := m.explainSelectionCmd(m.machine.Text())
		m.machine.Dismiss()
		m.selectionActive = false
		m.mode = modeNormal
		m.markViewportDirty()
		return m, cmd, true
	case "esc":
		m.machine.Dismiss()
		m.debounce.Cancel()
		m.selectionActive = false
		m.mode = modeNormal
		m.infoMessage = "Selection dismissed."
		m.markViewportDirty()
		return m, nil, true
	}
	// Movement keys fall through: moving the cursor starts a fresh selection
	// that replaces the pending one on its own settle.
	return m, nil, false
}

func (m *model) handleExistingKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "i":
		underlineID := m.machine.UnderlineID()
		m.infoMessage = "Opening ideas…"
		return m, m.jobs.Start(jobKindIdea, listIdeasJob(m.config.Ideas, m.config.DocumentID, underlineID))
	case "m":
		return m, m.explainSelectionCmd(m.machine.Text())
	case "d":
		underlineID := m.machine.UnderlineID()
		m.infoMessage = "Removing underline…"
		return m, m.jobs.Start(jobKindUnderline, deleteUnderlineJob(m.config.Store, underlineID))
	case "tab":
		m.focusNextUnderline(1)
		return m, nil
	case "esc":
		m.machine.Dismiss()
		m.focusedUnderline = -1
		m.markViewportDirty()
		return m, nil
	}
	return m, nil
}

func (m *model) handleIdeaListKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	ideas := m.machine.Ideas()
	underlineID := m.machine.UnderlineID()
	switch key.String() {
	case "j", "down":
		if m.ideaCursor < len(ideas)-1 {
			m.ideaCursor++
		}
	case "k", "up":
		if m.ideaCursor > 0 {
			m.ideaCursor--
		}
	case "a":
		m.openComposer(composerAddIdea, "", "Add an idea to this underline…")
	case "e":
		if m.ideaCursor < len(ideas) {
			idea := ideas[m.ideaCursor]
			m.editingIdeaID = idea.ID
			m.openComposer(composerEditIdea, idea.Content, "Edit the idea and press Enter…")
		}
	case "x":
		if m.ideaCursor < len(ideas) {
			ideaID := ideas[m.ideaCursor].ID
			return m, m.jobs.Start(jobKindIdea, ideaThreadJob(m.config.Ideas, m.config.DocumentID, underlineID,
				func(ctx context.Context) error {
					return m.config.Ideas.Delete(ctx, underlineID, ideaID)
				}))
		}
	case "D":
		m.infoMessage = "Removing underline…"
		return m, m.jobs.Start(jobKindUnderline, deleteUnderlineJob(m.config.Store, underlineID))
	case "esc":
		m.machine.Dismiss()
		m.focusedUnderline = -1
		m.markViewportDirty()
	}
	return m, nil
}

func (m *model) handleReadingKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key.String() {
	case "up", "k":
		return m, m.moveCursor(-1)
	case "down", "j":
		return m, m.moveCursor(1)
	case "v":
		m.toggleHighlightMode()
		return m, nil
	case "tab":
		m.focusNextUnderline(1)
		return m, nil
	case "shift+tab":
		m.focusNextUnderline(-1)
		return m, nil
	case "]":
		m.navigate(1)
		return m, nil
	case "[":
		m.navigate(-1)
		return m, nil
	case "g":
		m.cursorLine = 0
		m.viewport.SetYOffset(0)
		m.markViewportDirty()
		return m, nil
	case "G":
		if count := m.rowCount(); count > 0 {
			m.cursorLine = count - 1
		}
		m.viewport.GotoBottom()
		m.markViewportDirty()
		return m, nil
	case "R":
		m.infoMessage = "Reloading underlines…"
		return m, tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindLoad, loadUnderlinesJob(m.config.Store)))
	case "M":
		m.meaningText = ""
		m.markViewportDirty()
		return m, nil
	case "?":
		m.helpVisible = !m.helpVisible
		m.markViewportDirty()
		return m, nil
	case "esc":
		if m.mode == modeHighlight {
			m.mode = modeNormal
			m.selectionActive = false
			m.debounce.Cancel()
			m.machine.Dismiss()
			m.infoMessage = "Highlight mode disabled."
			m.markViewportDirty()
			return m, nil
		}
		return m, tea.Quit
	case "q":
		if m.mode == modeNormal {
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(key)
	return m, cmd
}

// moveCursor shifts the reading cursor. In highlight mode every move extends
// the live selection and re-arms the settle timer, so the bubble only appears
// once the drag pauses.
func (m *model) moveCursor(delta int) tea.Cmd {
	count := m.rowCount()
	if count == 0 {
		return nil
	}
	target := m.cursorLine + delta
	if target < 0 {
		target = 0
	}
	if target >= count {
		target = count - 1
	}
	m.cursorLine = target
	m.markViewportDirty()
	m.ensureCursorVisible()
	if m.mode == modeHighlight && m.selectionActive {
		return m.debounce.Reset()
	}
	return nil
}

func (m *model) toggleHighlightMode() {
	switch m.mode {
	case modeHighlight:
		m.mode = modeNormal
		m.selectionActive = false
		m.debounce.Cancel()
		m.machine.Dismiss()
		m.infoMessage = "Highlight mode disabled."
	default:
		if m.rowCount() == 0 {
			return
		}
		m.mode = modeHighlight
		m.selectionAnchor = m.cursorLine
		m.selectionActive = true
		m.infoMessage = "Move to expand the selection; pause to see actions."
	}
	m.markViewportDirty()
}

// focusNextUnderline cycles through the underlines visible in the current
// view and opens the menu over the focused one. Revisits skip the confirm
// bubble entirely.
func (m *model) focusNextUnderline(delta int) {
	if len(m.geometries) == 0 {
		m.infoMessage = "No underlines in view."
		return
	}
	m.focusedUnderline += delta
	if m.focusedUnderline >= len(m.geometries) {
		m.focusedUnderline = 0
	}
	if m.focusedUnderline < 0 {
		m.focusedUnderline = len(m.geometries) - 1
	}
	id := m.geometries[m.focusedUnderline].UnderlineID
	u, ok := m.config.Store.Get(id)
	if !ok {
		return
	}
	m.debounce.Cancel()
	m.selectionActive = false
	m.mode = modeNormal
	if m.machine.TapExisting(u) {
		m.infoMessage = "i ideas  •  m meaning  •  d delete  •  Esc close"
		m.markViewportDirty()
	}
}

// navigate moves between chapters or pages. Navigation is a dismissal: any
// open bubble or pending settle dies with the old view.
func (m *model) navigate(delta int) {
	m.machine.Dismiss()
	m.debounce.Cancel()
	m.selectionActive = false
	m.mode = modeNormal
	m.focusedUnderline = -1
	m.cursorLine = 0
	m.viewport.SetYOffset(0)
	switch m.config.Variant {
	case VariantParagraph, VariantReflow:
		next := m.chapter + delta
		if next < 0 || next >= len(m.config.Book.Chapters) {
			m.infoMessage = "No more chapters that way."
			return
		}
		m.chapter = next
	case VariantPage:
		pages := m.config.PDF.Pages
		idx := m.pageIndex() + delta
		if idx < 0 || idx >= len(pages) {
			m.infoMessage = "No more pages that way."
			return
		}
		m.page = pages[idx].Number
	}
	m.rebuildLayout()
	m.recompute()
	m.infoMessage = ""
}

func (m *model) pageIndex() int {
	for i, page := range m.config.PDF.Pages {
		if page.Number == m.page {
			return i
		}
	}
	return 0
}

// rebuildLayout re-renders the current region at the viewport width. The
// reflow layout keeps resolving old range ids after this because the chapter
// text itself never changes.
func (m *model) rebuildLayout() {
	width := m.viewport.Width
	switch m.config.Variant {
	case VariantParagraph:
		if m.config.Book == nil {
			return
		}
		chapter, ok := m.config.Book.Chapter(m.chapter)
		if !ok {
			return
		}
		m.layout = reader.LayoutChapter(m.chapter, chapter.Paragraphs, width)
	case VariantReflow:
		if m.config.Book == nil {
			return
		}
		chapter, ok := m.config.Book.Chapter(m.chapter)
		if !ok {
			return
		}
		m.reflow = reader.NewReflowLayout(m.chapter, chapter.Paragraphs, width)
	case VariantPage:
		if m.config.PDF == nil || len(m.config.PDF.Pages) == 0 {
			return
		}
		if m.page == 0 {
			m.page = m.config.PDF.Pages[0].Number
		}
		if page, ok := m.config.PDF.Page(m.page); ok {
			m.pdfPage = page
		}
	}
	if count := m.rowCount(); m.cursorLine >= count && count > 0 {
		m.cursorLine = count - 1
	}
	m.markViewportDirty()
}

// recompute derives overlay geometry from the confirmed collection and the
// current view. It runs after anything that can move text or change the
// collection; running it redundantly is harmless.
func (m *model) recompute() {
	m.geometries = highlight.Compute(m.config.Store.List(), m.currentView())
	if m.focusedUnderline >= len(m.geometries) {
		m.focusedUnderline = -1
	}
	m.markViewportDirty()
}

func (m *model) currentView() highlight.View {
	switch m.config.Variant {
	case VariantParagraph:
		if m.layout == nil {
			return highlight.View{Kind: anchor.KindParagraph, Chapter: m.chapter}
		}
		return m.layout.View()
	case VariantPage:
		return m.pdfPage.View()
	case VariantReflow:
		if m.reflow == nil {
			return highlight.View{Kind: anchor.KindReflow, Chapter: m.chapter}
		}
		return m.reflow.View()
	}
	return highlight.View{}
}

func (m *model) rowCount() int {
	switch m.config.Variant {
	case VariantParagraph:
		if m.layout == nil {
			return 0
		}
		return m.layout.RowCount()
	case VariantPage:
		return len(m.pdfPage.Rows)
	case VariantReflow:
		if m.reflow == nil {
			return 0
		}
		return m.reflow.RowCount()
	}
	return 0
}

func (m *model) rowText(row int) string {
	switch m.config.Variant {
	case VariantParagraph:
		return m.layout.RowText(row)
	case VariantPage:
		if row < 0 || row >= len(m.pdfPage.Rows) {
			return ""
		}
		return m.pdfPage.Rows[row]
	case VariantReflow:
		return m.reflow.RowText(row)
	}
	return ""
}

func (m *model) selectionRange() (int, int, bool) {
	if !m.selectionActive || m.rowCount() == 0 {
		return 0, 0, false
	}
	start, end := m.selectionAnchor, m.cursorLine
	if start > end {
		start, end = end, start
	}
	return start, end, true
}

// surroundingText gives the meaning panel enough context around the
// selection without shipping the whole document.
func (m *model) surroundingText() string {
	switch m.config.Variant {
	case VariantParagraph:
		if m.layout == nil {
			return ""
		}
		return strings.Join(m.layout.Paragraphs, " ")
	case VariantPage:
		return m.pdfPage.Text
	case VariantReflow:
		if m.reflow == nil {
			return ""
		}
		return m.reflow.Text()
	}
	return ""
}

func (m *model) explainSelectionCmd(selection string) tea.Cmd {
	if m.config.Meaning == nil {
		m.infoMessage = "Connect Ollama to look up meanings."
		return nil
	}
	if strings.TrimSpace(selection) == "" {
		return nil
	}
	m.meaningLoading = true
	m.meaningText = ""
	m.infoMessage = fmt.Sprintf("Asking %s…", m.config.Meaning.Name())
	return tea.Batch(m.spinner.Tick, m.jobs.Start(jobKindMeaning,
		explainJob(m.config.Meaning, m.config.DocumentID, selection, m.surroundingText())))
}

func (m *model) openComposer(ctx composerContext, prefill, placeholder string) {
	m.mode = modeInsert
	m.composerFor = ctx
	m.composer.Placeholder = placeholder
	m.composer.SetValue(prefill)
	m.composer.Focus()
	m.markViewportDirty()
}

func (m *model) closeComposer() {
	m.mode = modeNormal
	m.composerFor = composerIdle
	m.editingIdeaID = ""
	m.composer.SetValue("")
	m.composer.Blur()
}

func (m *model) ensureCursorVisible() {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	if m.cursorLine < top {
		m.viewport.SetYOffset(m.cursorLine)
	} else if m.cursorLine > bottom {
		m.viewport.SetYOffset(m.cursorLine - m.viewport.Height + 1)
	}
}

func (m *model) markViewportDirty() {
	m.viewportDirty = true
}
