// Package tui is the interactive postings browser.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matheuskafuri/jobradar/internal/browser"
	"github.com/matheuskafuri/jobradar/internal/cycle"
	"github.com/matheuskafuri/jobradar/internal/digest"
	"github.com/matheuskafuri/jobradar/internal/job"
	"github.com/matheuskafuri/jobradar/internal/store"
)

const (
	queryTimeout = 10 * time.Second
	scanTimeout  = 5 * time.Minute
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeHome mode = iota
	modeNormal
	modeSearch
	modeFilter
	modeNote
	modeHelp
)

// Store is the part of *store.Store the browser uses.
type Store interface {
	List(ctx context.Context, opts store.QueryOpts) ([]job.Posting, error)
	SetHidden(ctx context.Context, hash string, hidden bool) error
	SetBookmarked(ctx context.Context, hash string, bookmarked bool) error
	SetNotes(ctx context.Context, hash, notes string) error
}

// Scanner runs one cycle; *cycle.Orchestrator satisfies it.
type Scanner interface {
	Run(ctx context.Context) (*cycle.Result, error)
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Store   Store
	Scanner Scanner // nil disables in-app scans
	Sources []string
	Since   time.Time
	// Digest rebuilds the home screen summary; nil hides it.
	Digest        func(ctx context.Context) (*digest.Digest, error)
	HighScore     float64
	BrowseMode    bool
	UpdateVersion string
}

type App struct {
	store    Store
	scanner  Scanner
	digestFn func(ctx context.Context) (*digest.Digest, error)

	postings []job.Posting
	cursor   int
	focus    focusPane
	mode     mode

	width  int
	height int

	searchInput textinput.Model
	noteInput   textinput.Model
	spinner     spinner.Model
	filterBar   filterBar

	digest        *digest.Digest
	refreshing    bool
	showHidden    bool
	since         time.Time
	highScore     float64
	previewScroll int
	currentDate   string
	updateVersion string
	message       string
	err           error
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search title, company, description..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	ni := textinput.New()
	ni.Placeholder = "Notes for this posting"
	ni.Prompt = searchPromptStyle.Render("note: ")
	ni.CharLimit = job.MaxNotesLen

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	startMode := modeHome
	if opts.BrowseMode || opts.Digest == nil {
		startMode = modeNormal
	}
	high := opts.HighScore
	if high <= 0 {
		high = 0.7
	}

	return &App{
		store:         opts.Store,
		scanner:       opts.Scanner,
		digestFn:      opts.Digest,
		since:         opts.Since,
		highScore:     high,
		filterBar:     newFilterBar(opts.Sources),
		searchInput:   ti,
		noteInput:     ni,
		spinner:       sp,
		currentDate:   time.Now().Format("Jan 2"),
		mode:          startMode,
		updateVersion: opts.UpdateVersion,
	}
}

func (a *App) Init() tea.Cmd {
	var cmds []tea.Cmd
	if a.mode == modeNormal {
		cmds = append(cmds, a.loadPostingsCmd())
	}
	if a.digestFn != nil {
		cmds = append(cmds, a.loadDigestCmd())
	}
	return tea.Batch(cmds...)
}

// loadPostingsCmd captures the query state now so later edits don't race
// with the running query.
func (a *App) loadPostingsCmd() tea.Cmd {
	opts := store.QueryOpts{
		Since:         a.since,
		Sources:       a.filterBar.activeSources(),
		Search:        a.searchInput.Value(),
		IncludeHidden: a.showHidden,
		OrderBy:       store.OrderScore,
	}
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		postings, err := st.List(ctx, opts)
		if err != nil {
			return errMsg{err: err}
		}
		return postingsLoadedMsg{postings: postings}
	}
}

type digestLoadedMsg struct {
	digest *digest.Digest
}

func (a *App) loadDigestCmd() tea.Cmd {
	fn := a.digestFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		d, err := fn(ctx)
		if err != nil {
			return errMsg{err: err}
		}
		return digestLoadedMsg{digest: d}
	}
}

func (a *App) doRefresh() tea.Cmd {
	sc := a.scanner
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		defer cancel()
		res, err := sc.Run(ctx)
		return refreshDoneMsg{result: res, err: err}
	}
}

func (a *App) setHiddenCmd(p job.Posting) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		if err := st.SetHidden(ctx, p.Hash, !p.Hidden); err != nil {
			return errMsg{err: err}
		}
		return postingUpdatedMsg{hash: p.Hash, hidden: !p.Hidden, bookmarked: p.Bookmarked, notes: p.Notes}
	}
}

func (a *App) setBookmarkedCmd(p job.Posting) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		if err := st.SetBookmarked(ctx, p.Hash, !p.Bookmarked); err != nil {
			return errMsg{err: err}
		}
		return postingUpdatedMsg{hash: p.Hash, hidden: p.Hidden, bookmarked: !p.Bookmarked, notes: p.Notes}
	}
}

func (a *App) setNotesCmd(p job.Posting, notes string) tea.Cmd {
	st := a.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
		defer cancel()
		if err := st.SetNotes(ctx, p.Hash, notes); err != nil {
			return errMsg{err: err}
		}
		return postingUpdatedMsg{hash: p.Hash, hidden: p.Hidden, bookmarked: p.Bookmarked, notes: notes}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return errMsg{err: err}
		}
		return nil
	}
}

func (a *App) selected() (job.Posting, bool) {
	if a.cursor < 0 || a.cursor >= len(a.postings) {
		return job.Posting{}, false
	}
	return a.postings[a.cursor], true
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// errors are sticky until the next keypress
		a.err = nil
		return a.handleKey(msg)

	case postingsLoadedMsg:
		a.postings = msg.postings
		a.filterBar.setSources(mergeSources(a.filterBar.sources, msg.postings))
		if a.cursor >= len(a.postings) {
			a.cursor = max(0, len(a.postings)-1)
		}
		return a, nil

	case digestLoadedMsg:
		a.digest = msg.digest
		return a, nil

	case postingUpdatedMsg:
		a.applyUpdate(msg)
		return a, nil

	case errMsg:
		a.err = msg.err
		return a, nil

	case refreshDoneMsg:
		a.refreshing = false
		if msg.err != nil {
			a.err = msg.err
		}
		if r := msg.result; r != nil {
			a.message = fmt.Sprintf("%d new · %d updated", r.New, r.Updated)
			if len(r.Errors) > 0 {
				a.message += fmt.Sprintf(" · %d errors", len(r.Errors))
			}
		}
		cmds := []tea.Cmd{a.loadPostingsCmd()}
		if a.digestFn != nil {
			cmds = append(cmds, a.loadDigestCmd())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

func (a *App) applyUpdate(msg postingUpdatedMsg) {
	i := slices.IndexFunc(a.postings, func(p job.Posting) bool { return p.Hash == msg.hash })
	if i < 0 {
		return
	}
	a.postings[i].Hidden = msg.hidden
	a.postings[i].Bookmarked = msg.bookmarked
	a.postings[i].Notes = msg.notes
	if msg.hidden && !a.showHidden {
		a.postings = slices.Delete(a.postings, i, i+1)
		if a.cursor >= len(a.postings) {
			a.cursor = max(0, len(a.postings)-1)
		}
		a.previewScroll = 0
	}
}

// mergeSources adds sources seen in postings to the configured tabs so
// postings from since-removed sources stay filterable.
func mergeSources(known []string, postings []job.Posting) []string {
	out := slices.Clone(known)
	for _, p := range postings {
		if p.Source != "" && !slices.Contains(out, p.Source) {
			out = append(out, p.Source)
		}
	}
	return out
}

func (a *App) startRefresh() tea.Cmd {
	if a.scanner == nil || a.refreshing {
		return nil
	}
	a.refreshing = true
	a.message = ""
	return tea.Batch(a.doRefresh(), a.spinner.Tick)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.mode {
	case modeHome:
		return a.handleHomeKey(msg)
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeFilter:
		return a.handleFilterKey(msg)
	case modeNote:
		return a.handleNoteKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.postings)-1 {
			a.cursor++
			a.previewScroll = 0
		} else if a.focus == focusPreview {
			a.previewScroll++
		}
		return a, nil
	case "k", "up":
		if a.focus == focusList && a.cursor > 0 {
			a.cursor--
			a.previewScroll = 0
		} else if a.focus == focusPreview && a.previewScroll > 0 {
			a.previewScroll--
		}
		return a, nil
	case "tab":
		if a.focus == focusList {
			a.focus = focusPreview
		} else {
			a.focus = focusList
		}
		return a, nil
	case "o", "enter":
		if p, ok := a.selected(); ok {
			return a, openBrowserCmd(p.URL)
		}
		return a, nil
	case "x":
		if p, ok := a.selected(); ok {
			return a, a.setHiddenCmd(p)
		}
		return a, nil
	case "b":
		if p, ok := a.selected(); ok {
			return a, a.setBookmarkedCmd(p)
		}
		return a, nil
	case "n":
		if p, ok := a.selected(); ok {
			a.mode = modeNote
			a.noteInput.SetValue(p.Notes)
			a.noteInput.CursorEnd()
			return a, a.noteInput.Focus()
		}
		return a, nil
	case "g":
		a.showHidden = !a.showHidden
		return a, a.loadPostingsCmd()
	case "/":
		a.mode = modeSearch
		return a, a.searchInput.Focus()
	case "f":
		a.mode = modeFilter
		a.filterBar.filterMode = true
		return a, nil
	case "r":
		return a, a.startRefresh()
	case "h":
		if a.digestFn != nil {
			a.mode = modeHome
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k := msg.String(); k {
	case "e", "enter":
		a.mode = modeNormal
		return a, a.loadPostingsCmd()
	case "r":
		return a, a.startRefresh()
	case "q":
		return a, tea.Quit
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(k[0] - '1')
		if a.digest != nil && idx < len(a.digest.Top) {
			return a, openBrowserCmd(a.digest.Top[idx].URL)
		}
	}
	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		return a, a.loadPostingsCmd()
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.cursor = 0
		return a, a.loadPostingsCmd()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) handleNoteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.noteInput.Blur()
		return a, nil
	case "enter":
		a.mode = modeNormal
		a.noteInput.Blur()
		if p, ok := a.selected(); ok {
			return a, a.setNotesCmd(p, strings.TrimSpace(a.noteInput.Value()))
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.noteInput, cmd = a.noteInput.Update(msg)
	return a, cmd
}

func (a *App) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k := msg.String(); k {
	case "esc", "f":
		a.mode = modeNormal
		a.filterBar.filterMode = false
		return a, nil
	case "left", "h":
		a.filterBar.move(-1)
		return a, nil
	case "right", "l":
		a.filterBar.move(1)
		return a, nil
	case " ", "enter":
		a.filterBar.toggleCurrent()
		a.cursor = 0
		return a, a.loadPostingsCmd()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx := int(k[0] - '1')
		if idx < len(a.filterBar.sources) {
			a.filterBar.toggle(a.filterBar.sources[idx])
			a.cursor = 0
			return a, a.loadPostingsCmd()
		}
	}
	return a, nil
}

func (a *App) withBottomBar(content, hints string) string {
	bar := renderBottomBar(hints, a.width)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  jobradar")
	}

	if a.mode == modeHome {
		hints := "e browse  r scan  q quit"
		if a.refreshing {
			hints = a.spinner.View() + " scanning...  " + hints
		}
		if a.err != nil {
			hints = a.err.Error() + "  " + hints
		}
		return a.withBottomBar(renderHomeScreen(a.digest, a.width, a.height, a.highScore, a.updateVersion), hints)
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	contentHeight := max(a.height-3-4, 3) // header, filter, status, borders
	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1

	headerLeft := headerStyle.Render("jobradar")
	headerRight := headerDateStyle.Render(a.currentDate)
	headerGap := max(a.width-lipgloss.Width(headerLeft)-lipgloss.Width(headerRight), 0)
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.filterBar.render(a.width)
	switch a.mode {
	case modeSearch:
		filter = a.searchInput.View()
	case modeNote:
		filter = a.noteInput.View()
	}

	listContent := renderList(a.postings, a.cursor, contentHeight, listWidth-4, a.highScore)
	listPane := paneStyle(a.focus == focusList).Width(listWidth - 2).Height(contentHeight).Render(listContent)

	var sel *job.Posting
	if p, ok := a.selected(); ok {
		sel = &p
	}
	previewContent := renderPreview(sel, previewWidth-4, contentHeight, a.previewScroll)
	previewPane := paneStyle(a.focus == focusPreview).Width(previewWidth - 2).Height(contentHeight).Render(previewContent)

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(statusInfo{
		count:       len(a.postings),
		filterLabel: a.filterBar.activeLabel(),
		showHidden:  a.showHidden,
		searching:   a.mode == modeSearch,
		editing:     a.mode == modeNote,
		refreshing:  a.refreshing,
		message:     a.message,
	}, a.width)
	if a.refreshing {
		status = a.spinner.View() + " " + status
	}
	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("jobradar")
	dim := helpDimStyle

	help := title + dim.Render(" keyboard shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Move through postings\n" +
		"  tab           Switch focus between list and preview\n\n" +
		dim.Render("Postings") + "\n" +
		"  o, enter      Open posting in browser\n" +
		"  x             Hide / unhide posting\n" +
		"  b             Bookmark / unbookmark posting\n" +
		"  n             Edit notes\n" +
		"  g             Show hidden postings\n\n" +
		dim.Render("Finding") + "\n" +
		"  /             Search postings\n" +
		"  f             Source filter mode\n" +
		"  r             Scan sources now\n\n" +
		dim.Render("General") + "\n" +
		"  h             Home screen\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, helpCardStyle.Render(help))
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
