// Package tui is an interactive terminal browser for the radar entries.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/browser"
	"github.com/cgrotz/cgrotz.github.io/internal/cache"
	"github.com/cgrotz/cgrotz.github.io/internal/config"
	"github.com/cgrotz/cgrotz.github.io/internal/content"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type focusPane int

const (
	focusList focusPane = iota
	focusPreview
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeHelp
)

// Store supplies cached records. *cache.Cache satisfies it.
type Store interface {
	GetRecords(opts cache.QueryOpts) ([]content.Record, error)
}

// RefreshFunc re-fetches all sources into the store and reports how many
// records were written.
type RefreshFunc func(ctx context.Context) (int, []error)

// item pairs a record with its classified radar entry.
type item struct {
	record content.Record
	entry  radar.Entry
}

type App struct {
	cfg     *config.Config
	db      Store
	refresh RefreshFunc
	items   []item
	cursor  int
	focus   focusPane
	mode    mode

	width  int
	height int

	searchInput textinput.Model
	spinner     spinner.Model
	quadrants   quadrantBar

	refreshing    bool
	since         time.Time
	previewScroll int
	err           error
}

// RunOpts holds all parameters for launching the TUI.
type RunOpts struct {
	Cfg     *config.Config
	DB      Store
	Since   time.Time
	Refresh RefreshFunc
}

func NewApp(opts RunOpts) *App {
	ti := textinput.New()
	ti.Placeholder = "Search entries..."
	ti.Prompt = searchPromptStyle.Render("/ ")
	ti.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = spinnerStyle

	return &App{
		cfg:         opts.Cfg,
		db:          opts.DB,
		refresh:     opts.Refresh,
		since:       opts.Since,
		quadrants:   newQuadrantBar(opts.Cfg.Radar),
		searchInput: ti,
		spinner:     sp,
	}
}

func (a *App) Init() tea.Cmd {
	return a.loadRecordsCmd()
}

// loadRecordsCmd captures current query state into the closure to avoid races.
func (a *App) loadRecordsCmd() tea.Cmd {
	contentType := a.cfg.GetContentType()
	opts := cache.QueryOpts{
		Type:   contentType,
		Since:  a.since,
		Search: a.searchInput.Value(),
	}
	db := a.db
	return func() tea.Msg {
		records, err := db.GetRecords(opts)
		if err != nil {
			return loadErrMsg{err: err}
		}
		return recordsLoadedMsg{records: content.Select(records, contentType)}
	}
}

func (a *App) doRefresh() tea.Cmd {
	refresh := a.refresh
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		n, errs := refresh(ctx)
		return refreshDoneMsg{count: n, errs: errs}
	}
}

func openBrowserCmd(url string) tea.Cmd {
	return func() tea.Msg {
		if err := browser.Open(url); err != nil {
			return loadErrMsg{err: err}
		}
		return nil
	}
}

// visible returns the loaded items that pass the quadrant filter.
func (a *App) visible() []item {
	var out []item
	for _, it := range a.items {
		if a.quadrants.matches(it.entry) {
			out = append(out, it)
		}
	}
	return out
}

func (a *App) selected() *item {
	vis := a.visible()
	if a.cursor < 0 || a.cursor >= len(vis) {
		return nil
	}
	return &vis[a.cursor]
}

func (a *App) clampCursor() {
	n := len(a.visible())
	if a.cursor >= n {
		a.cursor = max(0, n-1)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		// Clear sticky error on any keypress
		a.err = nil
		return a.handleKey(msg)

	case recordsLoadedMsg:
		a.items = make([]item, len(msg.records))
		for i, r := range msg.records {
			a.items[i] = item{record: r, entry: radar.Classify(r)}
		}
		a.clampCursor()
		return a, nil

	case loadErrMsg:
		a.err = msg.err
		return a, nil

	case refreshDoneMsg:
		a.refreshing = false
		if len(msg.errs) > 0 {
			a.err = fmt.Errorf("refresh: %d source(s) failed: %w", len(msg.errs), msg.errs[0])
		}
		return a, a.loadRecordsCmd()

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

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit
	}

	switch a.mode {
	case modeSearch:
		return a.handleSearchKey(msg)
	case modeHelp:
		if msg.String() == "?" || msg.String() == "esc" || msg.String() == "q" {
			a.mode = modeNormal
		}
		return a, nil
	}

	// Normal mode
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "j", "down":
		if a.focus == focusList && a.cursor < len(a.visible())-1 {
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
	case "right", "l":
		a.quadrants.next()
		a.cursor = 0
		return a, nil
	case "left", "h":
		a.quadrants.prev()
		a.cursor = 0
		return a, nil
	case "0", "1", "2", "3", "4":
		a.quadrants.selectIndex(int(msg.String()[0]-'0') - 1)
		a.cursor = 0
		return a, nil
	case "o", "enter":
		if it := a.selected(); it != nil {
			return a, openBrowserCmd(browser.Resolve(a.cfg.Site.BaseURL, it.entry.Link))
		}
		return a, nil
	case "/":
		a.mode = modeSearch
		a.searchInput.Focus()
		return a, textinput.Blink
	case "r":
		if !a.refreshing && a.refresh != nil {
			a.refreshing = true
			return a, tea.Batch(a.doRefresh(), a.spinner.Tick)
		}
		return a, nil
	case "?":
		a.mode = modeHelp
		return a, nil
	}

	return a, nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = modeNormal
		a.searchInput.SetValue("")
		a.searchInput.Blur()
		a.cursor = 0
		return a, a.loadRecordsCmd()
	case "enter":
		a.mode = modeNormal
		a.searchInput.Blur()
		a.cursor = 0
		return a, a.loadRecordsCmd()
	}

	var cmd tea.Cmd
	a.searchInput, cmd = a.searchInput.Update(msg)
	return a, cmd
}

func (a *App) withBottomBar(content string, hints string) string {
	bar := statusBarStyle.Width(a.width).Render(hints)
	lines := strings.Split(content, "\n")
	for len(lines) < a.height-1 {
		lines = append(lines, "")
	}
	if a.height > 0 && len(lines) >= a.height {
		lines = lines[:a.height-1]
	}
	lines = append(lines, bar)
	return strings.Join(lines, "\n")
}

func (a *App) defaultedCount() int {
	n := 0
	for _, it := range a.items {
		if radar.Inspect(it.record).Defaulted() {
			n++
		}
	}
	return n
}

func (a *App) View() string {
	if a.width == 0 {
		return lipgloss.NewStyle().Foreground(colorAccent).Render("  techradar")
	}

	if a.mode == modeHelp {
		return a.withBottomBar(a.renderHelp(), "? close  q quit")
	}

	headerHeight := 1
	filterHeight := 1
	statusHeight := 1
	contentHeight := a.height - headerHeight - filterHeight - statusHeight - 4 // borders

	listWidth := int(float64(a.width) * 0.4)
	previewWidth := a.width - listWidth - 1

	if contentHeight < 3 {
		contentHeight = 3
	}

	headerLeft := headerStyle.Render(a.cfg.Site.Title + " · tech radar")
	headerRight := headerDateStyle.Render(time.Now().Format("Jan 2"))
	headerGap := a.width - lipgloss.Width(headerLeft) - lipgloss.Width(headerRight)
	if headerGap < 0 {
		headerGap = 0
	}
	header := headerLeft + fmt.Sprintf("%*s", headerGap, "") + headerRight

	filter := a.quadrants.render(a.width)
	if a.mode == modeSearch {
		filter = a.searchInput.View()
	}

	vis := a.visible()
	layout := a.cfg.Radar

	innerListW := listWidth - 4 // border + padding
	listContent := renderList(vis, layout, a.cursor, contentHeight, innerListW)

	var listPane string
	if a.focus == focusList {
		listPane = listPaneActiveStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	} else {
		listPane = listPaneStyle.Width(listWidth - 2).Height(contentHeight).Render(listContent)
	}

	innerPreviewW := previewWidth - 4
	previewContent := renderPreview(a.selected(), layout, a.cfg.Site.BaseURL, innerPreviewW, contentHeight, a.previewScroll)

	var previewPane string
	if a.focus == focusPreview {
		previewPane = previewPaneActiveStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	} else {
		previewPane = previewPaneStyle.Width(previewWidth - 2).Height(contentHeight).Render(previewContent)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Top, listPane, previewPane)

	status := renderStatusBar(
		len(vis),
		a.quadrants.activeLabel(),
		a.defaultedCount(),
		a.width,
		a.mode == modeSearch,
		a.refreshing,
	)

	if a.refreshing {
		status = a.spinner.View() + " " + status
	}

	if a.err != nil {
		status = lipgloss.NewStyle().Foreground(colorAccent).Render(a.err.Error())
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, filter, content, status)
}

func (a *App) renderHelp() string {
	title := lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("techradar")
	dim := helpDimStyle

	help := title + dim.Render(" · Keyboard Shortcuts") + "\n\n" +
		dim.Render("Navigation") + "\n" +
		"  j/k, ↑/↓     Navigate entry list\n" +
		"  tab           Switch focus between list and preview\n" +
		"  ←/→, h/l     Cycle quadrant filter\n" +
		"  0-4           Jump to quadrant (0 shows all)\n\n" +
		dim.Render("Actions") + "\n" +
		"  o, enter      Open entry in browser\n" +
		"  r             Re-sync content sources\n" +
		"  /             Search entries\n\n" +
		dim.Render("General") + "\n" +
		"  ?             Toggle this help\n" +
		"  q, ctrl+c    Quit"

	card := helpCardStyle.Render(help)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card)
}

// Run starts the TUI application.
func Run(opts RunOpts) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
