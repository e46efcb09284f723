package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cgrotz/cgrotz.github.io/internal/cache"
	"github.com/cgrotz/cgrotz.github.io/internal/config"
	"github.com/cgrotz/cgrotz.github.io/internal/content"
	"github.com/cgrotz/cgrotz.github.io/internal/radar"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	records []content.Record
	err     error
	last    cache.QueryOpts
}

func (f *fakeStore) GetRecords(opts cache.QueryOpts) ([]content.Record, error) {
	f.last = opts
	return f.records, f.err
}

func testApp(store Store, refresh RefreshFunc) *App {
	cfg := &config.Config{
		ContentType: "tech",
		Site:        config.Site{Title: "example.org", BaseURL: "https://example.org"},
		Radar:       radar.DefaultLayout(),
	}
	return NewApp(RunOpts{Cfg: cfg, DB: store, Refresh: refresh})
}

func records() []content.Record {
	return []content.Record{
		{Title: "Rust", Slug: "/rust/", Type: "tech", Quadrant: "language", Ring: "adopt", Date: time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "Holiday", Slug: "/holiday/", Type: "blog", Date: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "Kafka", Slug: "/kafka/", Type: "tech", Quadrant: "infrastructure", Ring: "trial", Moved: "up", Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Title: "Untagged", Slug: "/untagged/", Type: "tech", Date: time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

// load runs the app's initial command and feeds the result back in.
func load(t *testing.T, a *App) {
	t.Helper()
	cmd := a.Init()
	require.NotNil(t, cmd)
	a.Update(cmd())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestAppLoadsClassifiedEntries(t *testing.T) {
	store := &fakeStore{records: records()}
	a := testApp(store, nil)
	load(t, a)

	assert.Equal(t, "tech", store.last.Type)
	require.Len(t, a.items, 3)
	assert.Equal(t, "Rust", a.items[0].entry.Label)
	assert.Equal(t, radar.Trial, a.items[1].entry.Ring)
	assert.Equal(t, radar.MovedUp, a.items[1].entry.Moved)
	assert.Equal(t, 1, a.defaultedCount())
}

func TestAppQuadrantFilter(t *testing.T) {
	a := testApp(&fakeStore{records: records()}, nil)
	load(t, a)

	a.Update(key("2"))
	vis := a.visible()
	require.Len(t, vis, 1)
	assert.Equal(t, "Kafka", vis[0].entry.Label)

	a.Update(key("0"))
	assert.Len(t, a.visible(), 3)

	a.Update(key("right"))
	assert.Equal(t, "Languages", a.quadrants.activeLabel())
	assert.Len(t, a.visible(), 2)
}

func TestAppCursorStaysInRange(t *testing.T) {
	a := testApp(&fakeStore{records: records()}, nil)
	load(t, a)

	for i := 0; i < 10; i++ {
		a.Update(key("j"))
	}
	assert.Equal(t, 2, a.cursor)
	assert.Equal(t, "Untagged", a.selected().entry.Label)

	a.Update(recordsLoadedMsg{records: records()[:1]})
	assert.Equal(t, 0, a.cursor)
}

func TestAppSearchQueriesStore(t *testing.T) {
	store := &fakeStore{records: records()}
	a := testApp(store, nil)
	load(t, a)

	a.Update(key("/"))
	assert.Equal(t, modeSearch, a.mode)
	for _, r := range "kafka" {
		a.Update(key(string(r)))
	}
	_, cmd := a.Update(key("enter"))
	require.NotNil(t, cmd)
	a.Update(cmd())

	assert.Equal(t, modeNormal, a.mode)
	assert.Equal(t, "kafka", store.last.Search)
}

func TestAppLoadError(t *testing.T) {
	a := testApp(&fakeStore{err: errors.New("db locked")}, nil)
	load(t, a)
	require.Error(t, a.err)

	a.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	assert.Contains(t, a.View(), "db locked")

	a.Update(key("j"))
	assert.NoError(t, a.err)
}

func TestAppRefresh(t *testing.T) {
	calls := 0
	refresh := func(ctx context.Context) (int, []error) {
		calls++
		return 2, []error{errors.New("feed down")}
	}
	a := testApp(&fakeStore{records: records()}, refresh)
	load(t, a)

	_, cmd := a.Update(key("r"))
	require.NotNil(t, cmd)
	assert.True(t, a.refreshing)

	_, cmd = a.Update(refreshDoneMsg{count: 2, errs: []error{errors.New("feed down")}})
	assert.False(t, a.refreshing)
	require.Error(t, a.err)
	assert.Contains(t, a.err.Error(), "feed down")
	require.NotNil(t, cmd)

	msg := a.doRefresh()()
	assert.Equal(t, 2, msg.(refreshDoneMsg).count)
	assert.Equal(t, 1, calls)
}

func TestAppRefreshWithoutSources(t *testing.T) {
	a := testApp(&fakeStore{}, nil)
	_, cmd := a.Update(key("r"))
	assert.Nil(t, cmd)
	assert.False(t, a.refreshing)
}

func TestAppView(t *testing.T) {
	a := testApp(&fakeStore{records: records()}, nil)
	assert.Contains(t, a.View(), "techradar")

	load(t, a)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	view := a.View()
	for _, want := range []string{"Rust", "ADOPT", "3 entries", "1 untagged", "https://example.org/rust/"} {
		assert.Contains(t, view, want)
	}

	a.Update(key("?"))
	assert.Contains(t, a.View(), "Keyboard Shortcuts")
	a.Update(key("esc"))
	assert.Equal(t, modeNormal, a.mode)
}

func TestAppViewWithZeroHeight(t *testing.T) {
	a := testApp(&fakeStore{records: records()}, nil)
	load(t, a)
	a.Update(tea.WindowSizeMsg{Width: 80, Height: 0})
	a.Update(key("?"))

	assert.NotPanics(t, func() { _ = a.View() })
}
