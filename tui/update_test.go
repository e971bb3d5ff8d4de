package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditinsights/config"
	"redditinsights/logging"
	"redditinsights/types"
)

type fakeSource struct {
	datasets   []types.Dataset
	fetchErr   error
	refreshErr error
	fetches    int
	refreshes  int
}

func (f *fakeSource) FetchData(ctx context.Context) (types.Dataset, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.datasets) == 0 {
		return types.EmptyDataset(), nil
	}
	d := f.datasets[0]
	if len(f.datasets) > 1 {
		f.datasets = f.datasets[1:]
	}
	return d, nil
}

func (f *fakeSource) Refresh(ctx context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func sampleDataset() types.Dataset {
	return types.Dataset{
		types.CategoryN8N: {
			{Title: "A", Engagement: "5", Ups: "10", NumComments: "2", Permalink: "http://x"},
		},
		types.CategoryAutomation: {},
	}
}

func newTestModel(src DataSource) Model {
	cfg := config.Viewer{APIBase: "http://test", RefreshDelay: 20 * time.Millisecond}
	return NewModel(cfg, src, logging.Discard())
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok, "Update returned %T", next)
	return nm, cmd
}

// runCmd executes cmd and flattens batches into the resulting messages
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findMsg[T tea.Msg](t *testing.T, msgs []tea.Msg) T {
	t.Helper()
	for _, msg := range msgs {
		if typed, ok := msg.(T); ok {
			return typed
		}
	}
	var zero T
	t.Fatalf("no %T among %d messages", zero, len(msgs))
	return zero
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadedModel(t *testing.T, src *fakeSource) Model {
	t.Helper()
	m := newTestModel(src)
	msgs := runCmd(m.Init())
	m, _ = update(t, m, findMsg[DataLoadedMsg](t, msgs))
	return m
}

func TestInitialLoadReplacesDataset(t *testing.T) {
	src := &fakeSource{datasets: []types.Dataset{sampleDataset()}}
	m := newTestModel(src)
	assert.True(t, m.Loading)

	m = loadedModel(t, src)

	assert.False(t, m.Loading)
	assert.Equal(t, 1, src.fetches)
	assert.Equal(t, sampleDataset(), m.Dataset)
}

func TestInitialLoadFailureShowsEmptyTabs(t *testing.T) {
	src := &fakeSource{fetchErr: errors.New("connection refused")}
	m := loadedModel(t, src)

	assert.False(t, m.Loading)
	assert.Equal(t, types.EmptyDataset(), m.Dataset)

	view := m.View()
	assert.NotContains(t, view, TextLoading)
	assert.Contains(t, view, "r/n8n")
	assert.Contains(t, view, "r/automation")
	assert.Zero(t, strings.Count(view, TextReadPost))
	assert.Empty(t, m.Alert, "fetch failures are not surfaced to the user")
}

func TestLoadingViewShowsOnlyIndicator(t *testing.T) {
	m := newTestModel(&fakeSource{})

	view := m.View()
	assert.Contains(t, view, TextLoading)
	assert.NotContains(t, view, "r/n8n")
	assert.NotContains(t, view, TextRefresh)
}

func TestTabSelectionRendersCategoryPosts(t *testing.T) {
	src := &fakeSource{datasets: []types.Dataset{sampleDataset()}}
	m := loadedModel(t, src)

	view := m.View()
	assert.Equal(t, 1, strings.Count(view, TextReadPost))
	assert.Contains(t, view, "A")
	assert.Contains(t, view, "🔥 5")
	assert.Contains(t, view, "⬆️ 10")
	assert.Contains(t, view, "💬 2")

	m, cmd := update(t, m, keyRune('2'))
	assert.Nil(t, cmd)
	assert.Equal(t, types.CategoryAutomation, m.ActiveTab)
	assert.Zero(t, strings.Count(m.View(), TextReadPost))

	m, cmd = update(t, m, keyRune('1'))
	assert.Nil(t, cmd)
	assert.Equal(t, types.CategoryN8N, m.ActiveTab)
}

func TestGridRendersActiveTabInOrder(t *testing.T) {
	dataset := types.Dataset{
		types.CategoryN8N: {
			{Title: "Workflow alpha", Permalink: "http://a"},
			{Title: "Workflow bravo", Permalink: "http://b"},
			{Title: "Workflow charlie", Permalink: "http://c"},
		},
		types.CategoryAutomation: {
			{Title: "Pipeline delta", Permalink: "http://d"},
			{Title: "Pipeline echo", Permalink: "http://e"},
		},
	}
	m := loadedModel(t, &fakeSource{datasets: []types.Dataset{dataset}})
	// one card per row
	m, _ = update(t, m, tea.WindowSizeMsg{Width: cardWidth + 1, Height: 60})

	assertOrdered := func(view string, titles ...string) {
		t.Helper()
		last := -1
		for _, title := range titles {
			idx := strings.Index(view, title)
			require.GreaterOrEqual(t, idx, 0, "%q not rendered", title)
			assert.Greater(t, idx, last, "%q out of order", title)
			last = idx
		}
	}

	view := m.View()
	assertOrdered(view, "Workflow alpha", "Workflow bravo", "Workflow charlie")
	assert.NotContains(t, view, "Pipeline")

	m, _ = update(t, m, keyRune('2'))
	view = m.View()
	assertOrdered(view, "Pipeline delta", "Pipeline echo")
	assert.NotContains(t, view, "Workflow")
	assert.Equal(t, 2, strings.Count(view, TextReadPost))
}

func TestTabSwitchingNeverTouchesNetwork(t *testing.T) {
	src := &fakeSource{datasets: []types.Dataset{sampleDataset()}}
	m := loadedModel(t, src)

	keys := []tea.KeyMsg{
		{Type: tea.KeyTab},
		{Type: tea.KeyShiftTab},
		{Type: tea.KeyRight},
		{Type: tea.KeyLeft},
		keyRune('1'),
		keyRune('2'),
	}
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = update(t, m, k)
		assert.Nil(t, cmd, "key %s returned a command", k)
	}
	assert.Equal(t, 1, src.fetches)
	assert.Zero(t, src.refreshes)
}

func TestNextTabWrapsAround(t *testing.T) {
	m := loadedModel(t, &fakeSource{})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, types.CategoryAutomation, m.ActiveTab)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, types.CategoryN8N, m.ActiveTab)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, types.CategoryAutomation, m.ActiveTab)
}

func TestMissingCategoryRendersEmptyGrid(t *testing.T) {
	src := &fakeSource{datasets: []types.Dataset{{types.CategoryN8N: sampleDataset()[types.CategoryN8N]}}}
	m := loadedModel(t, src)

	m, _ = update(t, m, keyRune('2'))
	assert.Nil(t, m.Posts())
	assert.Contains(t, m.View(), TextNoPosts)
}

func TestRefreshSuccessRefetchesAfterDelay(t *testing.T) {
	fresh := types.Dataset{
		types.CategoryN8N:        {{Title: "B", Engagement: "1", Ups: "1", NumComments: "0", Permalink: "http://y"}},
		types.CategoryAutomation: {},
	}
	src := &fakeSource{datasets: []types.Dataset{sampleDataset(), fresh}}
	m := loadedModel(t, src)

	m, cmd := update(t, m, keyRune('r'))
	require.NotNil(t, cmd)
	assert.True(t, m.Refreshing)
	assert.Contains(t, m.View(), TextRefreshing)

	requested := findMsg[RefreshRequestedMsg](t, runCmd(cmd))
	require.NoError(t, requested.Err)
	assert.Equal(t, 1, src.refreshes)

	m, cmd = update(t, m, requested)
	require.NotNil(t, cmd)
	assert.True(t, m.Refreshing, "still refreshing until the re-fetch completes")
	assert.Equal(t, 1, src.fetches, "re-fetch waits for the delay")

	start := time.Now()
	due := findMsg[RefetchDueMsg](t, runCmd(cmd))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	m, cmd = update(t, m, due)
	loaded := findMsg[DataLoadedMsg](t, runCmd(cmd))
	assert.Equal(t, 2, src.fetches)

	m, _ = update(t, m, loaded)
	assert.False(t, m.Refreshing)
	assert.Equal(t, fresh, m.Dataset)

	view := m.View()
	assert.Contains(t, view, "http://y")
	assert.NotContains(t, view, "http://x")
	assert.Contains(t, view, TextRefresh)
}

func TestRefreshIgnoredWhileRefreshing(t *testing.T) {
	src := &fakeSource{}
	m := loadedModel(t, src)
	m.Refreshing = true

	m, cmd := update(t, m, keyRune('r'))
	assert.Nil(t, cmd)
	assert.True(t, m.Refreshing)
	assert.Zero(t, src.refreshes)
}

func TestRefreshIgnoredWhileLoading(t *testing.T) {
	src := &fakeSource{}
	m := newTestModel(src)

	_, cmd := update(t, m, keyRune('r'))
	assert.Nil(t, cmd)
}

func TestRefreshFailureRaisesAlertWithoutRefetch(t *testing.T) {
	src := &fakeSource{datasets: []types.Dataset{sampleDataset()}, refreshErr: errors.New("dial tcp: refused")}
	m := loadedModel(t, src)

	m, cmd := update(t, m, keyRune('r'))
	requested := findMsg[RefreshRequestedMsg](t, runCmd(cmd))
	require.Error(t, requested.Err)

	m, cmd = update(t, m, requested)
	assert.Nil(t, cmd, "no re-fetch is scheduled after a failed refresh")
	assert.False(t, m.Refreshing)
	assert.Equal(t, TextRefreshFailed, m.Alert)
	assert.Contains(t, m.View(), TextRefreshFailed)
	assert.Equal(t, 1, src.fetches)
	assert.Equal(t, sampleDataset(), m.Dataset)
}

func TestAlertBlocksInputUntilDismissed(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m.Alert = TextRefreshFailed

	m, cmd := update(t, m, keyRune('2'))
	assert.Nil(t, cmd)
	assert.Equal(t, types.CategoryN8N, m.ActiveTab)

	m, cmd = update(t, m, keyRune('r'))
	assert.Nil(t, cmd)
	assert.False(t, m.Refreshing)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, m.Alert)
	assert.Contains(t, m.View(), TextTitle)
}

func TestCursorMovesWithinActiveTab(t *testing.T) {
	d := types.Dataset{
		types.CategoryN8N: {
			{Title: "one", Permalink: "http://1"},
			{Title: "two", Permalink: "http://2"},
		},
		types.CategoryAutomation: {{Title: "three", Permalink: "http://3"}},
	}
	m := loadedModel(t, &fakeSource{datasets: []types.Dataset{d}})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, m.Cursor)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.Cursor)

	m, _ = update(t, m, keyRune('2'))
	assert.Equal(t, 0, m.Cursor, "cursor resets on tab switch")
}

func TestOpenUsesSelectedPermalink(t *testing.T) {
	d := types.Dataset{
		types.CategoryN8N: {
			{Title: "one", Permalink: "http://1"},
			{Title: "two", Permalink: "http://2"},
		},
	}
	m := loadedModel(t, &fakeSource{datasets: []types.Dataset{d}})

	var opened []string
	m.Opener = func(link string) error {
		opened = append(opened, link)
		return nil
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	msg := findMsg[LinkOpenedMsg](t, runCmd(cmd))
	assert.NoError(t, msg.Err)
	assert.Equal(t, []string{"http://2"}, opened)
}

func TestOpenWithoutPostsIsNoop(t *testing.T) {
	m := loadedModel(t, &fakeSource{})
	m.Opener = func(string) error {
		t.Fatal("opener must not be called")
		return nil
	}

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestQuit(t *testing.T) {
	m := newTestModel(&fakeSource{})

	_, cmd := update(t, m, keyRune('q'))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
