package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"redditinsights/config"
	"redditinsights/types"
)

// Model is the root viewer state. It owns the dataset and all view flags.
type Model struct {
	cfg    config.Viewer
	source DataSource
	log    *logrus.Logger

	// Opener is used for the "read post" action
	Opener LinkOpener

	Dataset    types.Dataset
	ActiveTab  types.Category
	Loading    bool
	Refreshing bool
	// Alert holds a blocking message; while set only dismissal is accepted
	Alert string
	// Cursor indexes the highlighted card in the active tab
	Cursor int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int
}

// NewModel creates the viewer model. The model performs no I/O until Init.
func NewModel(cfg config.Viewer, source DataSource, logger *logrus.Logger) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StatusStyle

	return Model{
		cfg:       cfg,
		source:    source,
		log:       logger,
		Opener:    OpenInBrowser,
		Dataset:   types.EmptyDataset(),
		ActiveTab: types.CategoryN8N,
		Loading:   true,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   s,
	}
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		fetchData(m.source),
		m.spinner.Tick,
	)
}

// Posts returns the posts of the active tab, or nil when the tab is absent from the dataset
func (m Model) Posts() []types.Post {
	return m.Dataset.Posts(m.ActiveTab)
}

// selectedPost returns the post under the cursor
func (m Model) selectedPost() (types.Post, bool) {
	posts := m.Posts()
	if m.Cursor < 0 || m.Cursor >= len(posts) {
		return types.Post{}, false
	}
	return posts[m.Cursor], true
}

func (m Model) tabIndex() int {
	for i, c := range types.Categories {
		if c == m.ActiveTab {
			return i
		}
	}
	return 0
}
