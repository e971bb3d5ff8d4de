package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"redditinsights/types"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case DataLoadedMsg:
		return m.handleDataLoaded(msg)
	case RefreshRequestedMsg:
		return m.handleRefreshRequested(msg)
	case RefetchDueMsg:
		return m, fetchData(m.source)
	case LinkOpenedMsg:
		return m.handleLinkOpened(msg)
	case spinner.TickMsg:
		if !m.Loading && !m.Refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.Alert != "" {
		if key.Matches(msg, m.keys.Dismiss) {
			m.Alert = ""
		}
		return m, nil
	}

	if m.Loading {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.startRefresh()
	case key.Matches(msg, m.keys.N8N):
		return m.selectTab(types.CategoryN8N), nil
	case key.Matches(msg, m.keys.Automation):
		return m.selectTab(types.CategoryAutomation), nil
	case key.Matches(msg, m.keys.NextTab):
		next := (m.tabIndex() + 1) % len(types.Categories)
		return m.selectTab(types.Categories[next]), nil
	case key.Matches(msg, m.keys.PrevTab):
		prev := (m.tabIndex() + len(types.Categories) - 1) % len(types.Categories)
		return m.selectTab(types.Categories[prev]), nil
	case key.Matches(msg, m.keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		if m.Cursor < len(m.Posts())-1 {
			m.Cursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Open):
		post, ok := m.selectedPost()
		if !ok || post.Permalink == "" {
			return m, nil
		}
		return m, openLink(m.Opener, post.Permalink)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// startRefresh begins a refresh unless one is already running
func (m Model) startRefresh() (tea.Model, tea.Cmd) {
	if m.Refreshing {
		return m, nil
	}
	m.Refreshing = true
	return m, tea.Batch(requestRefresh(m.source), m.spinner.Tick)
}

// selectTab switches the active tab. It never touches the network.
func (m Model) selectTab(c types.Category) Model {
	if m.ActiveTab != c {
		m.ActiveTab = c
		m.Cursor = 0
	}
	return m
}

// handleDataLoaded replaces the dataset on success. Both outcomes end loading and refreshing.
func (m Model) handleDataLoaded(msg DataLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.WithError(msg.Err).Error("Error fetching data")
	} else {
		m.Dataset = msg.Dataset
		m.Cursor = 0
		m.log.WithField("categories", len(msg.Dataset)).Debug("Dataset loaded")
	}
	m.Loading = false
	m.Refreshing = false
	return m, nil
}

// handleRefreshRequested schedules the delayed re-fetch, or raises the alert on failure
func (m Model) handleRefreshRequested(msg RefreshRequestedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.WithError(msg.Err).Error("Error refreshing data")
		m.Refreshing = false
		m.Alert = TextRefreshFailed
		return m, nil
	}
	return m, scheduleRefetch(m.cfg.RefreshDelay)
}

// handleLinkOpened logs links the browser could not take
func (m Model) handleLinkOpened(msg LinkOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.WithError(msg.Err).WithField("url", msg.URL).Warn("Failed to open link")
	}
	return m, nil
}
