package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// fetchData creates a command that loads the dataset
func fetchData(source DataSource) tea.Cmd {
	return func() tea.Msg {
		dataset, err := source.FetchData(context.Background())
		return DataLoadedMsg{
			Dataset: dataset,
			Err:     err,
		}
	}
}

// requestRefresh creates a command that asks the backend to regenerate data
func requestRefresh(source DataSource) tea.Cmd {
	return func() tea.Msg {
		err := source.Refresh(context.Background())
		return RefreshRequestedMsg{Err: err}
	}
}

// scheduleRefetch fires once after delay. The backend gives no completion
// signal, so this is a fixed wait followed by a single re-fetch.
func scheduleRefetch(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return RefetchDueMsg{Time: t}
	})
}

// openLink creates a command that hands url to the opener
func openLink(opener LinkOpener, url string) tea.Cmd {
	return func() tea.Msg {
		return LinkOpenedMsg{URL: url, Err: opener(url)}
	}
}
