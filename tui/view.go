package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"redditinsights/types"
)

const defaultWidth = 80

// View implements tea.Model interface
func (m Model) View() string {
	if m.Loading {
		return LoadingStyle.Render(m.spinner.View() + " " + TextLoading)
	}

	if m.Alert != "" {
		return m.renderAlert()
	}

	var b strings.Builder

	// Header
	b.WriteString(TitleStyle.Render(TextTitle))
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(TextSubtitle))
	b.WriteString("\n\n")
	b.WriteString(m.renderRefreshButton())
	b.WriteString("\n\n")

	// Tabs
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	// Grid
	b.WriteString(m.renderGrid())
	b.WriteString("\n\n")

	// Help text
	b.WriteString(m.help.View(m.keys))

	return b.String()
}

func (m Model) renderRefreshButton() string {
	if m.Refreshing {
		return ButtonDisabledStyle.Render(TextRefreshing) + " " + m.spinner.View()
	}
	return ButtonStyle.Render(TextRefresh)
}

func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(types.Categories))
	for _, c := range types.Categories {
		label := "r/" + string(c)
		style := TabInactiveStyle
		if c == m.ActiveTab {
			style = TabActiveN8NStyle
			if c == types.CategoryAutomation {
				style = TabActiveAutomationStyle
			}
		}
		tabs = append(tabs, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderGrid lays out the active tab's cards in as many columns as fit the window.
// Index is the only per-card identity; the list is always replaced wholesale.
func (m Model) renderGrid() string {
	posts := m.Posts()
	if len(posts) == 0 {
		return InfoStyle.Render(TextNoPosts)
	}

	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	columns := max(1, width/(cardWidth+1))

	var rows []string
	for start := 0; start < len(posts); start += columns {
		end := min(start+columns, len(posts))
		cards := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cards = append(cards, RenderPostCard(posts[i], i == m.Cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// renderAlert draws the blocking modal in the middle of the window
func (m Model) renderAlert() string {
	box := AlertStyle.Render(
		ErrorStyle.Render(m.Alert) + "\n\n" + InfoStyle.Render(TextAlertDismiss),
	)
	if m.width <= 0 || m.height <= 0 {
		return box
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
