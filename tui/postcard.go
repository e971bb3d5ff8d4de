package tui

import (
	"encoding/json"

	"github.com/charmbracelet/lipgloss"

	"redditinsights/types"
)

const (
	cardWidth = 38
	// content width inside the border and padding
	cardInner = cardWidth - 4
)

// RenderPostCard renders one post as a bordered card. It has no side effects
// and accepts any post, including ones with missing fields.
func RenderPostCard(post types.Post, selected bool) string {
	title := CardTitleStyle.Width(cardInner).Render(post.Title)

	meta := lipgloss.JoinHorizontal(lipgloss.Top,
		renderMetric("🔥", post.Engagement),
		renderMetric("⬆️", post.Ups),
		renderMetric("💬", post.NumComments),
	)

	link := LinkStyle.Render(TextReadPost) + "\n" +
		InfoStyle.Render(truncate(post.Permalink, cardInner))

	style := CardStyle
	if selected {
		style = CardSelectedStyle
	}
	return style.Width(cardWidth).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", meta, "", link),
	)
}

func renderMetric(icon string, value json.Number) string {
	return MetricStyle.Render(icon + " " + value.String())
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 1 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
