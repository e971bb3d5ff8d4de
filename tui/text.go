package tui

// UI Text Constants
const (
	TextTitle    = "Reddit Insights"
	TextSubtitle = "Top trending discussions from r/n8n & r/automation"
	TextLoading  = "Loading insights..."

	TextRefresh    = "🔄 Refresh Data"
	TextRefreshing = "🔄 Refreshing..."

	TextReadPost = "Read Post"
	TextNoPosts  = "No posts to show."

	TextRefreshFailed = "Failed to refresh data. Is the local server running?"
	TextAlertDismiss  = "Press enter to dismiss"
)
