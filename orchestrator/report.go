package orchestrator

import (
	"fmt"
	"io"

	"redditinsights/types"
)

// WriteReport prints a markdown summary of the ranked posts in subreddit order
func WriteReport(w io.Writer, subreddits []string, listing types.Listing) {
	fmt.Fprint(w, "\n# Reddit Analysis Report\n\n")
	for _, sub := range subreddits {
		posts := listing[sub]
		fmt.Fprintf(w, "## Top %d Posts in r/%s\n", len(posts), sub)
		for i, p := range posts {
			fmt.Fprintf(w, "%d. **%s**\n", i+1, p.Title)
			fmt.Fprintf(w, "   - Engagement: %d (Ups: %d, Comments: %d)\n", p.Engagement, p.Ups, p.NumComments)
			fmt.Fprintf(w, "   - Link: %s\n\n", p.Permalink)
		}
	}
}
