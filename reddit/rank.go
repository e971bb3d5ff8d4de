package reddit

import (
	"sort"

	"redditinsights/types"
)

// Engagement is the score posts are ranked by
func Engagement(r types.Record) int {
	return r.Ups + r.NumComments
}

// Rank fills in engagement, orders posts by it (highest first, ties keep
// listing order) and returns at most top posts. The input slice is reordered.
func Rank(posts []types.Record, top int) []types.Record {
	for i := range posts {
		posts[i].Engagement = Engagement(posts[i])
	}
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Engagement > posts[j].Engagement
	})
	if top >= 0 && len(posts) > top {
		posts = posts[:top]
	}
	return posts
}
