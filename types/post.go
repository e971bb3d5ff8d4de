package types

import (
	"bytes"
	"encoding/json"
	"time"
)

// Category identifies one of the subreddit buckets shown as a tab
type Category string

const (
	CategoryN8N        Category = "n8n"
	CategoryAutomation Category = "automation"
)

// Categories lists the tabs in display order
var Categories = []Category{CategoryN8N, CategoryAutomation}

// Post is the display shape of one Reddit submission as served by GET /data.
// Metrics are kept as json.Number so a missing field stays empty instead of reading as 0.
type Post struct {
	Title       string      `json:"title"`
	Engagement  json.Number `json:"engagement"`
	Ups         json.Number `json:"ups"`
	NumComments json.Number `json:"num_comments"`
	Permalink   string      `json:"permalink"`
}

// UnmarshalJSON reads whatever fields are present. A value that is not an object
// yields an empty post, and scalar fields of any JSON type keep their literal text.
func (p *Post) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		*p = Post{}
		return nil
	}
	*p = Post{
		Title:       scalarText(fields["title"]),
		Engagement:  json.Number(scalarText(fields["engagement"])),
		Ups:         json.Number(scalarText(fields["ups"])),
		NumComments: json.Number(scalarText(fields["num_comments"])),
		Permalink:   scalarText(fields["permalink"]),
	}
	return nil
}

// scalarText renders a raw JSON scalar as display text. null, objects and arrays render empty.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	}
	return string(raw)
}

// Dataset maps each category to its ordered posts. A fetch replaces it wholesale.
type Dataset map[Category][]Post

// UnmarshalJSON keeps only the known categories. Any valid JSON decodes: a
// category whose value is not an array becomes empty, other keys are ignored.
func (d *Dataset) UnmarshalJSON(data []byte) error {
	out := Dataset{}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err == nil {
		for _, c := range Categories {
			raw, ok := top[string(c)]
			if !ok {
				continue
			}
			var posts []Post
			if err := json.Unmarshal(raw, &posts); err != nil || posts == nil {
				posts = []Post{}
			}
			out[c] = posts
		}
	}

	*d = out
	return nil
}

// EmptyDataset returns the default dataset with every category present and empty
func EmptyDataset() Dataset {
	d := make(Dataset, len(Categories))
	for _, c := range Categories {
		d[c] = []Post{}
	}
	return d
}

// Posts returns the posts for a category, or nil when the category is absent
func (d Dataset) Posts(c Category) []Post {
	return d[c]
}

// Record is a stored post as produced by the collector and returned by the backend.
// Its JSON field names are a superset of Post, so a Listing decodes directly into a Dataset.
type Record struct {
	Subreddit   string    `json:"subreddit,omitempty"`
	Title       string    `json:"title"`
	URL         string    `json:"url,omitempty"`
	Permalink   string    `json:"permalink"`
	Ups         int       `json:"ups"`
	NumComments int       `json:"num_comments"`
	Engagement  int       `json:"engagement"`
	CreatedUTC  float64   `json:"created_utc,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitzero"`
	CreatedAt   time.Time `json:"created_at,omitzero"`
}

// Listing maps subreddit name to its ranked records
type Listing map[string][]Record
