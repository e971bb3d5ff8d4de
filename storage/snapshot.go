package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"redditinsights/types"
)

// MarshalSnapshot renders a listing the way it is written to disk and S3
func MarshalSnapshot(listing types.Listing) ([]byte, error) {
	return json.MarshalIndent(listing, "", "    ")
}

// WriteSnapshot writes the listing as indented JSON, creating parent directories
func WriteSnapshot(path string, listing types.Listing) error {
	data, err := MarshalSnapshot(listing)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// FileSource serves the last written snapshot. It backs GET /data when Redis is not available.
type FileSource struct {
	path string
}

// NewFileSource creates a source reading the snapshot at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// LatestPosts returns the snapshot's posts for each subreddit, truncated to limit
func (f *FileSource) LatestPosts(ctx context.Context, subreddits []string, limit int) (types.Listing, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot types.Listing
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	out := make(types.Listing, len(subreddits))
	for _, sub := range subreddits {
		records := snapshot[sub]
		if len(records) > limit {
			records = records[:limit]
		}
		if records == nil {
			records = []types.Record{}
		}
		out[sub] = records
	}
	return out, nil
}
