package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditinsights/activity"
	"redditinsights/config"
	"redditinsights/logging"
	"redditinsights/storage"
	"redditinsights/types"
)

type fakeFetcher struct {
	posts map[string][]types.Record
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) FetchSubreddit(ctx context.Context, sub string, limit int) ([]types.Record, error) {
	f.calls = append(f.calls, sub)
	if err := f.errs[sub]; err != nil {
		return nil, err
	}
	return append([]types.Record(nil), f.posts[sub]...), nil
}

type fakeStore struct {
	saved map[string][]types.Record
	err   error
}

func (f *fakeStore) SavePosts(ctx context.Context, sub string, posts []types.Record) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = map[string][]types.Record{}
	}
	f.saved[sub] = posts
	return nil
}

type fakeUploader struct {
	body []byte
	err  error
}

func (f *fakeUploader) PutSnapshot(ctx context.Context, body []byte) error {
	f.body = body
	return f.err
}

func (f *fakeUploader) Location() string { return "s3://bucket/data.json" }

type capturedEntry struct {
	level, message string
}

type captureRecorder struct {
	entries []capturedEntry
}

func (c *captureRecorder) Record(level, message string, data map[string]any) {
	c.entries = append(c.entries, capturedEntry{level, message})
}

func (c *captureRecorder) has(level, message string) bool {
	for _, e := range c.entries {
		if e.level == level && e.message == message {
			return true
		}
	}
	return false
}

func testConfig(t *testing.T) config.Collector {
	cfg := config.Defaults().Collector
	cfg.OutputPath = filepath.Join(t.TempDir(), "data.json")
	cfg.TopN = 2
	return cfg
}

func samplePosts() map[string][]types.Record {
	return map[string][]types.Record{
		"n8n": {
			{Title: "a", Permalink: "p/a", Ups: 1, NumComments: 1},
			{Title: "b", Permalink: "p/b", Ups: 9, NumComments: 1},
			{Title: "c", Permalink: "p/c", Ups: 4, NumComments: 0},
		},
		"automation": {
			{Title: "d", Permalink: "p/d", Ups: 2, NumComments: 3},
		},
	}
}

func newTestOrchestrator(cfg config.Collector, f Fetcher, rec Recorder, opts ...Option) (*Orchestrator, *[]time.Duration) {
	o := New(cfg, f, rec, logging.Discard(), opts...)
	var pauses []time.Duration
	o.sleep = func(ctx context.Context, d time.Duration) error {
		pauses = append(pauses, d)
		return nil
	}
	return o, &pauses
}

func TestRunOnceRanksWritesAndSaves(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &fakeFetcher{posts: samplePosts()}
	store := &fakeStore{}
	uploader := &fakeUploader{}
	rec := &captureRecorder{}

	o, pauses := newTestOrchestrator(cfg, fetcher, rec, WithStore(store), WithUploader(uploader))
	listing, err := o.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"n8n", "automation"}, fetcher.calls)
	assert.Equal(t, []time.Duration{cfg.Pause}, *pauses, "pause only between subreddits")

	require.Len(t, listing["n8n"], 2)
	assert.Equal(t, "b", listing["n8n"][0].Title)
	assert.Equal(t, 10, listing["n8n"][0].Engagement)
	assert.Equal(t, "c", listing["n8n"][1].Title)
	assert.Len(t, listing["automation"], 1)

	fromDisk, err := storage.NewFileSource(cfg.OutputPath).LatestPosts(context.Background(), cfg.Subreddits, 5)
	require.NoError(t, err)
	assert.Equal(t, listing, fromDisk)

	assert.Equal(t, listing["n8n"], store.saved["n8n"])
	assert.Equal(t, listing["automation"], store.saved["automation"])

	var uploaded types.Listing
	require.NoError(t, json.Unmarshal(uploader.body, &uploaded))
	assert.Equal(t, listing, uploaded)

	assert.True(t, rec.has(activity.LevelInfo, "Results saved to JSON"))
	assert.True(t, rec.has(activity.LevelInfo, "Results saved to store"))
	assert.True(t, rec.has(activity.LevelInfo, "Snapshot uploaded"))
	assert.True(t, rec.has(activity.LevelInfo, "Execution completed"))
}

func TestRunOnceEmptySubredditIsWarning(t *testing.T) {
	cfg := testConfig(t)
	posts := samplePosts()
	delete(posts, "automation")
	rec := &captureRecorder{}

	o, _ := newTestOrchestrator(cfg, &fakeFetcher{posts: posts}, rec)
	listing, err := o.RunOnce(context.Background())
	require.NoError(t, err)

	automation, ok := listing["automation"]
	assert.True(t, ok)
	assert.NotNil(t, automation)
	assert.Empty(t, automation)
	assert.True(t, rec.has(activity.LevelWarning, "No posts found for r/automation"))
}

func TestRunOncePartialFetchFailure(t *testing.T) {
	cfg := testConfig(t)
	rec := &captureRecorder{}
	fetcher := &fakeFetcher{posts: samplePosts(), errs: map[string]error{"n8n": errors.New("403")}}

	o, _ := newTestOrchestrator(cfg, fetcher, rec)
	listing, err := o.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Empty(t, listing["n8n"])
	assert.Len(t, listing["automation"], 1)
	assert.True(t, rec.has(activity.LevelWarning, "No posts found for r/n8n"))
}

func TestRunOnceAllFetchesFailKeepsSnapshot(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, storage.WriteSnapshot(cfg.OutputPath, types.Listing{"n8n": {{Title: "old"}}}))

	fetcher := &fakeFetcher{errs: map[string]error{"n8n": errors.New("down"), "automation": errors.New("down")}}
	o, _ := newTestOrchestrator(cfg, fetcher, &captureRecorder{})

	_, err := o.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrNoData)

	kept, err := storage.NewFileSource(cfg.OutputPath).LatestPosts(context.Background(), []string{"n8n"}, 5)
	require.NoError(t, err)
	assert.Equal(t, "old", kept["n8n"][0].Title)
}

func TestRunOnceSinkFailuresDoNotFailRun(t *testing.T) {
	cfg := testConfig(t)
	rec := &captureRecorder{}

	o, _ := newTestOrchestrator(cfg, &fakeFetcher{posts: samplePosts()}, rec,
		WithStore(&fakeStore{err: errors.New("redis gone")}),
		WithUploader(&fakeUploader{err: errors.New("access denied")}),
	)
	_, err := o.RunOnce(context.Background())
	require.NoError(t, err)

	assert.True(t, rec.has(activity.LevelError, "Failed to save to store"))
	assert.True(t, rec.has(activity.LevelError, "Failed to upload snapshot"))
}

func TestRunOnceStopsWhenCancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Pause = time.Hour
	o := New(cfg, &fakeFetcher{posts: samplePosts()}, &captureRecorder{}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	WriteReport(&buf, []string{"n8n", "automation"}, types.Listing{
		"n8n": {{Title: "Top", Engagement: 7, Ups: 5, NumComments: 2, Permalink: "https://www.reddit.com/r/n8n/1"}},
	})

	out := buf.String()
	assert.Contains(t, out, "## Top 1 Posts in r/n8n")
	assert.Contains(t, out, "1. **Top**")
	assert.Contains(t, out, "Engagement: 7 (Ups: 5, Comments: 2)")
	assert.Contains(t, out, "## Top 0 Posts in r/automation")
}
