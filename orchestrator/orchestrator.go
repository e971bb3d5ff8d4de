package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"redditinsights/activity"
	"redditinsights/config"
	"redditinsights/reddit"
	"redditinsights/storage"
	"redditinsights/types"
)

// Fetcher reads the newest posts of a subreddit
type Fetcher interface {
	FetchSubreddit(ctx context.Context, subreddit string, limit int) ([]types.Record, error)
}

// PostStore persists ranked posts
type PostStore interface {
	SavePosts(ctx context.Context, subreddit string, posts []types.Record) error
}

// SnapshotUploader publishes the encoded snapshot somewhere outside the host
type SnapshotUploader interface {
	PutSnapshot(ctx context.Context, body []byte) error
	Location() string
}

// Recorder receives activity entries
type Recorder interface {
	Record(level, message string, data map[string]any)
}

// ErrNoData is returned when every subreddit fetch failed
var ErrNoData = errors.New("no subreddit could be fetched")

// Orchestrator runs the collect cycle behind POST /refresh and the fetch command
type Orchestrator struct {
	cfg      config.Collector
	fetcher  Fetcher
	store    PostStore
	uploader SnapshotUploader
	activity Recorder
	log      *logrus.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures optional sinks
type Option func(*Orchestrator)

// WithStore saves every ranked list to store
func WithStore(store PostStore) Option {
	return func(o *Orchestrator) { o.store = store }
}

// WithUploader uploads the snapshot after it is written locally
func WithUploader(uploader SnapshotUploader) Option {
	return func(o *Orchestrator) { o.uploader = uploader }
}

// New creates an orchestrator
func New(cfg config.Collector, fetcher Fetcher, recorder Recorder, logger *logrus.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:      cfg,
		fetcher:  fetcher,
		activity: recorder,
		log:      logger,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunOnce executes a single cycle: fetch and rank each subreddit, write the
// snapshot, then save to the store and upload when configured. Store and
// upload failures are recorded but do not fail the run.
func (o *Orchestrator) RunOnce(ctx context.Context) (types.Listing, error) {
	o.activity.Record(activity.LevelInfo, fmt.Sprintf("Starting Reddit fetch for: %v", o.cfg.Subreddits), nil)

	results := make(types.Listing, len(o.cfg.Subreddits))
	failures := 0
	for i, sub := range o.cfg.Subreddits {
		if i > 0 {
			if err := o.sleep(ctx, o.cfg.Pause); err != nil {
				return nil, err
			}
		}

		o.activity.Record(activity.LevelInfo, fmt.Sprintf("Fetching posts from r/%s", sub), nil)
		posts, err := o.fetcher.FetchSubreddit(ctx, sub, o.cfg.FetchLimit)
		if err != nil {
			failures++
			o.log.WithError(err).WithField("subreddit", sub).Warn("Fetch failed")
			posts = nil
		}
		if len(posts) == 0 {
			data := map[string]any(nil)
			if err != nil {
				data = map[string]any{"error": err.Error()}
			}
			o.activity.Record(activity.LevelWarning, fmt.Sprintf("No posts found for r/%s", sub), data)
		}

		top := reddit.Rank(posts, o.cfg.TopN)
		if top == nil {
			top = []types.Record{}
		}
		results[sub] = top
		o.activity.Record(activity.LevelInfo, fmt.Sprintf("Analyzed r/%s", sub), map[string]any{
			"posts_fetched": len(posts),
			"top_posts":     len(top),
		})
	}

	if failures == len(o.cfg.Subreddits) {
		o.activity.Record(activity.LevelError, "All subreddit fetches failed", nil)
		return nil, ErrNoData
	}

	if err := storage.WriteSnapshot(o.cfg.OutputPath, results); err != nil {
		o.activity.Record(activity.LevelError, "Failed to save to JSON", map[string]any{"error": err.Error()})
		return nil, err
	}
	o.activity.Record(activity.LevelInfo, "Results saved to JSON", map[string]any{"path": o.cfg.OutputPath})

	if o.store != nil {
		o.saveToStore(ctx, results)
	}
	if o.uploader != nil {
		o.upload(ctx, results)
	}

	o.activity.Record(activity.LevelInfo, "Execution completed", nil)
	return results, nil
}

func (o *Orchestrator) saveToStore(ctx context.Context, results types.Listing) {
	for _, sub := range o.cfg.Subreddits {
		if err := o.store.SavePosts(ctx, sub, results[sub]); err != nil {
			o.activity.Record(activity.LevelError, "Failed to save to store", map[string]any{
				"subreddit": sub,
				"error":     err.Error(),
			})
			return
		}
	}
	o.activity.Record(activity.LevelInfo, "Results saved to store", nil)
}

func (o *Orchestrator) upload(ctx context.Context, results types.Listing) {
	body, err := storage.MarshalSnapshot(results)
	if err == nil {
		uctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err = o.uploader.PutSnapshot(uctx, body)
		cancel()
	}
	if err != nil {
		o.activity.Record(activity.LevelError, "Failed to upload snapshot", map[string]any{"error": err.Error()})
		return
	}
	o.activity.Record(activity.LevelInfo, "Snapshot uploaded", map[string]any{"location": o.uploader.Location()})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
