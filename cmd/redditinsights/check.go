package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/IBM/sarama"
	"github.com/spf13/cobra"

	"redditinsights/common"
	"redditinsights/storage"
	"redditinsights/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check connectivity to the backend and its optional services",
	RunE:  runCheck,
}

var (
	okMark   = levelStyles["INFO"].Render("✓")
	failMark = levelStyles["ERROR"].Render("✗")
	skipMark = dimStyle.Render("-")
)

func runCheck(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()
	out := cmd.OutOrStdout()
	failed := 0

	report := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %-8s %v\n", failMark, name, err)
			return
		}
		fmt.Fprintf(out, "%s %s\n", okMark, name)
	}
	skip := func(name, reason string) {
		fmt.Fprintf(out, "%s %-8s %s\n", skipMark, name, dimStyle.Render(reason))
	}

	report("backend", checkBackend(ctx, cfg.Viewer.APIBase))

	if cfg.Redis.Addr == "" {
		skip("redis", "REDIS_ADDR not set")
	} else {
		store, err := storage.NewRedisStore(cfg.Redis)
		if err == nil {
			err = reportStoredPosts(ctx, out, store, cfg.Collector.Subreddits)
			_ = store.Close()
		}
		report("redis", err)
	}

	if cfg.S3.Bucket == "" {
		skip("s3", "S3_BUCKET not set")
	} else {
		s3c, err := common.NewS3(ctx, cfg.S3)
		var exists bool
		if err == nil {
			exists, err = s3c.SnapshotExists(ctx)
		}
		switch {
		case err != nil:
			report("s3", err)
		case !exists:
			skip("s3", "no snapshot at "+s3c.Location()+" yet")
		default:
			report("s3", nil)
		}
	}

	if len(cfg.Kafka.Brokers) == 0 {
		skip("kafka", "KAFKA_BROKERS not set")
	} else {
		report("kafka", checkKafka(cfg.Kafka.Brokers))
	}

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// postCounter is the part of the store check reads from
type postCounter interface {
	Count(ctx context.Context, subreddit string) (int64, error)
	LatestPosts(ctx context.Context, subreddits []string, limit int) (types.Listing, error)
}

// reportStoredPosts prints how many posts each subreddit has in the store, with a sample title
func reportStoredPosts(ctx context.Context, w io.Writer, store postCounter, subreddits []string) error {
	for _, sub := range subreddits {
		count, err := store.Count(ctx, sub)
		if err != nil {
			return fmt.Errorf("counting r/%s: %w", sub, err)
		}
		fmt.Fprintf(w, "  Subreddit r/%s: %d posts found.\n", sub, count)
		if count == 0 {
			continue
		}

		latest, err := store.LatestPosts(ctx, []string{sub}, 1)
		if err != nil {
			return fmt.Errorf("sampling r/%s: %w", sub, err)
		}
		if posts := latest[sub]; len(posts) > 0 {
			fmt.Fprintf(w, "  Sample post: %s\n", posts[0].Title)
		}
	}
	return nil
}

func checkBackend(ctx context.Context, base string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", base, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s/health returned %d", base, resp.StatusCode)
	}
	return nil
}

func checkKafka(brokers []string) error {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	client, err := sarama.NewClient(brokers, saramaConfig)
	if err != nil {
		return err
	}
	return client.Close()
}
