package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"redditinsights/config"
	"redditinsights/types"
)

const keyPrefix = "reddit"

// RedisStore keeps posts as hashes keyed by permalink, plus one sorted set
// per subreddit scored by engagement
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisStore connects to Redis and verifies connectivity
func NewRedisStore(cfg config.Redis) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisStoreWithClient(client), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

// Close closes the underlying Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// SavePosts upserts posts by permalink. created_at is only written on first insert.
func (s *RedisStore) SavePosts(ctx context.Context, subreddit string, posts []types.Record) error {
	ts := s.now().UTC().Format(time.RFC3339Nano)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, p := range posts {
			key := postKey(p.Permalink)
			pipe.HSet(ctx, key,
				"subreddit", subreddit,
				"title", p.Title,
				"url", p.URL,
				"permalink", p.Permalink,
				"ups", p.Ups,
				"num_comments", p.NumComments,
				"engagement", p.Engagement,
				"created_utc", strconv.FormatFloat(p.CreatedUTC, 'f', -1, 64),
				"last_updated", ts,
			)
			pipe.HSetNX(ctx, key, "created_at", ts)
			pipe.ZAdd(ctx, indexKey(subreddit), redis.Z{
				Score:  float64(p.Engagement),
				Member: key,
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("saving r/%s posts: %w", subreddit, err)
	}
	return nil
}

// LatestPosts returns, per subreddit, the top limit posts by engagement.
// Every requested subreddit is present in the result, possibly empty.
func (s *RedisStore) LatestPosts(ctx context.Context, subreddits []string, limit int) (types.Listing, error) {
	out := make(types.Listing, len(subreddits))
	for _, sub := range subreddits {
		keys, err := s.client.ZRevRange(ctx, indexKey(sub), 0, int64(limit-1)).Result()
		if err != nil {
			return nil, fmt.Errorf("querying r/%s index: %w", sub, err)
		}

		cmds := make([]*redis.MapStringStringCmd, len(keys))
		_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, k := range keys {
				cmds[i] = pipe.HGetAll(ctx, k)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("loading r/%s posts: %w", sub, err)
		}

		records := make([]types.Record, 0, len(cmds))
		for _, cmd := range cmds {
			fields := cmd.Val()
			if len(fields) == 0 {
				continue
			}
			records = append(records, recordFromHash(fields))
		}
		out[sub] = records
	}
	return out, nil
}

// Count returns how many posts are indexed for a subreddit
func (s *RedisStore) Count(ctx context.Context, subreddit string) (int64, error) {
	return s.client.ZCard(ctx, indexKey(subreddit)).Result()
}

func recordFromHash(h map[string]string) types.Record {
	r := types.Record{
		Subreddit: h["subreddit"],
		Title:     h["title"],
		URL:       h["url"],
		Permalink: h["permalink"],
	}
	r.Ups, _ = strconv.Atoi(h["ups"])
	r.NumComments, _ = strconv.Atoi(h["num_comments"])
	r.Engagement, _ = strconv.Atoi(h["engagement"])
	r.CreatedUTC, _ = strconv.ParseFloat(h["created_utc"], 64)
	r.LastUpdated, _ = time.Parse(time.RFC3339Nano, h["last_updated"])
	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, h["created_at"])
	return r
}

func postKey(permalink string) string {
	h := sha256.Sum256([]byte(permalink))
	return keyPrefix + ":post:" + hex.EncodeToString(h[:])[:16]
}

func indexKey(subreddit string) string {
	return keyPrefix + ":sub:" + subreddit + ":engagement"
}
