package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redditinsights/config"
	"redditinsights/types"
)

func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client), mr
}

func record(title, permalink string, ups, comments int) types.Record {
	return types.Record{
		Title:       title,
		Permalink:   permalink,
		URL:         permalink,
		Ups:         ups,
		NumComments: comments,
		Engagement:  ups + comments,
		CreatedUTC:  1700000000,
	}
}

func TestSaveAndLatestPosts(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePosts(ctx, "n8n", []types.Record{
		record("low", "https://r/1", 1, 0),
		record("high", "https://r/2", 10, 5),
		record("mid", "https://r/3", 4, 4),
	}))
	require.NoError(t, store.SavePosts(ctx, "automation", []types.Record{
		record("auto", "https://r/4", 2, 2),
	}))

	listing, err := store.LatestPosts(ctx, []string{"n8n", "automation", "empty"}, 2)
	require.NoError(t, err)

	require.Len(t, listing["n8n"], 2)
	assert.Equal(t, "high", listing["n8n"][0].Title)
	assert.Equal(t, 15, listing["n8n"][0].Engagement)
	assert.Equal(t, "n8n", listing["n8n"][0].Subreddit)
	assert.Equal(t, "mid", listing["n8n"][1].Title)

	require.Len(t, listing["automation"], 1)
	assert.Equal(t, "auto", listing["automation"][0].Title)

	empty, ok := listing["empty"]
	assert.True(t, ok)
	assert.Empty(t, empty)

	count, err := store.Count(ctx, "n8n")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestSavePostsUpsertKeepsCreatedAt(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	first := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	store.now = func() time.Time { return first }
	require.NoError(t, store.SavePosts(ctx, "n8n", []types.Record{record("v1", "https://r/1", 1, 1)}))

	store.now = func() time.Time { return second }
	require.NoError(t, store.SavePosts(ctx, "n8n", []types.Record{record("v2", "https://r/1", 20, 1)}))

	listing, err := store.LatestPosts(ctx, []string{"n8n"}, 5)
	require.NoError(t, err)
	require.Len(t, listing["n8n"], 1, "same permalink is one post")

	got := listing["n8n"][0]
	assert.Equal(t, "v2", got.Title)
	assert.Equal(t, 21, got.Engagement)
	assert.True(t, got.CreatedAt.Equal(first), "created_at = %v", got.CreatedAt)
	assert.True(t, got.LastUpdated.Equal(second), "last_updated = %v", got.LastUpdated)
}

func TestNewRedisStoreFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(config.Redis{Addr: addr})
	assert.Error(t, err)
}

func TestNewRedisStorePings(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(config.Redis{Addr: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
