package cache

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipe-manager/internal/core/ingredient"
	"recipe-manager/internal/core/recipe"
	"recipe-manager/internal/infrastructure/config"
	"recipe-manager/internal/pkg/common"
)

func sampleDraft(t *testing.T) *recipe.Draft {
	t.Helper()
	d := recipe.Build(recipe.Source{
		Title:        "Pancakes",
		Yields:       "4 servings",
		Ingredients:  []string{"1 cup flour", "2 eggs"},
		Instructions: "Whisk flour and eggs\nFry",
		SourceURL:    "https://example.com/pancakes",
	}, recipe.NewDistributor(ingredient.DefaultVocabulary()))
	return &d
}

func newTestManager(maxSize int, ttl time.Duration) *Manager {
	return NewManager(config.CacheConfig{Enabled: true, MaxSize: maxSize, TTL: ttl})
}

func TestKey(t *testing.T) {
	key := Key("https://example.com/pancakes")
	assert.True(t, strings.HasPrefix(key, "recipe:draft:"))
	assert.Len(t, strings.TrimPrefix(key, "recipe:draft:"), 64)
	assert.Equal(t, key, Key("https://example.com/pancakes"))
	assert.NotEqual(t, key, Key("https://example.com/waffles"))
}

func TestManagerGetSet(t *testing.T) {
	m := newTestManager(10, time.Hour)
	defer m.Close()
	ctx := context.Background()
	url := "https://example.com/pancakes"

	_, err := m.Get(ctx, url)
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	draft := sampleDraft(t)
	require.NoError(t, m.Set(ctx, url, draft))

	got, err := m.Get(ctx, url)
	require.NoError(t, err)
	if diff := cmp.Diff(draft, got); diff != "" {
		t.Errorf("cached draft mismatch (-want +got):\n%s", diff)
	}

	// 回傳的是副本
	got.Steps[0].Action = "changed"
	again, err := m.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, "Whisk flour and eggs", again.Steps[0].Action)

	stats := m.Stats()
	assert.Equal(t, 1, stats.Size)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRatio, 1e-9)
}

func TestManagerExpiry(t *testing.T) {
	m := newTestManager(10, time.Minute)
	defer m.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "https://example.com/a", sampleDraft(t)))
	_, err := m.Get(ctx, "https://example.com/a")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = m.Get(ctx, "https://example.com/a")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	assert.Equal(t, 0, m.Stats().Size)
	assert.Equal(t, int64(1), m.Stats().Evictions)
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m := newTestManager(2, time.Hour)
	defer m.Close()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	require.NoError(t, m.Set(ctx, "a", sampleDraft(t)))
	require.NoError(t, m.Set(ctx, "b", sampleDraft(t)))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	// 覆寫不觸發淘汰
	require.NoError(t, m.Set(ctx, "a", sampleDraft(t)))
	assert.Equal(t, int64(0), m.Stats().Evictions)

	require.NoError(t, m.Set(ctx, "c", sampleDraft(t)))
	assert.Equal(t, 2, m.Stats().Size)
	assert.Equal(t, int64(1), m.Stats().Evictions)

	_, err = m.Get(ctx, "b")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestManagerCloseStopsCleanup(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: 5, TTL: time.Hour, CleanupInterval: time.Millisecond})
	require.NoError(t, m.Set(context.Background(), "a", sampleDraft(t)))

	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 0, m.Stats().Size)
}

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	store, err := NewStore(ctx, &config.Config{Cache: config.CacheConfig{Enabled: false}})
	require.NoError(t, err)
	assert.Nil(t, store)

	store, err = NewStore(ctx, &config.Config{Cache: config.CacheConfig{Enabled: true, Backend: "memory", MaxSize: 1, TTL: time.Hour}})
	require.NoError(t, err)
	require.IsType(t, &Manager{}, store)
	assert.NoError(t, store.Ping(ctx))
	require.NoError(t, store.Close())

	_, err = NewStore(ctx, &config.Config{Cache: config.CacheConfig{Enabled: true, Backend: "disk"}})
	assert.Error(t, err)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	store, err := NewRedisStore(ctx, config.RedisConfig{Addr: addr, DB: 15}, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	url := "https://example.com/redis-test-" + common.GenerateUUID()
	_, err = store.Get(ctx, url)
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	draft := sampleDraft(t)
	require.NoError(t, store.Set(ctx, url, draft))

	got, err := store.Get(ctx, url)
	require.NoError(t, err)
	if diff := cmp.Diff(draft, got); diff != "" {
		t.Errorf("cached draft mismatch (-want +got):\n%s", diff)
	}
}
