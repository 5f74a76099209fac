package model

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	cache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
)

func newTestRedisCache(t *testing.T) *redisCandidateCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	return &redisCandidateCache{client: client, ttl: time.Minute}
}

func TestRedisCandidateCacheMissBeforeSet(t *testing.T) {
	c := newTestRedisCache(t)
	_, ok := c.Get()
	require.False(t, ok)
}

func TestRedisCandidateCacheRoundTrips(t *testing.T) {
	c := newTestRedisCache(t)
	recs := []ModelRecord{{Id: 1, ModelName: "gpt-4", Priority: 1}, {Id: 2, ModelName: "claude", Priority: 2}}

	c.Set(recs)
	got, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, recs, got)
}

func TestRedisCandidateCacheFlushClearsEntry(t *testing.T) {
	c := newTestRedisCache(t)
	c.Set([]ModelRecord{{Id: 1, ModelName: "gpt-4"}})

	c.Flush()
	_, ok := c.Get()
	require.False(t, ok)
}

func TestLocalCandidateCacheRoundTrips(t *testing.T) {
	c := &localCandidateCache{c: cache.New(time.Minute, time.Minute)}
	recs := []ModelRecord{{Id: 1, ModelName: "gpt-4"}}

	_, ok := c.Get()
	require.False(t, ok)

	c.Set(recs)
	got, ok := c.Get()
	require.True(t, ok)
	require.Equal(t, recs, got)

	c.Flush()
	_, ok = c.Get()
	require.False(t, ok)
}
