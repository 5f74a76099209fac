package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	cache "github.com/patrickmn/go-cache"

	"github.com/Chyrain/LLMGateway/common"
)

// candidateCache backs ListCandidates' short-lived cache. It is swappable
// so a single gateway process uses the in-memory go-cache default while a
// fleet of gateway processes sharing one database can opt into a Redis-
// backed cache and stay consistent with each other (spec.md §5's
// linearizable-reads requirement only binds the database; the candidate
// list cache is a read-throughput optimization layered on top).
type candidateCache interface {
	Get() ([]ModelRecord, bool)
	Set(recs []ModelRecord)
	Flush()
}

// newCandidateCache picks the Redis-backed cache when common.InitRedisClient
// connected successfully, else falls back to the in-process go-cache — the
// same fallback shape the teacher's cache layer uses for its ability cache.
func newCandidateCache() candidateCache {
	if common.IsRedisEnabled() {
		return &redisCandidateCache{client: common.RDB, ttl: 2 * time.Second}
	}
	return &localCandidateCache{c: cache.New(2*time.Second, 10*time.Second)}
}

type localCandidateCache struct {
	c *cache.Cache
}

func (l *localCandidateCache) Get() ([]ModelRecord, bool) {
	v, ok := l.c.Get(candidatesCacheKey)
	if !ok {
		return nil, false
	}
	return v.([]ModelRecord), true
}

func (l *localCandidateCache) Set(recs []ModelRecord) {
	l.c.SetDefault(candidatesCacheKey, recs)
}

func (l *localCandidateCache) Flush() {
	l.c.Flush()
}

// redisCandidateCache stores the candidate list as one JSON blob under a
// fixed key, so every gateway process sharing REDIS_CONN_STRING observes
// the same cached candidate list instead of each holding its own
// independently-expiring copy (the failure mode go-cache alone has in a
// multi-process deployment: one process's cache can serve a candidate the
// database no longer considers eligible for up to its own TTL window).
type redisCandidateCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

const redisCandidatesKey = "llmgateway:candidates"

func (r *redisCandidateCache) Get() ([]ModelRecord, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	val, err := r.client.Get(ctx, redisCandidatesKey).Result()
	if err != nil {
		return nil, false
	}

	var recs []ModelRecord
	if err := json.Unmarshal([]byte(val), &recs); err != nil {
		return nil, false
	}
	return recs, true
}

func (r *redisCandidateCache) Set(recs []ModelRecord) {
	data, err := json.Marshal(recs)
	if err != nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = r.client.Set(ctx, redisCandidatesKey, data, r.ttl).Err()
}

func (r *redisCandidateCache) Flush() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = r.client.Del(ctx, redisCandidatesKey).Err()
}
