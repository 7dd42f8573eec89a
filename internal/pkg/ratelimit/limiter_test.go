package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLocalLimiter(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewLocalLimiter(LimiterConfig{Capacity: 3, RatePS: 1})
	l.now = clock.now
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.True(t, l.Allow(ctx, "a"), "應該允許第 %d 次請求", i+1)
	}
	require.False(t, l.Allow(ctx, "a"), "超過容量限制應該被拒絕")
	require.True(t, l.Allow(ctx, "b"), "不同 key 各自計算")

	clock.advance(time.Second)
	require.True(t, l.Allow(ctx, "a"), "等待後應該有新的 token 可用")
}

func TestLocalLimiterEvictsIdleKeys(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	l := NewLocalLimiter(LimiterConfig{Capacity: 1, RatePS: 1})
	l.now = clock.now
	ctx := context.Background()

	l.Allow(ctx, "old")
	clock.advance(time.Hour)
	l.Allow(ctx, "new")

	l.mu.Lock()
	defer l.mu.Unlock()
	require.Len(t, l.limiters, 1)
}

type RedisTokenBucketTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	clock  *fakeClock
	bucket *RedisTokenBucket
	ctx    context.Context
}

func TestRedisTokenBucketSuite(t *testing.T) {
	suite.Run(t, new(RedisTokenBucketTestSuite))
}

func (s *RedisTokenBucketTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.clock = &fakeClock{t: time.Unix(1_700_000_000, 0)}
	logger := zerolog.Nop()
	s.bucket = NewRedisTokenBucket(s.client, LimiterConfig{Capacity: 5, RatePS: 2}, &logger)
	s.bucket.now = s.clock.now
	s.ctx = context.Background()
}

func (s *RedisTokenBucketTestSuite) TearDownTest() {
	s.client.Close()
}

func (s *RedisTokenBucketTestSuite) TestBasicRateLimit() {
	for i := 0; i < 5; i++ {
		require.True(s.T(), s.bucket.Allow(s.ctx, "basic"), "應該允許第 %d 次請求", i+1)
	}
	require.False(s.T(), s.bucket.Allow(s.ctx, "basic"))

	// 每秒補 2 個
	s.clock.advance(time.Second)
	require.True(s.T(), s.bucket.Allow(s.ctx, "basic"))
	require.True(s.T(), s.bucket.Allow(s.ctx, "basic"))
	require.False(s.T(), s.bucket.Allow(s.ctx, "basic"))
}

func (s *RedisTokenBucketTestSuite) TestMultipleKeys() {
	for i := 0; i < 5; i++ {
		require.True(s.T(), s.bucket.Allow(s.ctx, "key1"))
	}
	require.False(s.T(), s.bucket.Allow(s.ctx, "key1"))
	require.True(s.T(), s.bucket.Allow(s.ctx, "key2"))
	require.True(s.T(), s.mr.Exists("ratelimit:key1"))
}

func (s *RedisTokenBucketTestSuite) TestRedisDownDenies() {
	s.mr.Close()
	require.False(s.T(), s.bucket.Allow(s.ctx, "down"))
}

func TestRateLimitMiddleware(t *testing.T) {
	l := NewLocalLimiter(LimiterConfig{Capacity: 1, RatePS: 0.001})
	h := NewRateLimitMiddleware(l, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.RemoteAddr = "10.0.0.1:5555"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	other := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	other.RemoteAddr = "10.0.0.2:5555"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	require.Equal(t, http.StatusNoContent, rec.Code)
}
