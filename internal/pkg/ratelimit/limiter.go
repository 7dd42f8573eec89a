package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type LimiterConfig struct {
	Capacity int     // bucket 容量
	RatePS   float64 // tokens/秒
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity: 20,
		RatePS:   5,
	}
}

func (c LimiterConfig) orDefault() LimiterConfig {
	def := GetDefaultLimiterConfig()
	if c.Capacity <= 0 {
		c.Capacity = def.Capacity
	}
	if c.RatePS <= 0 {
		c.RatePS = def.RatePS
	}
	return c
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter 單機版，每個 key 一個 token bucket
type LocalLimiter struct {
	mu       sync.Mutex
	config   LimiterConfig
	limiters map[string]*localEntry
	idleTTL  time.Duration
	now      func() time.Time
}

func NewLocalLimiter(config LimiterConfig) *LocalLimiter {
	return &LocalLimiter{
		config:   config.orDefault(),
		limiters: make(map[string]*localEntry),
		idleTTL:  10 * time.Minute,
		now:      time.Now,
	}
}

func (l *LocalLimiter) Allow(ctx context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.limiters[key]
	if !ok {
		l.evictIdle(now)
		entry = &localEntry{limiter: rate.NewLimiter(rate.Limit(l.config.RatePS), l.config.Capacity)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}

// evictIdle 清掉閒置的 key，避免 map 無限成長
func (l *LocalLimiter) evictIdle(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) > l.idleTTL {
			delete(l.limiters, key)
		}
	}
}
