package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisClient 介面定義，*redis.Client 與 *redis.ClusterClient 皆可
type RedisClient = redis.Scripter

var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local rate = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])

	-- 取得或初始化 bucket 狀態
	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local currentTokens = tonumber(bucket[1])
	local lastRefill = tonumber(bucket[2])
	if currentTokens == nil then
		currentTokens = capacity
		lastRefill = now
	end

	-- 毫秒
	local elapsed = math.max(0, now - lastRefill) / 1000
	currentTokens = math.min(capacity, currentTokens + elapsed * rate)

	local allowed = 0
	if currentTokens >= 1 then
		currentTokens = currentTokens - 1
		allowed = 1
	end
	redis.call('HSET', key, 'tokens', tostring(currentTokens), 'last_refill', tostring(now))
	redis.call('EXPIRE', key, 60)
	return allowed
`)

// RedisTokenBucket 多個 instance 共用同一個 bucket
type RedisTokenBucket struct {
	client RedisClient
	config LimiterConfig
	prefix string
	logger *zerolog.Logger
	now    func() time.Time
}

func NewRedisTokenBucket(client RedisClient, config LimiterConfig, logger *zerolog.Logger) *RedisTokenBucket {
	return &RedisTokenBucket{
		client: client,
		config: config.orDefault(),
		prefix: "ratelimit:",
		logger: logger,
		now:    time.Now,
	}
}

// Allow redis 錯誤時拒絕請求
func (r *RedisTokenBucket) Allow(ctx context.Context, key string) bool {
	result, err := tokenBucketScript.Run(
		ctx,
		r.client,
		[]string{r.prefix + key},
		r.config.Capacity,
		r.config.RatePS,
		r.now().UnixMilli(),
	).Int64()
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("rate limit script failed")
		return false
	}
	return result == 1
}
