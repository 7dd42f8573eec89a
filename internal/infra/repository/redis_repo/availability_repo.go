package redis_repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/redis/go-redis/v9"
)

// AvailabilityRepo 開團剩餘數量快取，只用於前台顯示
// 結帳的庫存檢查一律讀 DB
type AvailabilityRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAvailabilityRepo(client *redis.Client, ttl time.Duration) *AvailabilityRepo {
	return &AvailabilityRepo{client: client, ttl: ttl}
}

func generateAvailabilityKey(roundID string) string {
	return fmt.Sprintf("round:%s:availability", roundID)
}

// Get cache miss 時回傳 (nil, false, nil)
func (r *AvailabilityRepo) Get(ctx context.Context, roundID string) ([]model.ProductAvailability, bool, error) {
	raw, err := r.client.Get(ctx, generateAvailabilityKey(roundID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []model.ProductAvailability
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (r *AvailabilityRepo) Set(ctx context.Context, roundID string, items []model.ProductAvailability) error {
	value, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, generateAvailabilityKey(roundID), value, r.ttl).Err()
}

func (r *AvailabilityRepo) Invalidate(ctx context.Context, roundID string) error {
	return r.client.Del(ctx, generateAvailabilityKey(roundID)).Err()
}
