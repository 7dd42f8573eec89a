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

var ErrCartConflict = errors.New("cart was modified concurrently")

const cartUpdateRetry = 3

// CartRepo session 購物車，整個 Cart 以 JSON 存在 cart:{sessionID}
// 每次寫入都會刷新 TTL
type CartRepo struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepo(client *redis.Client, ttl time.Duration) *CartRepo {
	return &CartRepo{client: client, ttl: ttl}
}

func generateCartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// Get 不存在時回傳空購物車
func (r *CartRepo) Get(ctx context.Context, sessionID string) (*model.Cart, error) {
	return r.get(ctx, r.client, sessionID)
}

func (r *CartRepo) get(ctx context.Context, c redis.Cmdable, sessionID string) (*model.Cart, error) {
	raw, err := c.Get(ctx, generateCartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.NewCart(sessionID, "", ""), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	var cart model.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	cart.SessionID = sessionID
	return &cart, nil
}

// Update 以 WATCH 做樂觀鎖，fn 回傳錯誤時不寫入
func (r *CartRepo) Update(ctx context.Context, sessionID string, fn func(cart *model.Cart) error) (*model.Cart, error) {
	key := generateCartKey(sessionID)
	var result *model.Cart

	txf := func(tx *redis.Tx) error {
		cart, err := r.get(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		if err := fn(cart); err != nil {
			return err
		}
		value, err := json.Marshal(cart)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, value, r.ttl)
			return nil
		})
		if err == nil {
			result = cart
		}
		return err
	}

	for i := 0; i < cartUpdateRetry; i++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrCartConflict
}

func (r *CartRepo) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, generateCartKey(sessionID)).Err()
}
