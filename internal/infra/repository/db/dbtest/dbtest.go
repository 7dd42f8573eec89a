// Package dbtest 提供 repository 與 service 測試共用的 sqlite 資料庫與測試資料
package dbtest

import (
	"context"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/RoyceAzure/lab/roundsale/internal/infra/repository/db"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewMemoryDB 每次呼叫都是獨立的空資料庫
func NewMemoryDB() (*db.UnifiedDBImpl, error) {
	conn, err := db.GetSqliteConn(fmt.Sprintf("file:%s?mode=memory", uuid.NewString()))
	if err != nil {
		return nil, err
	}
	store := db.NewUnifiedDB(conn)
	if err := store.InitMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// PostgresDSNEnv 設定後才會執行 postgres 整合測試
// 例: host=localhost port=5432 user=postgres password=postgres dbname=roundsale_test sslmode=disable
const PostgresDSNEnv = "ROUNDSALE_TEST_POSTGRES_DSN"

// NewPostgresDB 連線並 migrate，資料不會清除，測試需自行建立獨立的 shop
func NewPostgresDB(dsn string) (*db.UnifiedDBImpl, error) {
	conn, err := db.GetPostgresConn(dsn)
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	store := db.NewUnifiedDB(conn)
	if err := store.InitMigrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// Truncate 依相依順序清空資料表
func Truncate(store db.UnifiedDB) {
	conn := store.GetDB()
	for _, table := range []string{"order_items", "orders", "customers", "round_product_locks", "rounds", "products", "shops"} {
		conn.Exec("DELETE FROM " + table)
	}
}

func NewShop(ctx context.Context, store db.UnifiedDB, rates []byte) (*model.Shop, error) {
	id := uuid.NewString()
	shop := &model.Shop{
		ID:            id,
		Slug:          "shop-" + id[:8],
		Name:          "Test Shop",
		ShippingRates: rates,
	}
	return shop, store.CreateShop(ctx, shop)
}

// NewOpenRound 一小時前開團，一小時後結束
func NewOpenRound(ctx context.Context, store db.UnifiedDB, shopID string) (*model.Round, error) {
	now := time.Now()
	round := &model.Round{
		ID:       uuid.NewString(),
		ShopID:   shopID,
		Name:     "Round",
		OpensAt:  now.Add(-time.Hour),
		ClosesAt: now.Add(time.Hour),
		Status:   model.RoundStatusOpen,
	}
	return round, store.CreateRound(ctx, round)
}

// NewProduct limit 為 nil 代表不限量
func NewProduct(ctx context.Context, store db.UnifiedDB, shopID string, price int64, limit *int) (*model.Product, error) {
	id := uuid.NewString()
	product := &model.Product{
		ID:            id,
		ShopID:        shopID,
		Name:          "Product " + id[:6],
		Price:         decimal.NewFromInt(price),
		LimitPerRound: limit,
		IsAvailable:   true,
	}
	return product, store.CreateProduct(ctx, product)
}

func IntPtr(v int) *int {
	return &v
}
