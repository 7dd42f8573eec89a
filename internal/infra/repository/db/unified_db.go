package db

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
type UnifiedDB interface {
	GetDB() *gorm.DB
	InitMigrate() error
	// ExecTx fn 內只能使用傳入的 UnifiedDB，回傳錯誤時整個交易 rollback
	ExecTx(ctx context.Context, fn func(tx UnifiedDB) error) error

	IShopRepository
	IRoundRepository
	IProductRepository
	ICustomerRepository
	IOrderRepository
	IInventoryRepository
}

type IShopRepository interface {
	CreateShop(ctx context.Context, shop *model.Shop) error
	GetShopByID(ctx context.Context, id string) (*model.Shop, error)
	GetShopBySlug(ctx context.Context, slug string) (*model.Shop, error)
	UpdateShop(ctx context.Context, shop *model.Shop) error
}

type IRoundRepository interface {
	CreateRound(ctx context.Context, round *model.Round) error
	GetRoundByID(ctx context.Context, id string) (*model.Round, error)
	GetRoundByIDForShare(ctx context.Context, id string) (*model.Round, error)
	GetRoundByIDForUpdate(ctx context.Context, id string) (*model.Round, error)
	ListRoundsByShopID(ctx context.Context, shopID string) ([]model.Round, error)
	UpdateRoundStatus(ctx context.Context, id string, status model.RoundStatus) error
	DeleteRound(ctx context.Context, id string) error
}

type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) ([]model.Product, error)
	ListProductsByShopID(ctx context.Context, shopID string, onlyAvailable bool) ([]model.Product, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
}

type ICustomerRepository interface {
	UpsertCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	GetCustomerByID(ctx context.Context, id string) (*model.Customer, error)
}

type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	GetOrderByID(ctx context.Context, id string) (*model.Order, error)
	GetOrderByCode(ctx context.Context, code string) (*model.Order, error)
	ListOrdersByRoundID(ctx context.Context, roundID string, status model.OrderStatus) ([]model.Order, error)
	CountOrdersByRoundID(ctx context.Context, roundID string) (int64, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to model.OrderStatus, fields map[string]any) (bool, error)
	UpdateOrderDiscount(ctx context.Context, id string, expected model.OrderStatus, discount, grandTotal decimal.Decimal) (bool, error)
}

type IInventoryRepository interface {
	LockRoundProducts(ctx context.Context, roundID string, productIDs []string) error
	GetSoldQuantities(ctx context.Context, roundID string, productIDs []string) (map[string]int, error)
	GetRoundSalesSummary(ctx context.Context, roundID string) ([]model.ProductSales, error)
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	dbDao *DbDao
	*ShopRepo
	*RoundRepo
	*ProductRepo
	*CustomerRepo
	*OrderRepo
	*InventoryRepo
}

func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		dbDao:         dbDao,
		ShopRepo:      NewShopRepo(dbDao),
		RoundRepo:     NewRoundRepo(dbDao),
		ProductRepo:   NewProductRepo(dbDao),
		CustomerRepo:  NewCustomerRepo(dbDao),
		OrderRepo:     NewOrderRepo(dbDao),
		InventoryRepo: NewInventoryRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

func (u *UnifiedDBImpl) GetDB() *gorm.DB {
	return u.dbDao.DB
}

func (u *UnifiedDBImpl) ExecTx(ctx context.Context, fn func(tx UnifiedDB) error) error {
	return u.dbDao.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUnifiedDB(tx))
	})
}

var (
	_ UnifiedDB            = (*UnifiedDBImpl)(nil)
	_ IShopRepository      = (*UnifiedDBImpl)(nil)
	_ IRoundRepository     = (*UnifiedDBImpl)(nil)
	_ IProductRepository   = (*UnifiedDBImpl)(nil)
	_ ICustomerRepository  = (*UnifiedDBImpl)(nil)
	_ IOrderRepository     = (*UnifiedDBImpl)(nil)
	_ IInventoryRepository = (*UnifiedDBImpl)(nil)
)
