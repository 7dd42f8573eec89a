package db

import (
	"errors"
	"strings"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	lockStrengthUpdate = "UPDATE"
	lockStrengthShare  = "SHARE"
)

type DbDao struct {
	*gorm.DB
}

func NewDbDao(conn *gorm.DB) *DbDao {
	return &DbDao{
		DB: conn,
	}
}

// 初始化db schema
// 冪等性
func (d *DbDao) InitMigrate() error {
	return d.AutoMigrate(
		&model.Shop{},
		&model.Round{},
		&model.Product{},
		&model.Customer{},
		&model.Order{},
		&model.OrderItem{},
		&model.RoundProductLock{},
	)
}

// withLock postgres 加上 FOR UPDATE / FOR SHARE
// sqlite 沒有 row lock，單一連線已經序列化所有交易
func (d *DbDao) withLock(tx *gorm.DB, strength string) *gorm.DB {
	if d.Dialector.Name() != DriverPostgres {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: strength})
}

// IsUniqueViolation 訂單代碼或顧客重複
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// ErrRecordNotFound 讓上層不需直接 import gorm
var ErrRecordNotFound = gorm.ErrRecordNotFound
