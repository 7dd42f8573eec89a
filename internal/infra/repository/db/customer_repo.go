package db

import (
	"context"

	"github.com/RoyceAzure/lab/roundsale/internal/domain/model"
	"gorm.io/gorm/clause"
)

type CustomerRepo struct {
	db *DbDao
}

func NewCustomerRepo(db *DbDao) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// UpsertCustomer 以 (shop_id, contact_info) 查找，已存在就沿用原資料
// ON CONFLICT DO NOTHING 避免兩筆結帳同時建立同一位顧客
func (s *CustomerRepo) UpsertCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shop_id"}, {Name: "contact_info"}},
		DoNothing: true,
	}).Create(customer).Error
	if err != nil {
		return nil, err
	}

	var existing model.Customer
	err = s.db.WithContext(ctx).
		Where("shop_id = ? AND contact_info = ?", customer.ShopID, customer.ContactInfo).
		First(&existing).Error
	if err != nil {
		return nil, err
	}
	return &existing, nil
}

func (s *CustomerRepo) GetCustomerByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}
