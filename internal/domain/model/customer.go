package model

// Customer 以 (ShopID, ContactInfo) 識別，結帳時 upsert
type Customer struct {
	ID          string `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ShopID      string `gorm:"type:varchar(36);not null;uniqueIndex:idx_customer_shop_contact" json:"shop_id"`
	ContactInfo string `gorm:"type:varchar(255);not null;uniqueIndex:idx_customer_shop_contact" json:"contact_info"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Phone       string `gorm:"type:varchar(50)" json:"phone"`
	LineID      string `gorm:"type:varchar(100)" json:"line_id,omitempty"`
	Address     string `gorm:"type:text" json:"address,omitempty"`
	BaseModel
}

func (Customer) TableName() string {
	return "customers"
}
