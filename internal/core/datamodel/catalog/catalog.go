package catalog

import "time"

// Entry is one price-guide line item, always owned by a company.
type Entry struct {
	ID             int64     `gorm:"primaryKey"`
	CompanyID      int64     `gorm:"column:company_id;index;not null"`
	CategoryID     *int64    `gorm:"column:category_id;index"`
	Name           string    `gorm:"column:name;not null"`
	Maker          string    `gorm:"column:maker"`
	ModelNo        string    `gorm:"column:model_no"`
	YearFrom       int       `gorm:"column:year_from"`
	YearTo         int       `gorm:"column:year_to"`
	PriceLowCents  int64     `gorm:"column:price_low_cents;default:0"`
	PriceHighCents int64     `gorm:"column:price_high_cents;default:0"`
	Currency       string    `gorm:"column:currency;default:USD"`
	Notes          string    `gorm:"column:notes"`
	IsPublished    bool      `gorm:"column:is_published;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt      time.Time `gorm:"column:updated_at;default:now()"`
}

func (Entry) TableName() string {
	return "catalog_entries"
}

// Category groups entries inside one company's catalog.
type Category struct {
	ID          int64     `gorm:"primaryKey"`
	CompanyID   int64     `gorm:"column:company_id;index;not null"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Category) TableName() string {
	return "catalog_categories"
}
