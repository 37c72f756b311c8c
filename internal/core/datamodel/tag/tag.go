package tag

import "time"

type Tag struct {
	ID        int64     `gorm:"primaryKey"`
	CompanyID int64     `gorm:"column:company_id;index;not null"`
	Name      string    `gorm:"column:name;not null"`
	Color     string    `gorm:"column:color"`
	CreatedAt time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:now()"`
}

// EntryTag links a tag to a catalog entry.
type EntryTag struct {
	ID      int64 `gorm:"primaryKey"`
	EntryID int64 `gorm:"column:entry_id;index;not null"`
	TagID   int64 `gorm:"column:tag_id;index;not null"`
}
