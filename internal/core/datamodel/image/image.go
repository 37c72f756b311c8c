package image

import "time"

type Image struct {
	ID           int64     `gorm:"primaryKey"`
	CompanyID    int64     `gorm:"column:company_id;index;not null"`
	FileName     string    `gorm:"column:file_name;not null"`
	ContentType  string    `gorm:"column:content_type;not null"`
	SizeBytes    int64     `gorm:"column:size_bytes;not null"`
	StorageKey   string    `gorm:"column:storage_key;uniqueIndex;not null"`
	Title        string    `gorm:"column:title"`
	AltText      string    `gorm:"column:alt_text"`
	UploadedByID int64     `gorm:"column:uploaded_by_id"`
	CreatedAt    time.Time `gorm:"column:created_at;default:now()"`
	UpdatedAt    time.Time `gorm:"column:updated_at;default:now()"`
}

// EntryImage links an image to a catalog entry.
type EntryImage struct {
	ID      int64 `gorm:"primaryKey"`
	EntryID int64 `gorm:"column:entry_id;index;not null"`
	ImageID int64 `gorm:"column:image_id;index;not null"`
}
