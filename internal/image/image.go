package image

import (
	"time"

	imageDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/image"
)

// Image is catalog artwork metadata. The binary itself lives in an
// external object store addressed by StorageKey; this service only
// tracks and validates the descriptor.
type Image struct {
	ID           int64     `json:"id"`
	CompanyID    int64     `json:"company_id"`
	FileName     string    `json:"file_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	StorageKey   string    `json:"storage_key"`
	Title        string    `json:"title,omitempty"`
	AltText      string    `json:"alt_text,omitempty"`
	UploadedByID int64     `json:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func FromDataModel(m *imageDatamodel.Image) *Image {
	return &Image{
		ID:           m.ID,
		CompanyID:    m.CompanyID,
		FileName:     m.FileName,
		ContentType:  m.ContentType,
		SizeBytes:    m.SizeBytes,
		StorageKey:   m.StorageKey,
		Title:        m.Title,
		AltText:      m.AltText,
		UploadedByID: m.UploadedByID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
