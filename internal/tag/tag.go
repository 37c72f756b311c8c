package tag

import (
	"time"

	tagDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/tag"
)

// Tag is a company-scoped label attached to catalog entries. Names are
// unique within a company.
type Tag struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromDataModel(m *tagDatamodel.Tag) *Tag {
	return &Tag{
		ID:        m.ID,
		CompanyID: m.CompanyID,
		Name:      m.Name,
		Color:     m.Color,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
