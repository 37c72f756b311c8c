package catalog

import (
	"time"

	"github.com/pricebook-hq/pricebook-api/internal"
	catalogDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/catalog"
)

const (
	// Year bounds for instrument builds. Entries outside this window
	// are almost certainly data-entry mistakes.
	minCatalogYear = 1800
	maxCatalogYear = 2100
)

// Entry is one price-guide line item: an instrument or piece of gear
// with the market price range a company quotes for it.
type Entry struct {
	ID             int64     `json:"id"`
	CompanyID      int64     `json:"company_id"`
	CategoryID     *int64    `json:"category_id,omitempty"`
	Name           string    `json:"name"`
	Maker          string    `json:"maker,omitempty"`
	ModelNo        string    `json:"model_no,omitempty"`
	YearFrom       int       `json:"year_from,omitempty"`
	YearTo         int       `json:"year_to,omitempty"`
	PriceLowCents  int64     `json:"price_low_cents"`
	PriceHighCents int64     `json:"price_high_cents"`
	Currency       string    `json:"currency"`
	Notes          string    `json:"notes,omitempty"`
	IsPublished    bool      `json:"is_published"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate enforces the entry invariants shared by the API, the
// importer and the seeder.
func (e *Entry) Validate() error {
	if e.Name == "" {
		return internal.NewValidationError("name is required", internal.ErrCodeInvalidName)
	}
	if e.PriceLowCents < 0 || e.PriceHighCents < 0 {
		return internal.NewValidationError("prices cannot be negative", internal.ErrCodeInvalidPrice)
	}
	if e.PriceLowCents > e.PriceHighCents {
		return internal.NewValidationError("low price cannot exceed high price", internal.ErrCodeInvalidPrice)
	}
	if e.Currency == "" || len(e.Currency) != 3 {
		return internal.NewValidationError("currency must be a 3-letter code", internal.ErrCodeInvalidCurrency)
	}
	if err := validateYear(e.YearFrom); err != nil {
		return err
	}
	if err := validateYear(e.YearTo); err != nil {
		return err
	}
	if e.YearFrom != 0 && e.YearTo != 0 && e.YearFrom > e.YearTo {
		return internal.NewValidationError("year_from cannot exceed year_to", internal.ErrCodeInvalidYear)
	}
	return nil
}

func validateYear(year int) error {
	if year == 0 {
		return nil
	}
	if year < minCatalogYear || year > maxCatalogYear {
		return internal.NewValidationError("year is out of range", internal.ErrCodeInvalidYear)
	}
	return nil
}

// Category groups entries inside one company's catalog.
type Category struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func EntryFromDataModel(m *catalogDatamodel.Entry) *Entry {
	return &Entry{
		ID:             m.ID,
		CompanyID:      m.CompanyID,
		CategoryID:     m.CategoryID,
		Name:           m.Name,
		Maker:          m.Maker,
		ModelNo:        m.ModelNo,
		YearFrom:       m.YearFrom,
		YearTo:         m.YearTo,
		PriceLowCents:  m.PriceLowCents,
		PriceHighCents: m.PriceHighCents,
		Currency:       m.Currency,
		Notes:          m.Notes,
		IsPublished:    m.IsPublished,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func EntryToDataModel(e *Entry) *catalogDatamodel.Entry {
	return &catalogDatamodel.Entry{
		ID:             e.ID,
		CompanyID:      e.CompanyID,
		CategoryID:     e.CategoryID,
		Name:           e.Name,
		Maker:          e.Maker,
		ModelNo:        e.ModelNo,
		YearFrom:       e.YearFrom,
		YearTo:         e.YearTo,
		PriceLowCents:  e.PriceLowCents,
		PriceHighCents: e.PriceHighCents,
		Currency:       e.Currency,
		Notes:          e.Notes,
		IsPublished:    e.IsPublished,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func CategoryFromDataModel(m *catalogDatamodel.Category) *Category {
	return &Category{
		ID:          m.ID,
		CompanyID:   m.CompanyID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
