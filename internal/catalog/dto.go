package catalog

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type CreateEntryRequest struct {
	CategoryID     *int64 `json:"category_id,omitempty"`
	Name           string `json:"name"`
	Maker          string `json:"maker,omitempty"`
	ModelNo        string `json:"model_no,omitempty"`
	YearFrom       int    `json:"year_from,omitempty"`
	YearTo         int    `json:"year_to,omitempty"`
	PriceLowCents  int64  `json:"price_low_cents"`
	PriceHighCents int64  `json:"price_high_cents"`
	Currency       string `json:"currency,omitempty"`
	Notes          string `json:"notes,omitempty"`
}

// UpdateEntryRequest carries partial updates: nil fields stay unchanged.
type UpdateEntryRequest struct {
	CategoryID     *int64  `json:"category_id,omitempty"`
	Name           *string `json:"name,omitempty"`
	Maker          *string `json:"maker,omitempty"`
	ModelNo        *string `json:"model_no,omitempty"`
	YearFrom       *int    `json:"year_from,omitempty"`
	YearTo         *int    `json:"year_to,omitempty"`
	PriceLowCents  *int64  `json:"price_low_cents,omitempty"`
	PriceHighCents *int64  `json:"price_high_cents,omitempty"`
	Currency       *string `json:"currency,omitempty"`
	Notes          *string `json:"notes,omitempty"`
}

// ListEntriesQuery is parsed from the list endpoint's query string.
type ListEntriesQuery struct {
	Page       int
	PageSize   int
	CategoryID *int64
	Search     string
	Published  *bool
}

// ParseListEntriesQuery applies defaults and clamps the page size.
func ParseListEntriesQuery(values url.Values) ListEntriesQuery {
	query := ListEntriesQuery{
		Page:     1,
		PageSize: defaultPageSize,
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		query.Page = page
	}
	if size, err := strconv.Atoi(values.Get("page_size")); err == nil && size > 0 {
		if size > maxPageSize {
			size = maxPageSize
		}
		query.PageSize = size
	}
	if categoryID, err := strconv.ParseInt(values.Get("category_id"), 10, 64); err == nil && categoryID > 0 {
		query.CategoryID = &categoryID
	}
	if search := strings.TrimSpace(values.Get("search")); search != "" {
		query.Search = search
	}
	if published := values.Get("published"); published != "" {
		isPublished := published == "true"
		query.Published = &isPublished
	}

	return query
}

func (q ListEntriesQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// EntriesPage is the paginated list response.
type EntriesPage struct {
	Entries  []*Entry `json:"entries"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (dto CreateCategoryRequest) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

// UpdateCategoryRequest carries partial updates: nil fields stay unchanged.
type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CategoriesResponse struct {
	Categories []*Category `json:"categories"`
}
