package postgres

import (
	"strings"

	"github.com/pricebook-hq/pricebook-api/internal/catalog"
	catalogDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/catalog"
	imageDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/image"
	tagDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/tag"
	"gorm.io/gorm"
)

type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) catalog.RepositoryAPI {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ListEntries(companyID int64, query catalog.ListEntriesQuery) ([]*catalogDatamodel.Entry, int64, error) {
	scope := r.db.Model(&catalogDatamodel.Entry{}).Where("company_id = ?", companyID)

	if query.CategoryID != nil {
		scope = scope.Where("category_id = ?", *query.CategoryID)
	}
	if query.Published != nil {
		scope = scope.Where("is_published = ?", *query.Published)
	}
	if query.Search != "" {
		pattern := "%" + strings.ToLower(query.Search) + "%"
		scope = scope.Where(
			"LOWER(name) LIKE ? OR LOWER(maker) LIKE ? OR LOWER(model_no) LIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*catalogDatamodel.Entry
	err := scope.
		Order("name ASC").
		Offset(query.Offset()).
		Limit(query.PageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// GetEntriesPaged walks the catalog in stable id order for exports.
func (r *CatalogRepository) GetEntriesPaged(companyID int64, offset, limit int) ([]*catalogDatamodel.Entry, error) {
	var entries []*catalogDatamodel.Entry
	err := r.db.
		Where("company_id = ?", companyID).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *CatalogRepository) GetEntryByID(id int64) (*catalogDatamodel.Entry, error) {
	var found catalogDatamodel.Entry
	err := r.db.Where("id = ?", id).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *CatalogRepository) FindEntryByIdentity(companyID int64, name, maker, modelNo string) (*catalogDatamodel.Entry, error) {
	var found catalogDatamodel.Entry
	err := r.db.
		Where("company_id = ? AND name = ? AND maker = ? AND model_no = ?", companyID, name, maker, modelNo).
		First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *CatalogRepository) CreateEntry(record *catalogDatamodel.Entry) error {
	return r.db.Create(record).Error
}

func (r *CatalogRepository) UpdateEntry(record *catalogDatamodel.Entry) error {
	return r.db.Save(record).Error
}

// DeleteEntry removes the entry with its tag and image attachments.
func (r *CatalogRepository) DeleteEntry(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", id).Delete(&tagDatamodel.EntryTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("entry_id = ?", id).Delete(&imageDatamodel.EntryImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&catalogDatamodel.Entry{}).Error
	})
}

func (r *CatalogRepository) GetCategories(companyID int64) ([]*catalogDatamodel.Category, error) {
	var categories []*catalogDatamodel.Category
	err := r.db.Where("company_id = ?", companyID).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CatalogRepository) GetCategoryByID(id int64) (*catalogDatamodel.Category, error) {
	var found catalogDatamodel.Category
	err := r.db.Where("id = ?", id).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *CatalogRepository) CreateCategory(record *catalogDatamodel.Category) error {
	return r.db.Create(record).Error
}

func (r *CatalogRepository) UpdateCategory(record *catalogDatamodel.Category) error {
	return r.db.Save(record).Error
}

// DeleteCategory orphans the category's entries instead of deleting
// them; they stay listed as uncategorized.
func (r *CatalogRepository) DeleteCategory(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&catalogDatamodel.Entry{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&catalogDatamodel.Category{}).Error
	})
}
