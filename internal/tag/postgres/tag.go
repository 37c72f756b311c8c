package postgres

import (
	tagDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/tag"
	"github.com/pricebook-hq/pricebook-api/internal/tag"
	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) tag.RepositoryAPI {
	return &TagRepository{db: db}
}

func (r *TagRepository) GetByCompany(companyID int64) ([]*tagDatamodel.Tag, error) {
	var tags []*tagDatamodel.Tag
	err := r.db.Where("company_id = ?", companyID).Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *TagRepository) GetByID(id int64) (*tagDatamodel.Tag, error) {
	var found tagDatamodel.Tag
	err := r.db.Where("id = ?", id).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *TagRepository) GetByName(companyID int64, name string) (*tagDatamodel.Tag, error) {
	var found tagDatamodel.Tag
	err := r.db.Where("company_id = ? AND name = ?", companyID, name).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *TagRepository) Create(record *tagDatamodel.Tag) error {
	return r.db.Create(record).Error
}

func (r *TagRepository) Update(record *tagDatamodel.Tag) error {
	return r.db.Save(record).Error
}

// Delete removes the tag and its entry attachments in one transaction.
func (r *TagRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&tagDatamodel.EntryTag{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&tagDatamodel.Tag{}).Error
	})
}

func (r *TagRepository) GetForEntry(entryID int64) ([]*tagDatamodel.Tag, error) {
	var tags []*tagDatamodel.Tag
	err := r.db.
		Joins("JOIN entry_tags ON entry_tags.tag_id = tags.id").
		Where("entry_tags.entry_id = ?", entryID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}

func (r *TagRepository) FindAttachment(entryID, tagID int64) (*tagDatamodel.EntryTag, error) {
	var found tagDatamodel.EntryTag
	err := r.db.Where("entry_id = ? AND tag_id = ?", entryID, tagID).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *TagRepository) Attach(entryID, tagID int64) error {
	return r.db.Create(&tagDatamodel.EntryTag{EntryID: entryID, TagID: tagID}).Error
}

func (r *TagRepository) Detach(entryID, tagID int64) error {
	return r.db.Where("entry_id = ? AND tag_id = ?", entryID, tagID).Delete(&tagDatamodel.EntryTag{}).Error
}
