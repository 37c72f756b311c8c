package postgres

import (
	imageDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/image"
	"github.com/pricebook-hq/pricebook-api/internal/image"
	"gorm.io/gorm"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) image.RepositoryAPI {
	return &ImageRepository{db: db}
}

func (r *ImageRepository) GetByCompany(companyID int64) ([]*imageDatamodel.Image, error) {
	var images []*imageDatamodel.Image
	err := r.db.Where("company_id = ?", companyID).Order("created_at DESC").Find(&images).Error
	return images, err
}

func (r *ImageRepository) GetByID(id int64) (*imageDatamodel.Image, error) {
	var found imageDatamodel.Image
	err := r.db.Where("id = ?", id).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *ImageRepository) Create(record *imageDatamodel.Image) error {
	return r.db.Create(record).Error
}

// Delete removes the image and its entry attachments in one transaction.
func (r *ImageRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", id).Delete(&imageDatamodel.EntryImage{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&imageDatamodel.Image{}).Error
	})
}

func (r *ImageRepository) GetForEntry(entryID int64) ([]*imageDatamodel.Image, error) {
	var images []*imageDatamodel.Image
	err := r.db.
		Joins("JOIN entry_images ON entry_images.image_id = images.id").
		Where("entry_images.entry_id = ?", entryID).
		Order("images.created_at ASC").
		Find(&images).Error
	return images, err
}

func (r *ImageRepository) FindAttachment(entryID, imageID int64) (*imageDatamodel.EntryImage, error) {
	var found imageDatamodel.EntryImage
	err := r.db.Where("entry_id = ? AND image_id = ?", entryID, imageID).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *ImageRepository) Attach(entryID, imageID int64) error {
	return r.db.Create(&imageDatamodel.EntryImage{EntryID: entryID, ImageID: imageID}).Error
}

func (r *ImageRepository) Detach(entryID, imageID int64) error {
	return r.db.Where("entry_id = ? AND image_id = ?", entryID, imageID).Delete(&imageDatamodel.EntryImage{}).Error
}
