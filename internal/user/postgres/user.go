package postgres

import (
	userDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/user"
	"github.com/pricebook-hq/pricebook-api/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var found userDatamodel.User
	err := r.db.Where("email = ?", email).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var found userDatamodel.User
	err := r.db.Where("id = ?", id).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *UserRepository) GetByCompany(companyID int64) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.Where("company_id = ?", companyID).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Create(record *userDatamodel.User) error {
	return r.db.Create(record).Error
}

func (r *UserRepository) Update(record *userDatamodel.User) error {
	return r.db.Save(record).Error
}
