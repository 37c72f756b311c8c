package postgres

import (
	"github.com/pricebook-hq/pricebook-api/internal/company"
	companyDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/company"
	"gorm.io/gorm"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetAll() ([]*companyDatamodel.Company, error) {
	var companies []*companyDatamodel.Company
	err := r.db.Order("name ASC").Find(&companies).Error
	return companies, err
}

func (r *CompanyRepository) GetByID(id int64) (*companyDatamodel.Company, error) {
	var found companyDatamodel.Company
	err := r.db.Where("id = ?", id).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *CompanyRepository) GetBySlug(slug string) (*companyDatamodel.Company, error) {
	var found companyDatamodel.Company
	err := r.db.Where("slug = ?", slug).First(&found).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &found, nil
}

func (r *CompanyRepository) Create(record *companyDatamodel.Company) error {
	return r.db.Create(record).Error
}

func (r *CompanyRepository) Update(record *companyDatamodel.Company) error {
	return r.db.Save(record).Error
}
