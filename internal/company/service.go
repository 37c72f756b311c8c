package company

import (
	"log/slog"

	"github.com/pricebook-hq/pricebook-api/internal"
	companyDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/company"
)

type RepositoryAPI interface {
	GetAll() ([]*companyDatamodel.Company, error)
	GetByID(id int64) (*companyDatamodel.Company, error)
	GetBySlug(slug string) (*companyDatamodel.Company, error)
	Create(company *companyDatamodel.Company) error
	Update(company *companyDatamodel.Company) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateCompany registers a new tenant. Slugs identify companies in
// URLs and exports, so they must be unique across the system.
func (s *Service) CreateCompany(name, slug string) (*Company, error) {
	existing, err := s.repo.GetBySlug(slug)
	if err != nil {
		s.logger.Error("failed to check slug uniqueness", "error", err, "slug", slug)
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrSlugTaken
	}

	dataCompany := &companyDatamodel.Company{
		Name:     name,
		Slug:     slug,
		IsActive: true,
	}
	if err := s.repo.Create(dataCompany); err != nil {
		s.logger.Error("failed to create company", "error", err, "slug", slug)
		return nil, err
	}

	s.logger.Info("company created", "company_id", dataCompany.ID, "slug", slug)
	return FromDataModel(dataCompany), nil
}

func (s *Service) GetCompany(id int64) (*Company, error) {
	dataCompany, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dataCompany == nil {
		return nil, internal.ErrCompanyNotFound
	}
	return FromDataModel(dataCompany), nil
}

// ListActiveCompanies returns every active tenant; inactive ones are
// hidden rather than deleted.
func (s *Service) ListActiveCompanies() ([]*Company, error) {
	dataCompanies, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list companies", "error", err)
		return nil, err
	}

	companies := make([]*Company, 0, len(dataCompanies))
	for _, dataCompany := range dataCompanies {
		domainCompany := FromDataModel(dataCompany)
		if domainCompany.IsActiveCompany() {
			companies = append(companies, domainCompany)
		}
	}
	return companies, nil
}

// DeactivateCompany hides a tenant without destroying its data.
func (s *Service) DeactivateCompany(id int64) error {
	dataCompany, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if dataCompany == nil {
		return internal.ErrCompanyNotFound
	}

	dataCompany.IsActive = false
	if err := s.repo.Update(dataCompany); err != nil {
		s.logger.Error("failed to deactivate company", "error", err, "company_id", id)
		return err
	}

	s.logger.Info("company deactivated", "company_id", id)
	return nil
}
