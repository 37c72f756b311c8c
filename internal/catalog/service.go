package catalog

import (
	"log/slog"
	"strings"

	"github.com/pricebook-hq/pricebook-api/internal"
	catalogDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/catalog"
)

const defaultCurrency = "USD"

type RepositoryAPI interface {
	ListEntries(companyID int64, query ListEntriesQuery) ([]*catalogDatamodel.Entry, int64, error)
	GetEntriesPaged(companyID int64, offset, limit int) ([]*catalogDatamodel.Entry, error)
	GetEntryByID(id int64) (*catalogDatamodel.Entry, error)
	FindEntryByIdentity(companyID int64, name, maker, modelNo string) (*catalogDatamodel.Entry, error)
	CreateEntry(entry *catalogDatamodel.Entry) error
	UpdateEntry(entry *catalogDatamodel.Entry) error
	DeleteEntry(id int64) error

	GetCategories(companyID int64) ([]*catalogDatamodel.Category, error)
	GetCategoryByID(id int64) (*catalogDatamodel.Category, error)
	CreateCategory(category *catalogDatamodel.Category) error
	UpdateCategory(category *catalogDatamodel.Category) error
	DeleteCategory(id int64) error
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

func (s *Service) CreateEntry(companyID int64, dto CreateEntryRequest) (*Entry, error) {
	entry := &Entry{
		CompanyID:      companyID,
		CategoryID:     dto.CategoryID,
		Name:           strings.TrimSpace(dto.Name),
		Maker:          strings.TrimSpace(dto.Maker),
		ModelNo:        strings.TrimSpace(dto.ModelNo),
		YearFrom:       dto.YearFrom,
		YearTo:         dto.YearTo,
		PriceLowCents:  dto.PriceLowCents,
		PriceHighCents: dto.PriceHighCents,
		Currency:       strings.ToUpper(dto.Currency),
		Notes:          dto.Notes,
	}
	if entry.Currency == "" {
		entry.Currency = defaultCurrency
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkCategoryOwnership(entry.CategoryID, companyID); err != nil {
		return nil, err
	}

	dataEntry := EntryToDataModel(entry)
	if err := s.repo.CreateEntry(dataEntry); err != nil {
		s.logger.Error("failed to create entry", "error", err, "company_id", companyID)
		return nil, err
	}

	s.logger.Info("catalog entry created", "entry_id", dataEntry.ID, "company_id", companyID)
	return EntryFromDataModel(dataEntry), nil
}

func (s *Service) GetEntry(id, companyID int64) (*Entry, error) {
	dataEntry, err := s.fetchOwnedEntry(id, companyID)
	if err != nil {
		return nil, err
	}
	return EntryFromDataModel(dataEntry), nil
}

func (s *Service) ListEntries(companyID int64, query ListEntriesQuery) (*EntriesPage, error) {
	dataEntries, total, err := s.repo.ListEntries(companyID, query)
	if err != nil {
		s.logger.Error("failed to list entries", "error", err, "company_id", companyID)
		return nil, err
	}

	entries := make([]*Entry, 0, len(dataEntries))
	for _, dataEntry := range dataEntries {
		entries = append(entries, EntryFromDataModel(dataEntry))
	}

	return &EntriesPage{
		Entries:  entries,
		Total:    total,
		Page:     query.Page,
		PageSize: query.PageSize,
	}, nil
}

func (s *Service) UpdateEntry(id, companyID int64, dto UpdateEntryRequest) (*Entry, error) {
	dataEntry, err := s.fetchOwnedEntry(id, companyID)
	if err != nil {
		return nil, err
	}

	entry := EntryFromDataModel(dataEntry)
	if dto.CategoryID != nil {
		entry.CategoryID = dto.CategoryID
	}
	if dto.Name != nil {
		entry.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Maker != nil {
		entry.Maker = strings.TrimSpace(*dto.Maker)
	}
	if dto.ModelNo != nil {
		entry.ModelNo = strings.TrimSpace(*dto.ModelNo)
	}
	if dto.YearFrom != nil {
		entry.YearFrom = *dto.YearFrom
	}
	if dto.YearTo != nil {
		entry.YearTo = *dto.YearTo
	}
	if dto.PriceLowCents != nil {
		entry.PriceLowCents = *dto.PriceLowCents
	}
	if dto.PriceHighCents != nil {
		entry.PriceHighCents = *dto.PriceHighCents
	}
	if dto.Currency != nil {
		entry.Currency = strings.ToUpper(*dto.Currency)
	}
	if dto.Notes != nil {
		entry.Notes = *dto.Notes
	}

	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if dto.CategoryID != nil {
		if err := s.checkCategoryOwnership(entry.CategoryID, companyID); err != nil {
			return nil, err
		}
	}

	updated := EntryToDataModel(entry)
	updated.CreatedAt = dataEntry.CreatedAt
	if err := s.repo.UpdateEntry(updated); err != nil {
		s.logger.Error("failed to update entry", "error", err, "entry_id", id)
		return nil, err
	}

	return EntryFromDataModel(updated), nil
}

func (s *Service) DeleteEntry(id, companyID int64) error {
	if _, err := s.fetchOwnedEntry(id, companyID); err != nil {
		return err
	}

	if err := s.repo.DeleteEntry(id); err != nil {
		s.logger.Error("failed to delete entry", "error", err, "entry_id", id)
		return err
	}

	s.logger.Info("catalog entry deleted", "entry_id", id, "company_id", companyID)
	return nil
}

// SetPublished flips the publication flag. Published entries are the
// ones exposed to read-only viewers and exports by default.
func (s *Service) SetPublished(id, companyID int64, published bool) (*Entry, error) {
	dataEntry, err := s.fetchOwnedEntry(id, companyID)
	if err != nil {
		return nil, err
	}

	dataEntry.IsPublished = published
	if err := s.repo.UpdateEntry(dataEntry); err != nil {
		s.logger.Error("failed to update publication state", "error", err, "entry_id", id)
		return nil, err
	}

	return EntryFromDataModel(dataEntry), nil
}

func (s *Service) ListCategories(companyID int64) ([]*Category, error) {
	dataCategories, err := s.repo.GetCategories(companyID)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err, "company_id", companyID)
		return nil, err
	}

	categories := make([]*Category, 0, len(dataCategories))
	for _, dataCategory := range dataCategories {
		categories = append(categories, CategoryFromDataModel(dataCategory))
	}
	return categories, nil
}

func (s *Service) CreateCategory(companyID int64, dto CreateCategoryRequest) (*Category, error) {
	dataCategory := &catalogDatamodel.Category{
		CompanyID:   companyID,
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		IsActive:    true,
	}
	if err := s.repo.CreateCategory(dataCategory); err != nil {
		s.logger.Error("failed to create category", "error", err, "company_id", companyID)
		return nil, err
	}

	return CategoryFromDataModel(dataCategory), nil
}

func (s *Service) UpdateCategory(id, companyID int64, dto UpdateCategoryRequest) (*Category, error) {
	dataCategory, err := s.fetchOwnedCategory(id, companyID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && strings.TrimSpace(*dto.Name) != "" {
		dataCategory.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		dataCategory.Description = *dto.Description
	}
	if dto.IsActive != nil {
		dataCategory.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdateCategory(dataCategory); err != nil {
		s.logger.Error("failed to update category", "error", err, "category_id", id)
		return nil, err
	}

	return CategoryFromDataModel(dataCategory), nil
}

// DeleteCategory removes the category; its entries stay and become
// uncategorized.
func (s *Service) DeleteCategory(id, companyID int64) error {
	if _, err := s.fetchOwnedCategory(id, companyID); err != nil {
		return err
	}

	if err := s.repo.DeleteCategory(id); err != nil {
		s.logger.Error("failed to delete category", "error", err, "category_id", id)
		return err
	}

	s.logger.Info("category deleted", "category_id", id, "company_id", companyID)
	return nil
}

func (s *Service) fetchOwnedEntry(id, companyID int64) (*catalogDatamodel.Entry, error) {
	dataEntry, err := s.repo.GetEntryByID(id)
	if err != nil {
		return nil, err
	}
	if dataEntry == nil || dataEntry.CompanyID != companyID {
		return nil, internal.ErrEntryNotFound
	}
	return dataEntry, nil
}

func (s *Service) fetchOwnedCategory(id, companyID int64) (*catalogDatamodel.Category, error) {
	dataCategory, err := s.repo.GetCategoryByID(id)
	if err != nil {
		return nil, err
	}
	if dataCategory == nil || dataCategory.CompanyID != companyID {
		return nil, internal.ErrCategoryNotFound
	}
	return dataCategory, nil
}

func (s *Service) checkCategoryOwnership(categoryID *int64, companyID int64) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.fetchOwnedCategory(*categoryID, companyID)
	return err
}
