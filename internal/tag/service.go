package tag

import (
	"log/slog"

	"github.com/pricebook-hq/pricebook-api/internal"
	tagDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/tag"
)

type RepositoryAPI interface {
	GetByCompany(companyID int64) ([]*tagDatamodel.Tag, error)
	GetByID(id int64) (*tagDatamodel.Tag, error)
	GetByName(companyID int64, name string) (*tagDatamodel.Tag, error)
	Create(tag *tagDatamodel.Tag) error
	Update(tag *tagDatamodel.Tag) error
	Delete(id int64) error
	GetForEntry(entryID int64) ([]*tagDatamodel.Tag, error)
	FindAttachment(entryID, tagID int64) (*tagDatamodel.EntryTag, error)
	Attach(entryID, tagID int64) error
	Detach(entryID, tagID int64) error
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

func (s *Service) CreateTag(companyID int64, dto CreateTagRequest) (*Tag, error) {
	existing, err := s.repo.GetByName(companyID, dto.Name)
	if err != nil {
		s.logger.Error("failed to check tag name", "error", err, "company_id", companyID)
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrTagNameTaken
	}

	dataTag := &tagDatamodel.Tag{
		CompanyID: companyID,
		Name:      dto.Name,
		Color:     dto.Color,
	}
	if err := s.repo.Create(dataTag); err != nil {
		s.logger.Error("failed to create tag", "error", err, "company_id", companyID)
		return nil, err
	}

	return FromDataModel(dataTag), nil
}

func (s *Service) ListTags(companyID int64) ([]*Tag, error) {
	dataTags, err := s.repo.GetByCompany(companyID)
	if err != nil {
		s.logger.Error("failed to list tags", "error", err, "company_id", companyID)
		return nil, err
	}

	tags := make([]*Tag, 0, len(dataTags))
	for _, dataTag := range dataTags {
		tags = append(tags, FromDataModel(dataTag))
	}
	return tags, nil
}

func (s *Service) UpdateTag(id, companyID int64, dto UpdateTagRequest) (*Tag, error) {
	dataTag, err := s.fetchOwned(id, companyID)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != dataTag.Name {
		existing, err := s.repo.GetByName(companyID, *dto.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, internal.ErrTagNameTaken
		}
		dataTag.Name = *dto.Name
	}
	if dto.Color != nil {
		dataTag.Color = *dto.Color
	}

	if err := s.repo.Update(dataTag); err != nil {
		s.logger.Error("failed to update tag", "error", err, "tag_id", id)
		return nil, err
	}

	return FromDataModel(dataTag), nil
}

// DeleteTag removes the tag and every attachment pointing at it.
func (s *Service) DeleteTag(id, companyID int64) error {
	if _, err := s.fetchOwned(id, companyID); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete tag", "error", err, "tag_id", id)
		return err
	}

	s.logger.Info("tag deleted", "tag_id", id, "company_id", companyID)
	return nil
}

func (s *Service) ListEntryTags(entryID int64) ([]*Tag, error) {
	dataTags, err := s.repo.GetForEntry(entryID)
	if err != nil {
		s.logger.Error("failed to list entry tags", "error", err, "entry_id", entryID)
		return nil, err
	}

	tags := make([]*Tag, 0, len(dataTags))
	for _, dataTag := range dataTags {
		tags = append(tags, FromDataModel(dataTag))
	}
	return tags, nil
}

// AttachTag links a tag to an entry. Attaching an already attached tag
// is a no-op so clients can retry safely.
func (s *Service) AttachTag(entryID, tagID, companyID int64) error {
	if _, err := s.fetchOwned(tagID, companyID); err != nil {
		return err
	}

	existing, err := s.repo.FindAttachment(entryID, tagID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if err := s.repo.Attach(entryID, tagID); err != nil {
		s.logger.Error("failed to attach tag", "error", err, "entry_id", entryID, "tag_id", tagID)
		return err
	}
	return nil
}

func (s *Service) DetachTag(entryID, tagID, companyID int64) error {
	if _, err := s.fetchOwned(tagID, companyID); err != nil {
		return err
	}

	existing, err := s.repo.FindAttachment(entryID, tagID)
	if err != nil {
		return err
	}
	if existing == nil {
		return internal.ErrTagNotFound
	}

	return s.repo.Detach(entryID, tagID)
}

// fetchOwned loads a tag and enforces company scope. Tags of other
// companies read as not found.
func (s *Service) fetchOwned(id, companyID int64) (*tagDatamodel.Tag, error) {
	dataTag, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dataTag == nil || dataTag.CompanyID != companyID {
		return nil, internal.ErrTagNotFound
	}
	return dataTag, nil
}
