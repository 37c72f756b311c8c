package image

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pricebook-hq/pricebook-api/internal"
	imageDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/image"
)

type RepositoryAPI interface {
	GetByCompany(companyID int64) ([]*imageDatamodel.Image, error)
	GetByID(id int64) (*imageDatamodel.Image, error)
	Create(image *imageDatamodel.Image) error
	Delete(id int64) error
	GetForEntry(entryID int64) ([]*imageDatamodel.Image, error)
	FindAttachment(entryID, imageID int64) (*imageDatamodel.EntryImage, error)
	Attach(entryID, imageID int64) error
	Detach(entryID, imageID int64) error
}

type Service struct {
	repo         RepositoryAPI
	maxSizeBytes int64
	allowedTypes map[string]struct{}
	logger       *slog.Logger
}

// NewService builds the image library. allowedTypes is the
// comma-separated content-type allowlist from configuration.
func NewService(repo RepositoryAPI, maxSizeBytes int64, allowedTypes string, logger *slog.Logger) *Service {
	allowed := make(map[string]struct{})
	for _, contentType := range strings.Split(allowedTypes, ",") {
		contentType = strings.TrimSpace(contentType)
		if contentType != "" {
			allowed[strings.ToLower(contentType)] = struct{}{}
		}
	}

	return &Service{
		repo:         repo,
		maxSizeBytes: maxSizeBytes,
		allowedTypes: allowed,
		logger:       logger,
	}
}

// RegisterImage validates the descriptor and mints the storage key the
// uploader will write the binary under.
func (s *Service) RegisterImage(companyID, uploadedBy int64, dto RegisterImageRequest) (*Image, error) {
	contentType := strings.ToLower(dto.ContentType)
	if _, ok := s.allowedTypes[contentType]; !ok {
		return nil, internal.NewValidationError(
			fmt.Sprintf("content type %q is not allowed", dto.ContentType), internal.ErrCodeInvalidFile)
	}
	if dto.SizeBytes > s.maxSizeBytes {
		return nil, internal.NewValidationError(
			fmt.Sprintf("image exceeds the %d byte limit", s.maxSizeBytes), internal.ErrCodeInvalidFile)
	}

	dataImage := &imageDatamodel.Image{
		CompanyID:    companyID,
		FileName:     dto.FileName,
		ContentType:  contentType,
		SizeBytes:    dto.SizeBytes,
		StorageKey:   uuid.New().String(),
		Title:        dto.Title,
		AltText:      dto.AltText,
		UploadedByID: uploadedBy,
	}
	if err := s.repo.Create(dataImage); err != nil {
		s.logger.Error("failed to register image", "error", err, "company_id", companyID)
		return nil, err
	}

	s.logger.Info("image registered",
		"image_id", dataImage.ID, "company_id", companyID, "storage_key", dataImage.StorageKey)
	return FromDataModel(dataImage), nil
}

func (s *Service) ListImages(companyID int64) ([]*Image, error) {
	dataImages, err := s.repo.GetByCompany(companyID)
	if err != nil {
		s.logger.Error("failed to list images", "error", err, "company_id", companyID)
		return nil, err
	}

	images := make([]*Image, 0, len(dataImages))
	for _, dataImage := range dataImages {
		images = append(images, FromDataModel(dataImage))
	}
	return images, nil
}

// DeleteImage removes the descriptor and its entry attachments. The
// binary in the object store is the uploader's to clean up.
func (s *Service) DeleteImage(id, companyID int64) error {
	if _, err := s.fetchOwned(id, companyID); err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete image", "error", err, "image_id", id)
		return err
	}

	s.logger.Info("image deleted", "image_id", id, "company_id", companyID)
	return nil
}

func (s *Service) ListEntryImages(entryID int64) ([]*Image, error) {
	dataImages, err := s.repo.GetForEntry(entryID)
	if err != nil {
		s.logger.Error("failed to list entry images", "error", err, "entry_id", entryID)
		return nil, err
	}

	images := make([]*Image, 0, len(dataImages))
	for _, dataImage := range dataImages {
		images = append(images, FromDataModel(dataImage))
	}
	return images, nil
}

// AttachImage links an image to an entry. Repeat attaches are no-ops.
func (s *Service) AttachImage(entryID, imageID, companyID int64) error {
	if _, err := s.fetchOwned(imageID, companyID); err != nil {
		return err
	}

	existing, err := s.repo.FindAttachment(entryID, imageID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if err := s.repo.Attach(entryID, imageID); err != nil {
		s.logger.Error("failed to attach image", "error", err, "entry_id", entryID, "image_id", imageID)
		return err
	}
	return nil
}

func (s *Service) DetachImage(entryID, imageID, companyID int64) error {
	if _, err := s.fetchOwned(imageID, companyID); err != nil {
		return err
	}

	existing, err := s.repo.FindAttachment(entryID, imageID)
	if err != nil {
		return err
	}
	if existing == nil {
		return internal.ErrImageNotFound
	}

	return s.repo.Detach(entryID, imageID)
}

func (s *Service) fetchOwned(id, companyID int64) (*imageDatamodel.Image, error) {
	dataImage, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if dataImage == nil || dataImage.CompanyID != companyID {
		return nil, internal.ErrImageNotFound
	}
	return dataImage, nil
}
