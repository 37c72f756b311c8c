package image

import "errors"

type RegisterImageRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Title       string `json:"title,omitempty"`
	AltText     string `json:"alt_text,omitempty"`
}

func (dto RegisterImageRequest) Validate() error {
	if dto.FileName == "" {
		return errors.New("file_name is required")
	}
	if dto.ContentType == "" {
		return errors.New("content_type is required")
	}
	if dto.SizeBytes <= 0 {
		return errors.New("size_bytes must be positive")
	}
	return nil
}

type AttachImageRequest struct {
	ImageID int64 `json:"image_id"`
}

func (dto AttachImageRequest) Validate() error {
	if dto.ImageID <= 0 {
		return errors.New("image_id is required")
	}
	return nil
}

type ImagesResponse struct {
	Images []*Image `json:"images"`
}
