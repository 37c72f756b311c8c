package tag

import (
	"errors"
	"regexp"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type CreateTagRequest struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

func (dto CreateTagRequest) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.Color != "" && !colorPattern.MatchString(dto.Color) {
		return errors.New("color must be a hex value like #aabbcc")
	}
	return nil
}

// UpdateTagRequest carries partial updates: nil fields stay unchanged.
type UpdateTagRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (dto UpdateTagRequest) Validate() error {
	if dto.Name != nil && *dto.Name == "" {
		return errors.New("name cannot be empty")
	}
	if dto.Color != nil && *dto.Color != "" && !colorPattern.MatchString(*dto.Color) {
		return errors.New("color must be a hex value like #aabbcc")
	}
	return nil
}

type AttachTagRequest struct {
	TagID int64 `json:"tag_id"`
}

func (dto AttachTagRequest) Validate() error {
	if dto.TagID <= 0 {
		return errors.New("tag_id is required")
	}
	return nil
}

type TagsResponse struct {
	Tags []*Tag `json:"tags"`
}
