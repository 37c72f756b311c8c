package company

import (
	"errors"
	"regexp"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

type CreateCompanyRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (dto CreateCompanyRequest) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.Slug == "" {
		return errors.New("slug is required")
	}
	if !slugPattern.MatchString(dto.Slug) {
		return errors.New("slug must be lowercase letters, digits and single dashes")
	}
	return nil
}

type CompaniesResponse struct {
	Companies []*Company `json:"companies"`
}
