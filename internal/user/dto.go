package user

import (
	"errors"
	"regexp"

	"github.com/pricebook-hq/pricebook-api/internal/permissions"
)

const minPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type ProvisionUserRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (dto ProvisionUserRequest) Validate() error {
	if dto.Email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(dto.Email) {
		return errors.New("email is not valid")
	}
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Password) < minPasswordLength {
		return errors.New("password must be at least 8 characters")
	}
	return nil
}

// ProvisionedUser is the creation response: the account plus the
// default role assignments granted during provisioning.
type ProvisionedUser struct {
	User        *User                             `json:"user"`
	Assignments []*permissions.UserRoleAssignment `json:"assignments"`
}

// CurrentUser is the /users/me response shape.
type CurrentUser struct {
	User        *User               `json:"user"`
	Roles       []*permissions.Role `json:"roles"`
	Permissions []string            `json:"permissions"`
}

type UsersResponse struct {
	Users []*User `json:"users"`
}
