package permissions

import "errors"

// CreateRoleRequest creates a role owned by the caller's company, or a
// global system role when Global is set.
type CreateRoleRequest struct {
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Permissions []string `json:"permissions"`
	IsDefault   bool     `json:"is_default"`
	Global      bool     `json:"global,omitempty"`
}

func (dto CreateRoleRequest) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if dto.DisplayName == "" {
		return errors.New("display_name is required")
	}
	return nil
}

// UpdateRoleRequest carries partial updates: nil fields stay unchanged.
type UpdateRoleRequest struct {
	DisplayName *string  `json:"display_name,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	IsDefault   *bool    `json:"is_default,omitempty"`
}

type AssignRoleRequest struct {
	RoleID int64 `json:"role_id"`
}

func (dto AssignRoleRequest) Validate() error {
	if dto.RoleID <= 0 {
		return errors.New("role_id is required")
	}
	return nil
}

type RolesResponse struct {
	Roles []*Role `json:"roles"`
}

type RevokeAllResponse struct {
	Revoked int `json:"revoked"`
}
