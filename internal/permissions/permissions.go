package permissions

import (
	"strings"
	"time"

	rbacDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/rbac"
)

// Role is a named, reusable bundle of permission patterns. A nil
// CompanyID marks a global role visible to every company.
type Role struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DisplayName  string    `json:"display_name"`
	Permissions  []string  `json:"permissions"`
	IsDefault    bool      `json:"is_default"`
	IsSystemRole bool      `json:"is_system_role"`
	CompanyID    *int64    `json:"company_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (r *Role) IsGlobal() bool {
	return r.CompanyID == nil
}

// UserRoleAssignment grants one role to one user within one company.
type UserRoleAssignment struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	RoleID       int64     `json:"role_id"`
	CompanyID    int64     `json:"company_id"`
	AssignedByID *int64    `json:"assigned_by_id,omitempty"`
	AssignedAt   time.Time `json:"assigned_at"`
}

// AssignResult is the structured outcome of an assignment attempt.
// A duplicate assignment is an expected business outcome the caller
// branches on, not an error.
type AssignResult struct {
	Success    bool                `json:"success"`
	Assignment *UserRoleAssignment `json:"assignment,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// patternMatches reports whether a granted permission pattern satisfies
// a required permission. A grant applies when it is the exact required
// string, the global wildcard "*", or the required resource's own
// wildcard ("resource:*"). Both sides split on the first colon, so a
// wildcard in the resource segment of a compound pattern never reaches
// across resources.
func patternMatches(granted, required string) bool {
	if granted == required || granted == "*" {
		return true
	}

	grantedResource, grantedAction := splitPattern(granted)
	requiredResource, requiredAction := splitPattern(required)

	if grantedResource != requiredResource {
		return false
	}
	return grantedAction == "*" || grantedAction == requiredAction
}

func splitPattern(pattern string) (resource, action string) {
	parts := strings.SplitN(pattern, ":", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// ValidatePattern rejects permission patterns that cannot participate
// in matching: empty strings, bare separators, embedded whitespace.
func ValidatePattern(pattern string) bool {
	if pattern == "" || pattern == ":" {
		return false
	}
	if strings.ContainsAny(pattern, " \t\n") {
		return false
	}
	resource, _ := splitPattern(pattern)
	return resource != ""
}

func RoleFromDataModel(m *rbacDatamodel.Role) *Role {
	return &Role{
		ID:           m.ID,
		Name:         m.Name,
		DisplayName:  m.DisplayName,
		Permissions:  m.Permissions,
		IsDefault:    m.IsDefault,
		IsSystemRole: m.IsSystemRole,
		CompanyID:    m.CompanyID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func RoleToDataModel(r *Role) *rbacDatamodel.Role {
	return &rbacDatamodel.Role{
		ID:           r.ID,
		Name:         r.Name,
		DisplayName:  r.DisplayName,
		Permissions:  r.Permissions,
		IsDefault:    r.IsDefault,
		IsSystemRole: r.IsSystemRole,
		CompanyID:    r.CompanyID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func AssignmentFromDataModel(m *rbacDatamodel.UserRoleAssignment) *UserRoleAssignment {
	return &UserRoleAssignment{
		ID:           m.ID,
		UserID:       m.UserID,
		RoleID:       m.RoleID,
		CompanyID:    m.CompanyID,
		AssignedByID: m.AssignedByID,
		AssignedAt:   m.AssignedAt,
	}
}
