package permissions

import (
	"log/slog"
	"time"

	"github.com/pricebook-hq/pricebook-api/internal"
	rbacDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/rbac"
)

// MsgRoleAlreadyAssigned is the structured rejection returned when an
// identical (user, role, company) assignment already exists.
const MsgRoleAlreadyAssigned = "Role is already assigned to this user"

type RepositoryAPI interface {
	// FindRolesForUser returns the role of every assignment the user
	// holds in the company, in assignment order.
	FindRolesForUser(userID, companyID int64) ([]*rbacDatamodel.Role, error)
	FindAssignment(userID, roleID, companyID int64) (*rbacDatamodel.UserRoleAssignment, error)
	FindAssignments(userID, companyID int64) ([]*rbacDatamodel.UserRoleAssignment, error)
	CreateAssignment(assignment *rbacDatamodel.UserRoleAssignment) error
	CreateAssignments(assignments []*rbacDatamodel.UserRoleAssignment) error
	DeleteAssignment(assignment *rbacDatamodel.UserRoleAssignment) error
	DeleteAssignments(assignments []*rbacDatamodel.UserRoleAssignment) error
	// FindVisibleRoles returns global roles plus roles owned by the
	// company. FindDefaultRoles narrows the same visibility predicate
	// to roles flagged as defaults.
	FindVisibleRoles(companyID int64) ([]*rbacDatamodel.Role, error)
	FindDefaultRoles(companyID int64) ([]*rbacDatamodel.Role, error)
	// FindRoleByName looks up one exact scope: companyID nil means the
	// global scope, non-nil means that company only.
	FindRoleByName(name string, companyID *int64) (*rbacDatamodel.Role, error)
	FindRoleByID(id int64) (*rbacDatamodel.Role, error)
	CreateRole(role *rbacDatamodel.Role) error
	UpdateRole(role *rbacDatamodel.Role) error
	DeleteRole(id int64) error
}

type Service struct {
	repo   RepositoryAPI
	cache  *permissionCache
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  newPermissionCache(),
		logger: logger,
	}
}

// GetUserPermissions resolves the deduplicated union of permission
// patterns across the user's roles in the company. Results are cached
// per (user, company); a cache hit answers without touching the store,
// and empty results are cached like any other.
func (s *Service) GetUserPermissions(userID, companyID int64) ([]string, error) {
	if perms, ok := s.cache.get(userID, companyID); ok {
		return perms, nil
	}

	roles, err := s.repo.FindRolesForUser(userID, companyID)
	if err != nil {
		s.logger.Error("failed to load roles for user",
			"error", err, "user_id", userID, "company_id", companyID)
		return nil, err
	}

	seen := make(map[string]struct{})
	perms := make([]string, 0)
	for _, role := range roles {
		for _, pattern := range role.Permissions {
			if _, dup := seen[pattern]; dup {
				continue
			}
			seen[pattern] = struct{}{}
			perms = append(perms, pattern)
		}
	}

	s.cache.set(userID, companyID, perms)
	return perms, nil
}

func (s *Service) HasPermission(userID int64, permission string, companyID int64) (bool, error) {
	perms, err := s.GetUserPermissions(userID, companyID)
	if err != nil {
		return false, err
	}

	for _, granted := range perms {
		if patternMatches(granted, permission) {
			return true, nil
		}
	}
	return false, nil
}

// HasAllPermissions is vacuously true for an empty requirement list.
func (s *Service) HasAllPermissions(userID int64, permissions []string, companyID int64) (bool, error) {
	for _, permission := range permissions {
		ok, err := s.HasPermission(userID, permission, companyID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// HasAnyPermission is false for an empty requirement list, asymmetric
// with HasAllPermissions on purpose.
func (s *Service) HasAnyPermission(userID int64, permissions []string, companyID int64) (bool, error) {
	for _, permission := range permissions {
		ok, err := s.HasPermission(userID, permission, companyID)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// InvalidateCache drops the cached permission set of one (user,
// company) pair. Other entries stay warm.
func (s *Service) InvalidateCache(userID, companyID int64) {
	s.cache.invalidate(userID, companyID)
}

// InvalidateAllCache drops every cached permission set.
func (s *Service) InvalidateAllCache() {
	s.cache.invalidateAll()
}

// AssignRole grants a role to a user within a company. An existing
// identical assignment yields a structured rejection with no write.
// Mutations invalidate the (user, company) cache entry before
// returning. Role visibility for the company is not checked here, that
// call is left with the administrator.
func (s *Service) AssignRole(userID, roleID, companyID int64, assignedBy *int64) (*AssignResult, error) {
	existing, err := s.repo.FindAssignment(userID, roleID, companyID)
	if err != nil {
		s.logger.Error("failed to check existing assignment",
			"error", err, "user_id", userID, "role_id", roleID, "company_id", companyID)
		return nil, err
	}
	if existing != nil {
		return &AssignResult{Success: false, Error: MsgRoleAlreadyAssigned}, nil
	}

	assignment := &rbacDatamodel.UserRoleAssignment{
		UserID:       userID,
		RoleID:       roleID,
		CompanyID:    companyID,
		AssignedByID: assignedBy,
		AssignedAt:   time.Now(),
	}
	if err := s.repo.CreateAssignment(assignment); err != nil {
		s.logger.Error("failed to persist assignment",
			"error", err, "user_id", userID, "role_id", roleID, "company_id", companyID)
		return nil, err
	}

	s.cache.invalidate(userID, companyID)
	s.logger.Info("role assigned",
		"user_id", userID, "role_id", roleID, "company_id", companyID)
	return &AssignResult{Success: true, Assignment: AssignmentFromDataModel(assignment)}, nil
}

// RevokeRole removes one assignment. Absence is not an error: the
// caller gets false, nothing is written and the cache stays untouched.
func (s *Service) RevokeRole(userID, roleID, companyID int64) (bool, error) {
	existing, err := s.repo.FindAssignment(userID, roleID, companyID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}

	if err := s.repo.DeleteAssignment(existing); err != nil {
		s.logger.Error("failed to delete assignment",
			"error", err, "user_id", userID, "role_id", roleID, "company_id", companyID)
		return false, err
	}

	s.cache.invalidate(userID, companyID)
	s.logger.Info("role revoked",
		"user_id", userID, "role_id", roleID, "company_id", companyID)
	return true, nil
}

// RevokeAllRoles removes every assignment the user holds in the
// company as one batch and reports how many were removed. Zero
// assignments means zero writes and no invalidation.
func (s *Service) RevokeAllRoles(userID, companyID int64) (int, error) {
	assignments, err := s.repo.FindAssignments(userID, companyID)
	if err != nil {
		return 0, err
	}
	if len(assignments) == 0 {
		return 0, nil
	}

	if err := s.repo.DeleteAssignments(assignments); err != nil {
		s.logger.Error("failed to delete assignments",
			"error", err, "user_id", userID, "company_id", companyID)
		return 0, err
	}

	s.cache.invalidate(userID, companyID)
	s.logger.Info("all roles revoked",
		"user_id", userID, "company_id", companyID, "count", len(assignments))
	return len(assignments), nil
}

// GetUserRoles returns the user's roles in assignment order. It reads
// the store directly, the permission cache is not involved.
func (s *Service) GetUserRoles(userID, companyID int64) ([]*Role, error) {
	dataRoles, err := s.repo.FindRolesForUser(userID, companyID)
	if err != nil {
		return nil, err
	}

	roles := make([]*Role, 0, len(dataRoles))
	for _, dataRole := range dataRoles {
		roles = append(roles, RoleFromDataModel(dataRole))
	}
	return roles, nil
}

// GetAvailableRoles returns global roles plus roles owned by the
// company.
func (s *Service) GetAvailableRoles(companyID int64) ([]*Role, error) {
	dataRoles, err := s.repo.FindVisibleRoles(companyID)
	if err != nil {
		return nil, err
	}

	roles := make([]*Role, 0, len(dataRoles))
	for _, dataRole := range dataRoles {
		roles = append(roles, RoleFromDataModel(dataRole))
	}
	return roles, nil
}

// GetRoleByName resolves a role name with company scope taking
// precedence: the company-scoped role wins over a global role of the
// same name, and a nil companyID consults the global scope only.
// Returns (nil, nil) when no role matches.
func (s *Service) GetRoleByName(name string, companyID *int64) (*Role, error) {
	if companyID != nil {
		scoped, err := s.repo.FindRoleByName(name, companyID)
		if err != nil {
			return nil, err
		}
		if scoped != nil {
			return RoleFromDataModel(scoped), nil
		}
	}

	global, err := s.repo.FindRoleByName(name, nil)
	if err != nil {
		return nil, err
	}
	if global == nil {
		return nil, nil
	}
	return RoleFromDataModel(global), nil
}

// AssignDefaultRoles grants every default role visible to the company
// in one batch. Meant for first-time provisioning of a brand-new user,
// so there is no duplicate guard. No default roles means no write at
// all.
func (s *Service) AssignDefaultRoles(userID, companyID int64) ([]*UserRoleAssignment, error) {
	defaults, err := s.repo.FindDefaultRoles(companyID)
	if err != nil {
		s.logger.Error("failed to load default roles",
			"error", err, "company_id", companyID)
		return nil, err
	}
	if len(defaults) == 0 {
		return []*UserRoleAssignment{}, nil
	}

	now := time.Now()
	batch := make([]*rbacDatamodel.UserRoleAssignment, 0, len(defaults))
	for _, role := range defaults {
		batch = append(batch, &rbacDatamodel.UserRoleAssignment{
			UserID:     userID,
			RoleID:     role.ID,
			CompanyID:  companyID,
			AssignedAt: now,
		})
	}

	if err := s.repo.CreateAssignments(batch); err != nil {
		s.logger.Error("failed to persist default assignments",
			"error", err, "user_id", userID, "company_id", companyID)
		return nil, err
	}

	s.cache.invalidate(userID, companyID)
	s.logger.Info("default roles assigned",
		"user_id", userID, "company_id", companyID, "count", len(batch))

	created := make([]*UserRoleAssignment, 0, len(batch))
	for _, assignment := range batch {
		created = append(created, AssignmentFromDataModel(assignment))
	}
	return created, nil
}

// CreateRole adds a role definition. Names must be unique within their
// scope, and a role created without a company is a global system role.
func (s *Service) CreateRole(name, displayName string, perms []string, isDefault bool, companyID *int64) (*Role, error) {
	if name == "" {
		return nil, internal.NewValidationFieldError("name", "name is required", internal.ErrCodeInvalidName)
	}
	for _, pattern := range perms {
		if !ValidatePattern(pattern) {
			return nil, internal.NewValidationFieldError("permissions", "invalid permission pattern: "+pattern, internal.ErrCodeInvalidPattern)
		}
	}

	existing, err := s.repo.FindRoleByName(name, companyID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrRoleNameTaken
	}

	dataRole := &rbacDatamodel.Role{
		Name:         name,
		DisplayName:  displayName,
		Permissions:  perms,
		IsDefault:    isDefault,
		IsSystemRole: companyID == nil,
		CompanyID:    companyID,
	}
	if err := s.repo.CreateRole(dataRole); err != nil {
		s.logger.Error("failed to create role", "error", err, "name", name)
		return nil, err
	}

	s.logger.Info("role created", "role_id", dataRole.ID, "name", name)
	return RoleFromDataModel(dataRole), nil
}

// UpdateRole changes the mutable parts of a role definition: display
// name, permission list, default flag. Identity is immutable and
// system roles refuse edits. Every cached permission set may embed the
// old definition, so the whole cache is flushed.
func (s *Service) UpdateRole(id int64, displayName *string, perms []string, isDefault *bool) (*Role, error) {
	dataRole, err := s.repo.FindRoleByID(id)
	if err != nil {
		return nil, err
	}
	if dataRole == nil {
		return nil, internal.ErrRoleNotFound
	}
	if dataRole.IsSystemRole {
		return nil, internal.ErrSystemRoleImmutable
	}

	if displayName != nil {
		dataRole.DisplayName = *displayName
	}
	if perms != nil {
		for _, pattern := range perms {
			if !ValidatePattern(pattern) {
				return nil, internal.NewValidationFieldError("permissions", "invalid permission pattern: "+pattern, internal.ErrCodeInvalidPattern)
			}
		}
		dataRole.Permissions = perms
	}
	if isDefault != nil {
		dataRole.IsDefault = *isDefault
	}

	if err := s.repo.UpdateRole(dataRole); err != nil {
		s.logger.Error("failed to update role", "error", err, "role_id", id)
		return nil, err
	}

	s.cache.invalidateAll()
	s.logger.Info("role updated", "role_id", id)
	return RoleFromDataModel(dataRole), nil
}

// DeleteRole removes a non-system role and its assignments, then
// flushes the whole cache.
func (s *Service) DeleteRole(id int64) error {
	dataRole, err := s.repo.FindRoleByID(id)
	if err != nil {
		return err
	}
	if dataRole == nil {
		return internal.ErrRoleNotFound
	}
	if dataRole.IsSystemRole {
		return internal.ErrSystemRoleImmutable
	}

	if err := s.repo.DeleteRole(id); err != nil {
		s.logger.Error("failed to delete role", "error", err, "role_id", id)
		return err
	}

	s.cache.invalidateAll()
	s.logger.Info("role deleted", "role_id", id)
	return nil
}
