package user

import (
	"log/slog"

	"github.com/pricebook-hq/pricebook-api/internal"
	userDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/user"
	"github.com/pricebook-hq/pricebook-api/internal/permissions"
)

type RepositoryAPI interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByCompany(companyID int64) ([]*userDatamodel.User, error)
	Create(user *userDatamodel.User) error
	Update(user *userDatamodel.User) error
}

// PermissionServiceAPI is the slice of the permission service that
// user provisioning and profile reads depend on.
type PermissionServiceAPI interface {
	AssignDefaultRoles(userID, companyID int64) ([]*permissions.UserRoleAssignment, error)
	GetUserRoles(userID, companyID int64) ([]*permissions.Role, error)
	GetUserPermissions(userID, companyID int64) ([]string, error)
}

// PasswordHasher is satisfied by the auth service.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   RepositoryAPI
	perms  PermissionServiceAPI
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, perms PermissionServiceAPI, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		perms:  perms,
		hasher: hasher,
		logger: logger,
	}
}

// ProvisionUser creates an account and grants it the default roles in
// one flow. This is the only path that assigns default roles, so the
// account is guaranteed to have no prior assignments.
func (s *Service) ProvisionUser(companyID int64, dto ProvisionUserRequest) (*ProvisionedUser, error) {
	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Error("provision: email lookup failed", "error", err)
		return nil, err
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		s.logger.Error("provision: password hashing failed", "error", err)
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	dataUser := &userDatamodel.User{
		CompanyID:    companyID,
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.Create(dataUser); err != nil {
		s.logger.Error("provision: user creation failed", "error", err, "email", dto.Email)
		return nil, err
	}

	assignments, err := s.perms.AssignDefaultRoles(dataUser.ID, companyID)
	if err != nil {
		// The account exists but carries no roles. Surface the error so
		// the caller can retry the grant through role assignment.
		s.logger.Error("provision: default role assignment failed",
			"error", err, "user_id", dataUser.ID, "company_id", companyID)
		return nil, err
	}

	s.logger.Info("user provisioned",
		"user_id", dataUser.ID, "company_id", companyID, "default_roles", len(assignments))

	return &ProvisionedUser{
		User:        FromDataModel(dataUser),
		Assignments: assignments,
	}, nil
}

// GetCurrentUser assembles the profile view: the account, its roles,
// and the flattened permission list.
func (s *Service) GetCurrentUser(userID, companyID int64) (*CurrentUser, error) {
	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if dataUser == nil {
		return nil, internal.ErrUserNotFound
	}

	roles, err := s.perms.GetUserRoles(userID, companyID)
	if err != nil {
		s.logger.Error("current user: role lookup failed", "error", err, "user_id", userID)
		return nil, err
	}

	perms, err := s.perms.GetUserPermissions(userID, companyID)
	if err != nil {
		s.logger.Error("current user: permission resolution failed", "error", err, "user_id", userID)
		return nil, err
	}

	return &CurrentUser{
		User:        FromDataModel(dataUser),
		Roles:       roles,
		Permissions: perms,
	}, nil
}

func (s *Service) ListCompanyUsers(companyID int64) ([]*User, error) {
	dataUsers, err := s.repo.GetByCompany(companyID)
	if err != nil {
		s.logger.Error("failed to list users", "error", err, "company_id", companyID)
		return nil, err
	}

	users := make([]*User, 0, len(dataUsers))
	for _, dataUser := range dataUsers {
		users = append(users, FromDataModel(dataUser))
	}
	return users, nil
}

// DeactivateUser disables login for an account in the caller's
// company. Role assignments stay in place so reactivation restores
// the previous access.
func (s *Service) DeactivateUser(userID, companyID int64) error {
	dataUser, err := s.repo.GetByID(userID)
	if err != nil {
		return err
	}
	if dataUser == nil || dataUser.CompanyID != companyID {
		return internal.ErrUserNotFound
	}

	dataUser.IsActive = false
	if err := s.repo.Update(dataUser); err != nil {
		s.logger.Error("failed to deactivate user", "error", err, "user_id", userID)
		return err
	}

	s.logger.Info("user deactivated", "user_id", userID, "company_id", companyID)
	return nil
}
