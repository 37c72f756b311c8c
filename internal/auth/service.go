package auth

import (
	"log/slog"
	"strconv"

	"github.com/pricebook-hq/pricebook-api/internal"
	userDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/user"
)

type ServiceAPI interface {
	Authenticate(dto LoginDTO) (AuthTokens, error)
	RefreshTokens(refreshToken string) (AuthTokens, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	GetUserWithPermissions(userID int64) (*User, error)
	HashPassword(password string) (string, error)
}

type RepositoryAPI interface {
	GetByEmail(email string) (*userDatamodel.User, error)
	GetByID(id int64) (*userDatamodel.User, error)
}

// PermissionResolver yields the effective permission list for a user
// within a company. Satisfied by the permissions service.
type PermissionResolver interface {
	GetUserPermissions(userID, companyID int64) ([]string, error)
}

type Service struct {
	repo        RepositoryAPI
	tokens      TokenGeneratorAPI
	permissions PermissionResolver
	bcryptCost  int
	logger      *slog.Logger
}

func NewService(repo RepositoryAPI, tokens TokenGeneratorAPI, permissions PermissionResolver, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		permissions: permissions,
		bcryptCost:  bcryptCost,
		logger:      logger,
	}
}

// Authenticate validates credentials and returns a fresh token pair.
func (s *Service) Authenticate(dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	user, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Error("authenticate: user lookup failed", "error", err)
		return AuthTokens{}, internal.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	if err := VerifyPassword(user.PasswordHash, dto.Password); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// RefreshTokens exchanges a valid refresh token for a new pair. The
// user is re-read so deactivation takes effect at rotation time.
func (s *Service) RefreshTokens(refreshToken string) (AuthTokens, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	user, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("refresh: user lookup failed", "error", err, "user_id", userID)
		return AuthTokens{}, internal.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issueTokens(user)
}

// ValidateAccessToken verifies the token and rejects refresh tokens
// presented on access paths.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

// GetUserWithPermissions loads the principal and resolves its effective
// permissions for the request context.
func (s *Service) GetUserWithPermissions(userID int64) (*User, error) {
	user, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("load principal: user lookup failed", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, internal.ErrUserNotFound
	}
	if !user.IsActive {
		return nil, internal.ErrUserInactive
	}

	perms, err := s.permissions.GetUserPermissions(user.ID, user.CompanyID)
	if err != nil {
		s.logger.Error("load principal: permission resolution failed", "error", err, "user_id", userID)
		return nil, err
	}

	return &User{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		CompanyID:   user.CompanyID,
		Permissions: perms,
	}, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.bcryptCost)
}

func (s *Service) issueTokens(user *userDatamodel.User) (AuthTokens, error) {
	uid := strconv.FormatInt(user.ID, 10)

	accessToken, err := s.tokens.GenerateAccessToken(uid, user.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign access token", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(uid, user.Email)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign refresh token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
