package auth

import (
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/pricebook-hq/pricebook-api/internal"
)

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		service    *Service
		mockRepo   *mockAuthRepository
		mockPerms  *mockPermissionResolver
		tokens     *JWTTokenGenerator
		testLogger *slog.Logger

		companyX int64 = 10
	)

	hashOf := func(password string) string {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		return string(hash)
	}

	ginkgo.BeforeEach(func() {
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockRepo = newMockAuthRepository()
		mockPerms = newMockPermissionResolver()
		tokens = NewJWTTokenGenerator("test-secret-0123456789abcdef0123456789", 15*time.Minute, 24*time.Hour)
		service = NewService(mockRepo, tokens, mockPerms, bcrypt.MinCost, testLogger)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("should return a token pair for valid credentials", func() {
			record := mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)

			pair, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "s3cret-pass"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(pair.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(pair.RefreshToken).ToNot(gomega.BeEmpty())

			claims, err := service.ValidateAccessToken(pair.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal("1"))
			gomega.Expect(claims.Email).To(gomega.Equal(record.Email))
			gomega.Expect(claims.TokenType).To(gomega.Equal(TokenTypeAccess))
		})

		ginkgo.It("should reject a wrong password", func() {
			mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)

			_, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "wrong"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should answer an unknown email with the same error as a bad password", func() {
			_, err := service.Authenticate(LoginDTO{Email: "ghost@example.com", Password: "whatever"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should refuse a deactivated account even with the right password", func() {
			mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), false)

			_, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "s3cret-pass"})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserInactive))
		})

		ginkgo.It("should reject empty credentials before touching the store", func() {
			mockRepo.setError(errors.New("store should not be called"))

			_, err := service.Authenticate(LoginDTO{})

			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(ValidationError{}))
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should reject a refresh token presented as an access token", func() {
			mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)
			pair, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "s3cret-pass"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(pair.RefreshToken)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			foreign := NewJWTTokenGenerator("other-secret-0123456789abcdef01234567", 15*time.Minute, 24*time.Hour)
			forged, err := foreign.GenerateAccessToken("1", "ana@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(forged)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject an expired token", func() {
			stale := NewJWTTokenGenerator("test-secret-0123456789abcdef0123456789", -1*time.Minute, 24*time.Hour)
			expired, err := stale.GenerateAccessToken("1", "ana@example.com")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(expired)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		ginkgo.It("should rotate a valid refresh token into a new pair", func() {
			mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)
			pair, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "s3cret-pass"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			rotated, err := service.RefreshTokens(pair.RefreshToken)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rotated.AccessToken).ToNot(gomega.BeEmpty())

			claims, err := service.ValidateAccessToken(rotated.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Email).To(gomega.Equal("ana@example.com"))
		})

		ginkgo.It("should not accept an access token on the refresh path", func() {
			mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)
			pair, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "s3cret-pass"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(pair.AccessToken)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should stop rotation once the account is deactivated", func() {
			record := mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)
			pair, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "s3cret-pass"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			record.IsActive = false

			_, err = service.RefreshTokens(pair.RefreshToken)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserInactive))
		})

		ginkgo.It("should treat a refresh token for a deleted user as invalid", func() {
			record := mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)
			pair, err := service.Authenticate(LoginDTO{Email: "ana@example.com", Password: "s3cret-pass"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			delete(mockRepo.users, record.ID)

			_, err = service.RefreshTokens(pair.RefreshToken)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("GetUserWithPermissions", func() {
		ginkgo.It("should assemble the principal with its resolved permissions", func() {
			record := mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), true)
			mockPerms.perms[record.ID] = []string{"catalog:*", "tag:read"}

			principal, err := service.GetUserWithPermissions(record.ID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(principal.CompanyID).To(gomega.Equal(companyX))
			gomega.Expect(principal.Permissions).To(gomega.ConsistOf("catalog:*", "tag:read"))
		})

		ginkgo.It("should return not found for an unknown user", func() {
			_, err := service.GetUserWithPermissions(99)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
		})

		ginkgo.It("should refuse a deactivated principal", func() {
			record := mockRepo.addUser(companyX, "ana@example.com", hashOf("s3cret-pass"), false)

			_, err := service.GetUserWithPermissions(record.ID)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserInactive))
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should produce a hash the verifier accepts", func() {
			hash, err := service.HashPassword("s3cret-pass")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(hash).ToNot(gomega.ContainSubstring("s3cret-pass"))
			gomega.Expect(VerifyPassword(hash, "s3cret-pass")).To(gomega.Succeed())
			gomega.Expect(VerifyPassword(hash, "other")).ToNot(gomega.Succeed())
		})
	})
})
