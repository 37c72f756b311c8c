package user

import (
	"errors"
	"log/slog"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/pricebook-hq/pricebook-api/internal"
	"github.com/pricebook-hq/pricebook-api/internal/permissions"
)

var _ = ginkgo.Describe("User Service", func() {
	var (
		service    *Service
		mockRepo   *mockUserRepository
		mockPerms  *mockPermissionService
		hasher     *mockHasher
		testLogger *slog.Logger

		companyX int64 = 10
	)

	ginkgo.BeforeEach(func() {
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockRepo = newMockUserRepository()
		mockPerms = newMockPermissionService()
		hasher = &mockHasher{}
		service = NewService(mockRepo, mockPerms, hasher, testLogger)
	})

	ginkgo.Describe("ProvisionUser", func() {
		dto := ProvisionUserRequest{Email: "ana@example.com", Name: "Ana", Password: "s3cret-pass"}

		ginkgo.It("should create the account and grant default roles in one flow", func() {
			mockPerms.defaultRoles = []*permissions.Role{
				{ID: 7, Name: "viewer", IsDefault: true},
			}

			provisioned, err := service.ProvisionUser(companyX, dto)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(provisioned.User.ID).ToNot(gomega.BeZero())
			gomega.Expect(provisioned.User.IsActive).To(gomega.BeTrue())
			gomega.Expect(provisioned.Assignments).To(gomega.HaveLen(1))
			gomega.Expect(provisioned.Assignments[0].RoleID).To(gomega.Equal(int64(7)))

			gomega.Expect(mockPerms.assignDefaultCalls).To(gomega.Equal(1))
			gomega.Expect(mockPerms.lastDefaultUserID).To(gomega.Equal(provisioned.User.ID))
			gomega.Expect(mockPerms.lastDefaultCompany).To(gomega.Equal(companyX))
		})

		ginkgo.It("should store a hash, never the raw password", func() {
			provisioned, err := service.ProvisionUser(companyX, dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			stored := mockRepo.users[provisioned.User.ID]
			gomega.Expect(stored.PasswordHash).To(gomega.Equal("hashed:s3cret-pass"))
			gomega.Expect(stored.PasswordHash).ToNot(gomega.Equal(dto.Password))
		})

		ginkgo.It("should reject an email that is already registered", func() {
			mockRepo.addUser(companyX, "ana@example.com", "Existing Ana", true)

			provisioned, err := service.ProvisionUser(companyX, dto)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrEmailTaken))
			gomega.Expect(provisioned).To(gomega.BeNil())
			gomega.Expect(mockPerms.assignDefaultCalls).To(gomega.BeZero())
		})

		ginkgo.It("should surface default role assignment failures", func() {
			mockPerms.setError(errors.New("store down"))

			provisioned, err := service.ProvisionUser(companyX, dto)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(provisioned).To(gomega.BeNil())
		})

		ginkgo.It("should fail when hashing fails", func() {
			hasher.failError = errors.New("cost out of range")

			provisioned, err := service.ProvisionUser(companyX, dto)

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(provisioned).To(gomega.BeNil())
			gomega.Expect(mockRepo.users).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("GetCurrentUser", func() {
		ginkgo.It("should assemble the account with roles and permissions", func() {
			record := mockRepo.addUser(companyX, "ana@example.com", "Ana", true)
			mockPerms.userRoles[record.ID] = []*permissions.Role{{ID: 3, Name: "editor"}}
			mockPerms.perms[record.ID] = []string{"catalog:*", "tag:*"}

			current, err := service.GetCurrentUser(record.ID, companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(current.User.Email).To(gomega.Equal("ana@example.com"))
			gomega.Expect(current.Roles).To(gomega.HaveLen(1))
			gomega.Expect(current.Permissions).To(gomega.ConsistOf("catalog:*", "tag:*"))
		})

		ginkgo.It("should return not found for an unknown user", func() {
			current, err := service.GetCurrentUser(99, companyX)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
			gomega.Expect(current).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("ListCompanyUsers", func() {
		ginkgo.It("should only return users of the given company", func() {
			mockRepo.addUser(companyX, "ana@example.com", "Ana", true)
			mockRepo.addUser(companyX, "bo@example.com", "Bo", true)
			mockRepo.addUser(20, "iris@other.com", "Iris", true)

			users, err := service.ListCompanyUsers(companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(users).To(gomega.HaveLen(2))
		})
	})

	ginkgo.Describe("DeactivateUser", func() {
		ginkgo.It("should disable the account", func() {
			record := mockRepo.addUser(companyX, "ana@example.com", "Ana", true)

			err := service.DeactivateUser(record.ID, companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.users[record.ID].IsActive).To(gomega.BeFalse())
		})

		ginkgo.It("should not touch users of another company", func() {
			record := mockRepo.addUser(20, "iris@other.com", "Iris", true)

			err := service.DeactivateUser(record.ID, companyX)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserNotFound))
			gomega.Expect(mockRepo.users[record.ID].IsActive).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("ProvisionUserRequest validation", func() {
	ginkgo.It("should accept a well formed request", func() {
		dto := ProvisionUserRequest{Email: "ana@example.com", Name: "Ana", Password: "s3cret-pass"}
		gomega.Expect(dto.Validate()).To(gomega.Succeed())
	})

	ginkgo.It("should reject malformed emails", func() {
		for _, email := range []string{"", "ana", "ana@", "@example.com", "ana @example.com", "ana@example"} {
			dto := ProvisionUserRequest{Email: email, Name: "Ana", Password: "s3cret-pass"}
			gomega.Expect(dto.Validate()).ToNot(gomega.Succeed(), "email %q should be rejected", email)
		}
	})

	ginkgo.It("should enforce the minimum password length", func() {
		dto := ProvisionUserRequest{Email: "ana@example.com", Name: "Ana", Password: "short"}
		gomega.Expect(dto.Validate()).ToNot(gomega.Succeed())
	})
})
