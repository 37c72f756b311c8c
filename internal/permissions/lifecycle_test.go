package permissions

import (
	"errors"
	"log/slog"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/pricebook-hq/pricebook-api/internal"
)

var _ = ginkgo.Describe("PermissionService lifecycle", func() {
	var (
		service    *Service
		mockRepo   *mockRBACRepository
		testLogger *slog.Logger

		companyX int64 = 10
		companyY int64 = 20
		userA    int64 = 1
		userB    int64 = 2
		adminID  int64 = 99
	)

	ginkgo.BeforeEach(func() {
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockRepo = newMockRBACRepository()
		service = NewService(mockRepo, testLogger)
	})

	ginkgo.Describe("AssignRole", func() {
		ginkgo.It("should create the assignment and report success", func() {
			role := mockRepo.addRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)

			result, err := service.AssignRole(userA, role.ID, companyX, &adminID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(result.Success).To(gomega.BeTrue())
			gomega.Expect(result.Error).To(gomega.BeEmpty())
			gomega.Expect(result.Assignment).ToNot(gomega.BeNil())
			gomega.Expect(result.Assignment.UserID).To(gomega.Equal(userA))
			gomega.Expect(result.Assignment.RoleID).To(gomega.Equal(role.ID))
			gomega.Expect(result.Assignment.CompanyID).To(gomega.Equal(companyX))
			gomega.Expect(result.Assignment.AssignedByID).To(gomega.Equal(&adminID))
			gomega.Expect(result.Assignment.AssignedAt).ToNot(gomega.BeZero())
			gomega.Expect(mockRepo.createCalls).To(gomega.Equal(1))
		})

		ginkgo.It("should reject a duplicate assignment without a second write", func() {
			role := mockRepo.addRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)

			first, err := service.AssignRole(userA, role.ID, companyX, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(first.Success).To(gomega.BeTrue())

			second, err := service.AssignRole(userA, role.ID, companyX, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(second.Success).To(gomega.BeFalse())
			gomega.Expect(second.Error).To(gomega.Equal("Role is already assigned to this user"))
			gomega.Expect(second.Assignment).To(gomega.BeNil())
			gomega.Expect(mockRepo.createCalls).To(gomega.Equal(1))
		})

		ginkgo.It("should invalidate the cached permissions of the target pair", func() {
			perms, err := service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.BeEmpty())
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(1))

			role := mockRepo.addRole("editor", "Editor", []string{"catalog:update"}, false, &companyX)
			_, err = service.AssignRole(userA, role.ID, companyX, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			perms, err = service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.ConsistOf("catalog:update"))
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(2))
		})

		ginkgo.It("should propagate store failures", func() {
			storeErr := errors.New("deadlock detected")
			mockRepo.setError(storeErr)

			result, err := service.AssignRole(userA, 1, companyX, nil)
			gomega.Expect(err).To(gomega.MatchError(storeErr))
			gomega.Expect(result).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("RevokeRole", func() {
		ginkgo.It("should return false and leave the cache warm when nothing matches", func() {
			_, err := service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(1))

			revoked, err := service.RevokeRole(userA, 42, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(revoked).To(gomega.BeFalse())
			gomega.Expect(mockRepo.deleteCalls).To(gomega.BeZero())

			_, err = service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(1))
		})

		ginkgo.It("should remove the assignment and force a fresh read", func() {
			role := mockRepo.addRole("editor", "Editor", []string{"catalog:update"}, false, &companyX)
			mockRepo.addAssignment(userA, role.ID, companyX)

			perms, err := service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.ConsistOf("catalog:update"))
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(1))

			revoked, err := service.RevokeRole(userA, role.ID, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(revoked).To(gomega.BeTrue())
			gomega.Expect(mockRepo.deleteCalls).To(gomega.Equal(1))

			perms, err = service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.BeEmpty())
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(2))
		})
	})

	ginkgo.Describe("RevokeAllRoles", func() {
		ginkgo.It("should report zero without writing when the user holds nothing", func() {
			count, err := service.RevokeAllRoles(userA, companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.BeZero())
			gomega.Expect(mockRepo.deleteBatchCalls).To(gomega.BeZero())
		})

		ginkgo.It("should remove every assignment in one batch and return the count", func() {
			r1 := mockRepo.addRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)
			r2 := mockRepo.addRole("viewer", "Viewer", []string{"catalog:read"}, false, &companyX)
			mockRepo.addAssignment(userA, r1.ID, companyX)
			mockRepo.addAssignment(userA, r2.ID, companyX)
			// an assignment in another company must survive
			mockRepo.addAssignment(userA, r1.ID, companyY)

			count, err := service.RevokeAllRoles(userA, companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(count).To(gomega.Equal(2))
			gomega.Expect(mockRepo.deleteBatchCalls).To(gomega.Equal(1))
			gomega.Expect(mockRepo.assignments).To(gomega.HaveLen(1))

			perms, err := service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("GetUserRoles", func() {
		ginkgo.It("should preserve assignment order", func() {
			r1 := mockRepo.addRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)
			r2 := mockRepo.addRole("viewer", "Viewer", []string{"catalog:read"}, false, &companyX)
			mockRepo.addAssignment(userA, r2.ID, companyX)
			mockRepo.addAssignment(userA, r1.ID, companyX)

			roles, err := service.GetUserRoles(userA, companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(roles).To(gomega.HaveLen(2))
			gomega.Expect(roles[0].Name).To(gomega.Equal("viewer"))
			gomega.Expect(roles[1].Name).To(gomega.Equal("editor"))
		})

		ginkgo.It("should bypass the permission cache entirely", func() {
			role := mockRepo.addRole("viewer", "Viewer", []string{"catalog:read"}, false, &companyX)
			mockRepo.addAssignment(userA, role.ID, companyX)

			_, err := service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.GetUserRoles(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(2))
		})
	})

	ginkgo.Describe("GetAvailableRoles", func() {
		ginkgo.It("should combine global roles with the company's own", func() {
			mockRepo.addRole("admin", "Administrator", []string{"*"}, false, nil)
			mockRepo.addRole("staff", "Staff", []string{"catalog:read"}, false, &companyX)
			mockRepo.addRole("rival", "Rival Staff", []string{"catalog:read"}, false, &companyY)

			roles, err := service.GetAvailableRoles(companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			names := make([]string, 0, len(roles))
			for _, role := range roles {
				names = append(names, role.Name)
			}
			gomega.Expect(names).To(gomega.ConsistOf("admin", "staff"))
		})
	})

	ginkgo.Describe("GetRoleByName", func() {
		ginkgo.It("should prefer the company-scoped role over a global namesake", func() {
			global := mockRepo.addRole("admin", "Global Admin", []string{"*"}, false, nil)
			scoped := mockRepo.addRole("admin", "Company Admin", []string{"catalog:*"}, false, &companyX)

			role, err := service.GetRoleByName("admin", &companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role).ToNot(gomega.BeNil())
			gomega.Expect(role.ID).To(gomega.Equal(scoped.ID))
			gomega.Expect(role.ID).ToNot(gomega.Equal(global.ID))
		})

		ginkgo.It("should fall back to the global role when the company has none", func() {
			global := mockRepo.addRole("admin", "Global Admin", []string{"*"}, false, nil)

			role, err := service.GetRoleByName("admin", &companyY)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role).ToNot(gomega.BeNil())
			gomega.Expect(role.ID).To(gomega.Equal(global.ID))
		})

		ginkgo.It("should consult only the global scope when no company is given", func() {
			mockRepo.addRole("admin", "Company Admin", []string{"catalog:*"}, false, &companyX)

			role, err := service.GetRoleByName("admin", nil)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role).To(gomega.BeNil())
		})

		ginkgo.It("should return nil for an unknown name", func() {
			role, err := service.GetRoleByName("ghost", &companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("AssignDefaultRoles", func() {
		ginkgo.It("should assign every default role visible to the company in one batch", func() {
			mockRepo.addRole("viewer", "Viewer", []string{"catalog:read"}, true, nil)
			mockRepo.addRole("staff", "Staff", []string{"tag:read"}, true, &companyX)
			mockRepo.addRole("rival-default", "Rival Default", []string{"catalog:read"}, true, &companyY)
			mockRepo.addRole("admin", "Administrator", []string{"*"}, false, nil)

			created, err := service.AssignDefaultRoles(userB, companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created).To(gomega.HaveLen(2))
			gomega.Expect(mockRepo.createBatchCalls).To(gomega.Equal(1))
			gomega.Expect(mockRepo.createCalls).To(gomega.BeZero())

			perms, err := service.GetUserPermissions(userB, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(perms).To(gomega.ConsistOf("catalog:read", "tag:read"))
		})

		ginkgo.It("should do nothing at all when no default roles exist", func() {
			mockRepo.addRole("admin", "Administrator", []string{"*"}, false, nil)

			created, err := service.AssignDefaultRoles(userB, companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created).To(gomega.BeEmpty())
			gomega.Expect(mockRepo.createBatchCalls).To(gomega.BeZero())
		})

		ginkgo.It("should not guard against duplicates on repeated provisioning", func() {
			mockRepo.addRole("viewer", "Viewer", []string{"catalog:read"}, true, nil)

			_, err := service.AssignDefaultRoles(userB, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.AssignDefaultRoles(userB, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(mockRepo.assignments).To(gomega.HaveLen(2))
		})
	})

	ginkgo.Describe("role administration", func() {
		ginkgo.It("should create a company-scoped role", func() {
			role, err := service.CreateRole("editor", "Editor", []string{"catalog:*", "tag:manage"}, false, &companyX)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role.ID).ToNot(gomega.BeZero())
			gomega.Expect(role.IsSystemRole).To(gomega.BeFalse())
			gomega.Expect(role.CompanyID).ToNot(gomega.BeNil())
		})

		ginkgo.It("should mark roles without a company as global system roles", func() {
			role, err := service.CreateRole("admin", "Administrator", []string{"*"}, false, nil)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(role.IsSystemRole).To(gomega.BeTrue())
			gomega.Expect(role.CompanyID).To(gomega.BeNil())
		})

		ginkgo.It("should refuse a name already used in the same scope", func() {
			_, err := service.CreateRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.CreateRole("editor", "Editor Again", []string{"catalog:read"}, false, &companyX)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleNameTaken))
		})

		ginkgo.It("should allow the same name in a different scope", func() {
			_, err := service.CreateRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.CreateRole("editor", "Rival Editor", []string{"catalog:read"}, false, &companyY)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should reject malformed permission patterns", func() {
			_, err := service.CreateRole("odd", "Odd", []string{"catalog read"}, false, &companyX)

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})

		ginkgo.It("should update mutable fields and flush the whole cache", func() {
			role, err := service.CreateRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.GetUserPermissions(userB, companyY)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(2))

			newName := "Catalog Editor"
			updated, err := service.UpdateRole(role.ID, &newName, []string{"catalog:read"}, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.DisplayName).To(gomega.Equal("Catalog Editor"))
			gomega.Expect(updated.Permissions).To(gomega.ConsistOf("catalog:read"))

			_, err = service.GetUserPermissions(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.GetUserPermissions(userB, companyY)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(mockRepo.findRolesForUserCalls).To(gomega.Equal(4))
		})

		ginkgo.It("should refuse to update a system role", func() {
			role, err := service.CreateRole("admin", "Administrator", []string{"*"}, false, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			name := "Renamed"
			_, err = service.UpdateRole(role.ID, &name, nil, nil)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrSystemRoleImmutable))
		})

		ginkgo.It("should report unknown roles on update and delete", func() {
			name := "Ghost"
			_, err := service.UpdateRole(404, &name, nil, nil)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleNotFound))

			err = service.DeleteRole(404)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrRoleNotFound))
		})

		ginkgo.It("should delete a role together with its assignments", func() {
			role, err := service.CreateRole("editor", "Editor", []string{"catalog:*"}, false, &companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			_, err = service.AssignRole(userA, role.ID, companyX, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = service.DeleteRole(role.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			roles, err := service.GetUserRoles(userA, companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(roles).To(gomega.BeEmpty())
		})

		ginkgo.It("should refuse to delete a system role", func() {
			role, err := service.CreateRole("admin", "Administrator", []string{"*"}, false, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = service.DeleteRole(role.ID)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrSystemRoleImmutable))
		})
	})
})
