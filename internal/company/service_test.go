package company

import (
	"errors"
	"log/slog"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/pricebook-hq/pricebook-api/internal"
)

var _ = ginkgo.Describe("Company Service", func() {
	var (
		service    *Service
		mockRepo   *mockCompanyRepository
		testLogger *slog.Logger
	)

	ginkgo.BeforeEach(func() {
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockRepo = newMockCompanyRepository()
		service = NewService(mockRepo, testLogger)
	})

	ginkgo.Describe("CreateCompany", func() {
		ginkgo.It("should create an active company", func() {
			created, err := service.CreateCompany("Vintage Audio Co", "vintage-audio")

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created.ID).ToNot(gomega.BeZero())
			gomega.Expect(created.Name).To(gomega.Equal("Vintage Audio Co"))
			gomega.Expect(created.Slug).To(gomega.Equal("vintage-audio"))
			gomega.Expect(created.IsActive).To(gomega.BeTrue())
		})

		ginkgo.It("should reject a slug that is already taken", func() {
			mockRepo.addCompany("Vintage Audio Co", "vintage-audio", true)

			created, err := service.CreateCompany("Other Shop", "vintage-audio")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrSlugTaken))
			gomega.Expect(created).To(gomega.BeNil())
		})

		ginkgo.It("should propagate repository failures", func() {
			mockRepo.setError(errors.New("connection refused"))

			created, err := service.CreateCompany("Vintage Audio Co", "vintage-audio")

			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(created).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("GetCompany", func() {
		ginkgo.It("should return the company by id", func() {
			record := mockRepo.addCompany("Vintage Audio Co", "vintage-audio", true)

			found, err := service.GetCompany(record.ID)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(found.Slug).To(gomega.Equal("vintage-audio"))
		})

		ginkgo.It("should return not found for an unknown id", func() {
			found, err := service.GetCompany(99)

			gomega.Expect(err).To(gomega.MatchError(internal.ErrCompanyNotFound))
			gomega.Expect(found).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("ListActiveCompanies", func() {
		ginkgo.It("should hide deactivated companies", func() {
			mockRepo.addCompany("Vintage Audio Co", "vintage-audio", true)
			mockRepo.addCompany("Closed Shop", "closed-shop", false)
			mockRepo.addCompany("Guitar Exchange", "guitar-exchange", true)

			companies, err := service.ListActiveCompanies()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(companies).To(gomega.HaveLen(2))
			for _, found := range companies {
				gomega.Expect(found.IsActive).To(gomega.BeTrue())
			}
		})

		ginkgo.It("should return an empty list when nothing is registered", func() {
			companies, err := service.ListActiveCompanies()

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(companies).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("DeactivateCompany", func() {
		ginkgo.It("should flip the active flag", func() {
			record := mockRepo.addCompany("Vintage Audio Co", "vintage-audio", true)

			err := service.DeactivateCompany(record.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(mockRepo.companies[record.ID].IsActive).To(gomega.BeFalse())
		})

		ginkgo.It("should return not found for an unknown id", func() {
			err := service.DeactivateCompany(99)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrCompanyNotFound))
		})
	})
})

var _ = ginkgo.Describe("CreateCompanyRequest validation", func() {
	ginkgo.It("should accept a well formed request", func() {
		dto := CreateCompanyRequest{Name: "Vintage Audio Co", Slug: "vintage-audio"}
		gomega.Expect(dto.Validate()).To(gomega.Succeed())
	})

	ginkgo.It("should require a name", func() {
		dto := CreateCompanyRequest{Slug: "vintage-audio"}
		gomega.Expect(dto.Validate()).ToNot(gomega.Succeed())
	})

	ginkgo.It("should reject malformed slugs", func() {
		for _, slug := range []string{"", "Vintage", "vintage audio", "-vintage", "vintage-", "a--b"} {
			dto := CreateCompanyRequest{Name: "Vintage Audio Co", Slug: slug}
			gomega.Expect(dto.Validate()).ToNot(gomega.Succeed(), "slug %q should be rejected", slug)
		}
	})
})
