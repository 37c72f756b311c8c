package catalog

import (
	"log/slog"
	"net/url"
	"os"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/pricebook-hq/pricebook-api/internal"
)

var _ = ginkgo.Describe("Catalog Service", func() {
	var (
		service    *Service
		mockRepo   *mockCatalogRepository
		testLogger *slog.Logger

		companyX int64 = 10
		companyY int64 = 20
	)

	ginkgo.BeforeEach(func() {
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		mockRepo = newMockCatalogRepository()
		service = NewService(mockRepo, testLogger)
	})

	ginkgo.Describe("CreateEntry", func() {
		ginkgo.It("should create an entry with the default currency", func() {
			created, err := service.CreateEntry(companyX, CreateEntryRequest{
				Name:           "Stratocaster",
				Maker:          "Fender",
				PriceLowCents:  120000,
				PriceHighCents: 180000,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(created.Currency).To(gomega.Equal("USD"))
			gomega.Expect(created.CompanyID).To(gomega.Equal(companyX))
			gomega.Expect(created.IsPublished).To(gomega.BeFalse())
		})

		ginkgo.It("should reject an inverted price range", func() {
			_, err := service.CreateEntry(companyX, CreateEntryRequest{
				Name:           "Stratocaster",
				PriceLowCents:  180000,
				PriceHighCents: 120000,
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidPrice))
		})

		ginkgo.It("should reject negative prices", func() {
			_, err := service.CreateEntry(companyX, CreateEntryRequest{
				Name:          "Stratocaster",
				PriceLowCents: -1,
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject implausible years", func() {
			_, err := service.CreateEntry(companyX, CreateEntryRequest{
				Name:     "Stratocaster",
				YearFrom: 1542,
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
			appErr, _ := internal.IsAppError(err)
			gomega.Expect(appErr.Code).To(gomega.Equal(internal.ErrCodeInvalidYear))
		})

		ginkgo.It("should reject a category owned by another company", func() {
			category := mockRepo.addCategory(companyY, "Electric Guitars")

			_, err := service.CreateEntry(companyX, CreateEntryRequest{
				Name:       "Stratocaster",
				CategoryID: &category.ID,
			})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrCategoryNotFound))
		})
	})

	ginkgo.Describe("ListEntries", func() {
		ginkgo.It("should paginate and report the total", func() {
			for i := 0; i < 5; i++ {
				mockRepo.addEntry(companyX, "Entry", "Maker", 100, 200)
			}
			mockRepo.addEntry(companyY, "Foreign", "Maker", 100, 200)

			values := url.Values{}
			values.Set("page", "2")
			values.Set("page_size", "2")
			page, err := service.ListEntries(companyX, ParseListEntriesQuery(values))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(page.Total).To(gomega.Equal(int64(5)))
			gomega.Expect(page.Entries).To(gomega.HaveLen(2))
			gomega.Expect(page.Page).To(gomega.Equal(2))
		})

		ginkgo.It("should filter by search text", func() {
			mockRepo.addEntry(companyX, "Stratocaster", "Fender", 100, 200)
			mockRepo.addEntry(companyX, "Les Paul", "Gibson", 100, 200)

			values := url.Values{}
			values.Set("search", "strat")
			page, err := service.ListEntries(companyX, ParseListEntriesQuery(values))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(page.Entries).To(gomega.HaveLen(1))
			gomega.Expect(page.Entries[0].Name).To(gomega.Equal("Stratocaster"))
		})
	})

	ginkgo.Describe("UpdateEntry", func() {
		ginkgo.It("should apply partial updates and keep the rest", func() {
			record := mockRepo.addEntry(companyX, "Stratocaster", "Fender", 100000, 150000)

			newHigh := int64(200000)
			updated, err := service.UpdateEntry(record.ID, companyX, UpdateEntryRequest{
				PriceHighCents: &newHigh,
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Name).To(gomega.Equal("Stratocaster"))
			gomega.Expect(updated.PriceLowCents).To(gomega.Equal(int64(100000)))
			gomega.Expect(updated.PriceHighCents).To(gomega.Equal(int64(200000)))
		})

		ginkgo.It("should re-validate the merged entry", func() {
			record := mockRepo.addEntry(companyX, "Stratocaster", "Fender", 100000, 150000)

			badLow := int64(999999)
			_, err := service.UpdateEntry(record.ID, companyX, UpdateEntryRequest{
				PriceLowCents: &badLow,
			})

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should hide entries of other companies", func() {
			record := mockRepo.addEntry(companyY, "Stratocaster", "Fender", 100000, 150000)

			name := "Hijacked"
			_, err := service.UpdateEntry(record.ID, companyX, UpdateEntryRequest{Name: &name})

			gomega.Expect(err).To(gomega.MatchError(internal.ErrEntryNotFound))
		})
	})

	ginkgo.Describe("SetPublished", func() {
		ginkgo.It("should publish and unpublish", func() {
			record := mockRepo.addEntry(companyX, "Stratocaster", "Fender", 100000, 150000)

			published, err := service.SetPublished(record.ID, companyX, true)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(published.IsPublished).To(gomega.BeTrue())

			unpublished, err := service.SetPublished(record.ID, companyX, false)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(unpublished.IsPublished).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("categories", func() {
		ginkgo.It("should create and list categories per company", func() {
			_, err := service.CreateCategory(companyX, CreateCategoryRequest{Name: "Electric Guitars"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			mockRepo.addCategory(companyY, "Drums")

			categories, err := service.ListCategories(companyX)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(categories).To(gomega.HaveLen(1))
			gomega.Expect(categories[0].Name).To(gomega.Equal("Electric Guitars"))
		})

		ginkgo.It("should orphan entries when their category is deleted", func() {
			category := mockRepo.addCategory(companyX, "Electric Guitars")
			record := mockRepo.addEntry(companyX, "Stratocaster", "Fender", 100000, 150000)
			record.CategoryID = &category.ID

			gomega.Expect(service.DeleteCategory(category.ID, companyX)).To(gomega.Succeed())
			gomega.Expect(mockRepo.entries[record.ID].CategoryID).To(gomega.BeNil())
		})
	})
})

var _ = ginkgo.Describe("ParseListEntriesQuery", func() {
	ginkgo.It("should default page and page size", func() {
		query := ParseListEntriesQuery(url.Values{})
		gomega.Expect(query.Page).To(gomega.Equal(1))
		gomega.Expect(query.PageSize).To(gomega.Equal(defaultPageSize))
	})

	ginkgo.It("should clamp oversized pages", func() {
		values := url.Values{}
		values.Set("page_size", "9999")
		query := ParseListEntriesQuery(values)
		gomega.Expect(query.PageSize).To(gomega.Equal(maxPageSize))
	})

	ginkgo.It("should ignore malformed values", func() {
		values := url.Values{}
		values.Set("page", "abc")
		values.Set("category_id", "-4")
		query := ParseListEntriesQuery(values)
		gomega.Expect(query.Page).To(gomega.Equal(1))
		gomega.Expect(query.CategoryID).To(gomega.BeNil())
	})
})
