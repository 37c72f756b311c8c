package catalog

import (
	"bytes"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/pricebook-hq/pricebook-api/internal"
	catalogDatamodel "github.com/pricebook-hq/pricebook-api/internal/core/datamodel/catalog"
)

// syncCatalogRepo wraps the mock with a lock so pool workers can hit
// it concurrently. blockCreate, when set, parks CreateEntry until the
// channel closes.
type syncCatalogRepo struct {
	mu sync.Mutex
	*mockCatalogRepository
	blockCreate chan struct{}
}

func newSyncCatalogRepo() *syncCatalogRepo {
	return &syncCatalogRepo{mockCatalogRepository: newMockCatalogRepository()}
}

func (s *syncCatalogRepo) FindEntryByIdentity(companyID int64, name, maker, modelNo string) (*catalogDatamodel.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mockCatalogRepository.FindEntryByIdentity(companyID, name, maker, modelNo)
}

func (s *syncCatalogRepo) CreateEntry(record *catalogDatamodel.Entry) error {
	if s.blockCreate != nil {
		<-s.blockCreate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mockCatalogRepository.CreateEntry(record)
}

func (s *syncCatalogRepo) UpdateEntry(record *catalogDatamodel.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mockCatalogRepository.UpdateEntry(record)
}

func (s *syncCatalogRepo) entryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func buildWorkbook(rows ...[]interface{}) *bytes.Reader {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	header := []interface{}{"Name", "Maker", "Model No", "Year From", "Year To", "Price Low", "Price High", "Currency", "Notes", "Published"}
	gomega.Expect(f.SetSheetRow(sheet, "A1", &header)).To(gomega.Succeed())

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(f.SetSheetRow(sheet, cell, &row)).To(gomega.Succeed())
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(f.Close()).To(gomega.Succeed())

	return bytes.NewReader(buf.Bytes())
}

var _ = ginkgo.Describe("Catalog Importer", func() {
	var (
		importer   *Importer
		repo       *syncCatalogRepo
		testLogger *slog.Logger

		companyX int64 = 10
	)

	ginkgo.BeforeEach(func() {
		testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newSyncCatalogRepo()
		importer = NewImporter(repo, nil, ImporterConfig{Workers: 2, QueueSize: 8, MaxRows: 100}, testLogger)
	})

	ginkgo.AfterEach(func() {
		importer.Shutdown()
	})

	ginkgo.Describe("ParseWorkbook", func() {
		ginkgo.It("should parse well formed rows", func() {
			reader := buildWorkbook(
				[]interface{}{"Stratocaster", "Fender", "ST-62", 1962, 1965, 1200.00, 1800.00, "USD", "sunburst", "Yes"},
				[]interface{}{"Les Paul", "Gibson", "", "", "", 2500, 4000, "", "", ""},
			)

			rows, parseErrors, err := importer.ParseWorkbook(reader)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(parseErrors).To(gomega.BeEmpty())
			gomega.Expect(rows).To(gomega.HaveLen(2))

			gomega.Expect(rows[0].Entry.Name).To(gomega.Equal("Stratocaster"))
			gomega.Expect(rows[0].Entry.YearFrom).To(gomega.Equal(1962))
			gomega.Expect(rows[0].Entry.PriceLowCents).To(gomega.Equal(int64(120000)))
			gomega.Expect(rows[0].Entry.IsPublished).To(gomega.BeTrue())

			gomega.Expect(rows[1].Entry.PriceHighCents).To(gomega.Equal(int64(400000)))
			gomega.Expect(rows[1].Entry.IsPublished).To(gomega.BeFalse())
		})

		ginkgo.It("should collect unparseable rows instead of failing the file", func() {
			reader := buildWorkbook(
				[]interface{}{"Stratocaster", "Fender", "", "", "", "not-a-price", 1800, "USD", "", ""},
				[]interface{}{"Les Paul", "Gibson", "", "", "", 2500, 4000, "USD", "", ""},
			)

			rows, parseErrors, err := importer.ParseWorkbook(reader)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rows).To(gomega.HaveLen(1))
			gomega.Expect(parseErrors).To(gomega.HaveLen(1))
			gomega.Expect(parseErrors[0].Row).To(gomega.Equal(2))
			gomega.Expect(parseErrors[0].Message).To(gomega.ContainSubstring("price low"))
		})

		ginkgo.It("should reject a workbook without a Name column", func() {
			f := excelize.NewFile()
			sheet := f.GetSheetName(0)
			header := []interface{}{"Maker", "Price Low"}
			gomega.Expect(f.SetSheetRow(sheet, "A1", &header)).To(gomega.Succeed())
			row := []interface{}{"Fender", 100}
			gomega.Expect(f.SetSheetRow(sheet, "A2", &row)).To(gomega.Succeed())
			var buf bytes.Buffer
			_, err := f.WriteTo(&buf)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, _, err = importer.ParseWorkbook(bytes.NewReader(buf.Bytes()))

			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should reject garbage bytes", func() {
			_, _, err := importer.ParseWorkbook(bytes.NewReader([]byte("not a workbook")))
			gomega.Expect(err).To(gomega.HaveOccurred())
		})

		ginkgo.It("should enforce the row limit", func() {
			limited := NewImporter(repo, nil, ImporterConfig{Workers: 1, QueueSize: 1, MaxRows: 1}, testLogger)
			defer limited.Shutdown()

			reader := buildWorkbook(
				[]interface{}{"One", "", "", "", "", 1, 2, "USD", "", ""},
				[]interface{}{"Two", "", "", "", "", 1, 2, "USD", "", ""},
			)

			_, _, err := limited.ParseWorkbook(reader)
			gomega.Expect(err).To(gomega.HaveOccurred())
		})
	})

	ginkgo.Describe("Enqueue and processing", func() {
		ginkgo.It("should insert new rows and report counts", func() {
			rows := []ImportRow{
				{Line: 2, Entry: Entry{Name: "Stratocaster", Maker: "Fender", PriceLowCents: 100, PriceHighCents: 200}},
				{Line: 3, Entry: Entry{Name: "Les Paul", Maker: "Gibson", PriceLowCents: 300, PriceHighCents: 400}},
			}

			job, err := importer.Enqueue(companyX, rows, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(job.Status).To(gomega.BeElementOf(JobStatusPending, JobStatusRunning, JobStatusCompleted))

			gomega.Eventually(func() JobStatus {
				status, err := importer.Status(job.ID)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				return status.Status
			}, 3*time.Second, 10*time.Millisecond).Should(gomega.Equal(JobStatusCompleted))

			final, err := importer.Status(job.ID)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(final.Created).To(gomega.Equal(2))
			gomega.Expect(final.Failed).To(gomega.BeZero())
			gomega.Expect(repo.entryCount()).To(gomega.Equal(2))
		})

		ginkgo.It("should update rows that match an existing entry", func() {
			existing := repo.mockCatalogRepository.addEntry(companyX, "Stratocaster", "Fender", 100, 200)

			rows := []ImportRow{
				{Line: 2, Entry: Entry{Name: "Stratocaster", Maker: "Fender", PriceLowCents: 111, PriceHighCents: 222}},
			}

			job, err := importer.Enqueue(companyX, rows, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Eventually(func() JobStatus {
				status, _ := importer.Status(job.ID)
				return status.Status
			}, 3*time.Second, 10*time.Millisecond).Should(gomega.Equal(JobStatusCompleted))

			final, _ := importer.Status(job.ID)
			gomega.Expect(final.Updated).To(gomega.Equal(1))
			gomega.Expect(final.Created).To(gomega.BeZero())
			gomega.Expect(repo.mockCatalogRepository.entries[existing.ID].PriceLowCents).To(gomega.Equal(int64(111)))
		})

		ginkgo.It("should record invalid rows and keep going", func() {
			rows := []ImportRow{
				{Line: 2, Entry: Entry{Name: "", PriceLowCents: 100, PriceHighCents: 200}},
				{Line: 3, Entry: Entry{Name: "Les Paul", Maker: "Gibson", PriceLowCents: 300, PriceHighCents: 400}},
			}

			job, err := importer.Enqueue(companyX, rows, nil)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Eventually(func() JobStatus {
				status, _ := importer.Status(job.ID)
				return status.Status
			}, 3*time.Second, 10*time.Millisecond).Should(gomega.Equal(JobStatusCompleted))

			final, _ := importer.Status(job.ID)
			gomega.Expect(final.Created).To(gomega.Equal(1))
			gomega.Expect(final.Failed).To(gomega.Equal(1))
			gomega.Expect(final.RowErrors).To(gomega.HaveLen(1))
			gomega.Expect(final.RowErrors[0].Row).To(gomega.Equal(2))
		})

		ginkgo.It("should carry parse errors into the job result", func() {
			parseErrors := []RowError{{Row: 2, Message: "price low: \"x\" is not a price"}}

			job, err := importer.Enqueue(companyX, nil, parseErrors)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Eventually(func() JobStatus {
				status, _ := importer.Status(job.ID)
				return status.Status
			}, 3*time.Second, 10*time.Millisecond).ShouldNot(gomega.Equal(JobStatusPending))

			final, _ := importer.Status(job.ID)
			gomega.Expect(final.Failed).To(gomega.Equal(1))
			gomega.Expect(final.TotalRows).To(gomega.Equal(1))
		})

		ginkgo.It("should reject uploads when the queue is full", func() {
			blocked := newSyncCatalogRepo()
			blocked.blockCreate = make(chan struct{})
			tiny := NewImporter(blocked, nil, ImporterConfig{Workers: 1, QueueSize: 1, MaxRows: 100}, testLogger)

			rows := []ImportRow{
				{Line: 2, Entry: Entry{Name: "Stratocaster", PriceLowCents: 1, PriceHighCents: 2}},
			}

			gomega.Eventually(func() error {
				_, err := tiny.Enqueue(companyX, rows, nil)
				return err
			}, 3*time.Second, 10*time.Millisecond).Should(gomega.MatchError(internal.ErrImportQueueFull))

			close(blocked.blockCreate)
			tiny.Shutdown()
		})
	})

	ginkgo.Describe("Status", func() {
		ginkgo.It("should return not found for unknown jobs", func() {
			_, err := importer.Status("no-such-job")
			gomega.Expect(err).To(gomega.MatchError(internal.ErrJobNotFound))
		})
	})
})
