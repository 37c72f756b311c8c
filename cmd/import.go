package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pricebook-hq/pricebook-api/internal/catalog"
	catalogPostgres "github.com/pricebook-hq/pricebook-api/internal/catalog/postgres"
	"github.com/pricebook-hq/pricebook-api/internal/core/events"
	"github.com/pricebook-hq/pricebook-api/pkg/logger"

	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	importFile      string
	importCompanyID int64
	importWorkers   int
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import catalog entries from an XLSX workbook",
	Long:  `Parse an XLSX workbook and upsert its rows into a company's catalog without going through the HTTP API.`,
	Run: func(cmd *cobra.Command, args []string) {
		runImport()
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the XLSX workbook")
	importCmd.Flags().Int64VarP(&importCompanyID, "company", "c", 0, "company id that owns the imported entries")
	importCmd.Flags().IntVar(&importWorkers, "workers", 0, "number of import workers (overrides config)")
	_ = importCmd.MarkFlagRequired("file")
	_ = importCmd.MarkFlagRequired("company")
}

func runImport() {
	cfg, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.LoggerWrapper()

	db, err := initDB(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init db: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init orm: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(importFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open workbook: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	eventBus := events.NewEventBus(appLogger)
	repo := catalogPostgres.NewCatalogRepository(gormDB)
	importer := catalog.NewImporter(repo, eventBus, catalog.ImporterConfig{
		Workers: getIntFlag(importWorkers, cfg.Catalog.ImportWorkers),
		MaxRows: cfg.Catalog.ImportMaxRows,
	}, appLogger)

	rows, rowErrors, err := importer.ParseWorkbook(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse workbook: %v\n", err)
		os.Exit(1)
	}

	job, err := importer.Enqueue(importCompanyID, rows, rowErrors)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to enqueue import: %v\n", err)
		os.Exit(1)
	}

	appLogger.Info("import job enqueued", "job_id", job.ID, "rows", len(rows))

	for job.Status != catalog.JobStatusCompleted && job.Status != catalog.JobStatusFailed {
		time.Sleep(200 * time.Millisecond)
		job, err = importer.Status(job.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read job status: %v\n", err)
			os.Exit(1)
		}
	}

	importer.Shutdown()

	fmt.Printf("Import %s: %d created, %d updated, %d failed of %d rows\n",
		job.Status, job.Created, job.Updated, job.Failed, job.TotalRows)
	for _, rowErr := range job.RowErrors {
		fmt.Printf("  row %d: %s\n", rowErr.Row, rowErr.Message)
	}
}

func getIntFlag(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}
