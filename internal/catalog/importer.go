package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/pricebook-hq/pricebook-api/internal"
	"github.com/pricebook-hq/pricebook-api/internal/core/events"
)

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// RowError pins a failure to its workbook row so the uploader can fix
// the sheet and retry.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportJob tracks one uploaded workbook through the pool. Rows are
// independent: a bad row is recorded and skipped, never the whole job.
type ImportJob struct {
	ID          string     `json:"id"`
	CompanyID   int64      `json:"company_id"`
	Status      JobStatus  `json:"status"`
	TotalRows   int        `json:"total_rows"`
	Created     int        `json:"created"`
	Updated     int        `json:"updated"`
	Failed      int        `json:"failed"`
	RowErrors   []RowError `json:"row_errors,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ImportRow is one parsed workbook line, not yet validated.
type ImportRow struct {
	Line  int
	Entry Entry
}

type importTask struct {
	jobID     string
	companyID int64
	rows      []ImportRow
}

type importWorker struct {
	id         int
	workerPool chan chan importTask
	jobChannel chan importTask
	logger     *slog.Logger
}

func newImportWorker(id int, workerPool chan chan importTask, logger *slog.Logger) *importWorker {
	return &importWorker{
		id:         id,
		workerPool: workerPool,
		jobChannel: make(chan importTask),
		logger:     logger,
	}
}

func (w *importWorker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(importTask)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.workerPool <- w.jobChannel

			select {
			case task := <-w.jobChannel:
				w.logger.Debug("worker processing import", "worker_id", w.id, "job_id", task.jobID)
				processFunc(task)
			case <-ctx.Done():
				w.logger.Debug("import worker shutting down", "worker_id", w.id)
				return
			}
		}
	}()
}

type ImporterConfig struct {
	Workers   int
	QueueSize int
	MaxRows   int
}

// Importer runs workbook imports on a bounded worker pool. Job state
// lives in memory only; a restart forgets unfinished jobs and their
// results, which callers learn about through a job-not-found status.
type Importer struct {
	repo     RepositoryAPI
	eventBus *events.EventBus
	logger   *slog.Logger
	maxRows  int

	jobQueue   chan importTask
	workerPool chan chan importTask
	maxWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	mu   sync.RWMutex
	jobs map[string]*ImportJob
}

func NewImporter(repo RepositoryAPI, eventBus *events.EventBus, config ImporterConfig, logger *slog.Logger) *Importer {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	queueSize := config.QueueSize
	if queueSize <= 0 {
		queueSize = 16
	}
	maxRows := config.MaxRows
	if maxRows <= 0 {
		maxRows = 10000
	}

	importer := &Importer{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
		maxRows:  maxRows,

		maxWorkers: maxWorkers,
		jobQueue:   make(chan importTask, queueSize),
		workerPool: make(chan chan importTask, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,

		jobs: make(map[string]*ImportJob),
	}

	importer.startWorkerPool()

	return importer
}

func (imp *Importer) startWorkerPool() {
	imp.once.Do(func() {
		for i := 0; i < imp.maxWorkers; i++ {
			worker := newImportWorker(i, imp.workerPool, imp.logger)
			worker.Start(imp.ctx, &imp.wg, imp.processTask)
		}

		imp.wg.Add(1)
		go imp.dispatch()

		imp.logger.Info("catalog import pool started",
			"max_workers", imp.maxWorkers,
			"queue_size", cap(imp.jobQueue))
	})
}

func (imp *Importer) dispatch() {
	defer imp.wg.Done()

	for {
		select {
		case task := <-imp.jobQueue:
			select {
			case jobChannel := <-imp.workerPool:
				select {
				case jobChannel <- task:
				case <-imp.ctx.Done():
					imp.logger.Info("import dispatcher shutting down")
					return
				}
			case <-imp.ctx.Done():
				imp.logger.Info("import dispatcher shutting down")
				return
			}
		case <-imp.ctx.Done():
			imp.logger.Info("import dispatcher shutting down")
			return
		}
	}
}

func (imp *Importer) Shutdown() {
	imp.logger.Info("shutting down catalog importer")
	imp.cancel()
	imp.wg.Wait()
	imp.logger.Info("catalog importer shutdown complete")
}

// ParseWorkbook reads the first sheet into import rows. Rows that
// cannot be parsed come back as row errors; only a defective file or
// a sheet over the row limit fails the whole call.
func (imp *Importer) ParseWorkbook(reader io.Reader) ([]ImportRow, []RowError, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, internal.NewValidationError("file is not a readable workbook", internal.ErrCodeInvalidFile)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, internal.NewValidationError("workbook has no sheets", internal.ErrCodeInvalidFile)
	}

	rawRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, internal.NewValidationError("failed to read workbook rows", internal.ErrCodeInvalidFile)
	}
	if len(rawRows) < 2 {
		return nil, nil, internal.NewValidationError("workbook has no data rows", internal.ErrCodeInvalidFile)
	}
	if len(rawRows)-1 > imp.maxRows {
		return nil, nil, internal.NewValidationError(
			fmt.Sprintf("workbook exceeds the %d row limit", imp.maxRows), internal.ErrCodeInvalidFile)
	}

	columns := make(map[string]int)
	for idx, header := range rawRows[0] {
		columns[normalizeHeader(header)] = idx
	}
	if _, ok := columns["name"]; !ok {
		return nil, nil, internal.NewValidationError("workbook is missing the Name column", internal.ErrCodeInvalidFile)
	}

	var rows []ImportRow
	var rowErrors []RowError
	for i, rawRow := range rawRows[1:] {
		line := i + 2

		if isBlankRow(rawRow) {
			continue
		}

		entry, err := parseEntryRow(rawRow, columns)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: line, Message: err.Error()})
			continue
		}

		rows = append(rows, ImportRow{Line: line, Entry: entry})
	}

	return rows, rowErrors, nil
}

// Enqueue registers a job and hands it to the pool. A full queue
// rejects the upload rather than buffering without bound.
func (imp *Importer) Enqueue(companyID int64, rows []ImportRow, parseErrors []RowError) (*ImportJob, error) {
	job := &ImportJob{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Status:    JobStatusPending,
		TotalRows: len(rows) + len(parseErrors),
		Failed:    len(parseErrors),
		RowErrors: append([]RowError(nil), parseErrors...),
		CreatedAt: time.Now(),
	}

	imp.mu.Lock()
	imp.jobs[job.ID] = job
	imp.mu.Unlock()

	task := importTask{
		jobID:     job.ID,
		companyID: companyID,
		rows:      rows,
	}

	select {
	case imp.jobQueue <- task:
		imp.logger.Info("import job queued",
			"job_id", job.ID,
			"company_id", companyID,
			"rows", len(rows),
			"queue_length", len(imp.jobQueue))
	default:
		imp.mu.Lock()
		delete(imp.jobs, job.ID)
		imp.mu.Unlock()

		imp.logger.Warn("import queue full, rejecting upload",
			"company_id", companyID,
			"queue_capacity", cap(imp.jobQueue))
		return nil, internal.ErrImportQueueFull
	}

	return imp.snapshot(job.ID), nil
}

// Status returns a copy of the job so callers never see a row count
// mid-update.
func (imp *Importer) Status(jobID string) (*ImportJob, error) {
	job := imp.snapshot(jobID)
	if job == nil {
		return nil, internal.ErrJobNotFound
	}
	return job, nil
}

func (imp *Importer) snapshot(jobID string) *ImportJob {
	imp.mu.RLock()
	defer imp.mu.RUnlock()

	job, ok := imp.jobs[jobID]
	if !ok {
		return nil
	}

	clone := *job
	clone.RowErrors = append([]RowError(nil), job.RowErrors...)
	if job.CompletedAt != nil {
		completedAt := *job.CompletedAt
		clone.CompletedAt = &completedAt
	}
	return &clone
}

func (imp *Importer) processTask(task importTask) {
	imp.setStatus(task.jobID, JobStatusRunning)

	var created, updated, failed int
	var rowErrors []RowError

	for _, row := range task.rows {
		select {
		case <-imp.ctx.Done():
			imp.logger.Info("import cancelled", "job_id", task.jobID)
			return
		default:
		}

		entry := row.Entry
		entry.CompanyID = task.companyID
		if entry.Currency == "" {
			entry.Currency = defaultCurrency
		}

		if err := entry.Validate(); err != nil {
			rowErrors = append(rowErrors, RowError{Row: row.Line, Message: err.Error()})
			failed++
			continue
		}

		existing, err := imp.repo.FindEntryByIdentity(task.companyID, entry.Name, entry.Maker, entry.ModelNo)
		if err != nil {
			rowErrors = append(rowErrors, RowError{Row: row.Line, Message: "storage error, row skipped"})
			failed++
			continue
		}

		if existing != nil {
			existing.YearFrom = entry.YearFrom
			existing.YearTo = entry.YearTo
			existing.PriceLowCents = entry.PriceLowCents
			existing.PriceHighCents = entry.PriceHighCents
			existing.Currency = entry.Currency
			if entry.Notes != "" {
				existing.Notes = entry.Notes
			}
			if err := imp.repo.UpdateEntry(existing); err != nil {
				rowErrors = append(rowErrors, RowError{Row: row.Line, Message: "failed to update existing entry"})
				failed++
				continue
			}
			updated++
			continue
		}

		if err := imp.repo.CreateEntry(EntryToDataModel(&entry)); err != nil {
			rowErrors = append(rowErrors, RowError{Row: row.Line, Message: "failed to insert entry"})
			failed++
			continue
		}
		created++
	}

	imp.finishJob(task.jobID, created, updated, failed, rowErrors)

	imp.logger.Info("import job finished",
		"job_id", task.jobID,
		"created", created,
		"updated", updated,
		"failed", failed)

	if imp.eventBus != nil {
		event := events.NewImportCompletedEvent(task.jobID, task.companyID, created, updated, failed)
		if err := imp.eventBus.Publish(context.Background(), event); err != nil {
			imp.logger.Warn("failed to publish import event", "error", err, "job_id", task.jobID)
		}
	}
}

func (imp *Importer) setStatus(jobID string, status JobStatus) {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	if job, ok := imp.jobs[jobID]; ok {
		job.Status = status
	}
}

func (imp *Importer) finishJob(jobID string, created, updated, failed int, rowErrors []RowError) {
	imp.mu.Lock()
	defer imp.mu.Unlock()

	job, ok := imp.jobs[jobID]
	if !ok {
		return
	}

	job.Created = created
	job.Updated = updated
	job.Failed += failed
	job.RowErrors = append(job.RowErrors, rowErrors...)

	if created+updated == 0 && job.Failed > 0 {
		job.Status = JobStatusFailed
	} else {
		job.Status = JobStatusCompleted
	}

	completedAt := time.Now()
	job.CompletedAt = &completedAt
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseEntryRow(row []string, columns map[string]int) (Entry, error) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	entry := Entry{
		Name:     cell("name"),
		Maker:    cell("maker"),
		ModelNo:  cell("model no"),
		Currency: strings.ToUpper(cell("currency")),
		Notes:    cell("notes"),
	}

	var err error
	if entry.YearFrom, err = parseYearCell(cell("year from")); err != nil {
		return Entry{}, fmt.Errorf("year from: %w", err)
	}
	if entry.YearTo, err = parseYearCell(cell("year to")); err != nil {
		return Entry{}, fmt.Errorf("year to: %w", err)
	}
	if entry.PriceLowCents, err = parsePriceCell(cell("price low")); err != nil {
		return Entry{}, fmt.Errorf("price low: %w", err)
	}
	if entry.PriceHighCents, err = parsePriceCell(cell("price high")); err != nil {
		return Entry{}, fmt.Errorf("price high: %w", err)
	}

	switch strings.ToLower(cell("published")) {
	case "yes", "true", "1":
		entry.IsPublished = true
	}

	return entry, nil
}

func parseYearCell(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%q is not a year", value)
	}
	return year, nil
}

// parsePriceCell reads a major-unit price ("1249.99") into cents.
func parsePriceCell(value string) (int64, error) {
	if value == "" {
		return 0, nil
	}

	cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(value)
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a price", value)
	}
	if price < 0 {
		return 0, fmt.Errorf("%q is negative", value)
	}
	return int64(price*100 + 0.5), nil
}
