package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/pricebook-hq/pricebook-api/internal/auth"
	"github.com/pricebook-hq/pricebook-api/internal/transport"
	"github.com/pricebook-hq/pricebook-api/pkg/logger"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxImportUpload bounds the multipart parse, not the row count; the
// importer enforces its own row limit.
const maxImportUpload = 10 << 20

type ServiceAPI interface {
	CreateEntry(companyID int64, dto CreateEntryRequest) (*Entry, error)
	GetEntry(id, companyID int64) (*Entry, error)
	ListEntries(companyID int64, query ListEntriesQuery) (*EntriesPage, error)
	UpdateEntry(id, companyID int64, dto UpdateEntryRequest) (*Entry, error)
	DeleteEntry(id, companyID int64) error
	SetPublished(id, companyID int64, published bool) (*Entry, error)

	ListCategories(companyID int64) ([]*Category, error)
	CreateCategory(companyID int64, dto CreateCategoryRequest) (*Category, error)
	UpdateCategory(id, companyID int64, dto UpdateCategoryRequest) (*Category, error)
	DeleteCategory(id, companyID int64) error
}

type ExporterAPI interface {
	ExportWorkbook(companyID int64) (*bytes.Buffer, error)
}

type ImporterAPI interface {
	ParseWorkbook(reader io.Reader) ([]ImportRow, []RowError, error)
	Enqueue(companyID int64, rows []ImportRow, parseErrors []RowError) (*ImportJob, error)
	Status(jobID string) (*ImportJob, error)
}

type Handler struct {
	*transport.BaseHandler
	Service  ServiceAPI
	Exporter ExporterAPI
	Importer ImporterAPI
}

func NewHandler(service ServiceAPI, exporter ExporterAPI, importer ImporterAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Exporter:    exporter,
		Importer:    importer,
	}
}

func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	query := ParseListEntriesQuery(r.URL.Query())
	page, err := h.Service.ListEntries(principal.CompanyID, query)
	if err != nil {
		h.Logger.Error("ListEntries: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, page)
}

func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.CreateEntry(principal.CompanyID, dto)
	if err != nil {
		h.Logger.Error("CreateEntry: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := h.Service.GetEntry(entryID, principal.CompanyID)
	if err != nil {
		h.Logger.Error("GetEntry: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	var dto UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateEntry(entryID, principal.CompanyID, dto)
	if err != nil {
		h.Logger.Error("UpdateEntry: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := h.Service.DeleteEntry(entryID, principal.CompanyID); err != nil {
		h.Logger.Error("DeleteEntry: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PublishEntry(w http.ResponseWriter, r *http.Request) {
	h.setPublication(w, r, true)
}

func (h *Handler) UnpublishEntry(w http.ResponseWriter, r *http.Request) {
	h.setPublication(w, r, false)
}

func (h *Handler) setPublication(w http.ResponseWriter, r *http.Request, published bool) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	entry, err := h.Service.SetPublished(entryID, principal.CompanyID, published)
	if err != nil {
		h.Logger.Error("setPublication: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, entry)
}

// ExportEntries streams the company's catalog as an XLSX download.
func (h *Handler) ExportEntries(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	buf, err := h.Exporter.ExportWorkbook(principal.CompanyID)
	if err != nil {
		h.Logger.Error("ExportEntries: export failed", "error", err, "company_id", principal.CompanyID)
		h.HandleServiceError(w, err)
		return
	}

	filename := fmt.Sprintf("price-guide-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("ExportEntries: write failed", "error", err)
	}
}

// ImportEntries accepts an XLSX upload and queues it for processing.
// The response carries the job id to poll.
func (h *Handler) ImportEntries(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if err := r.ParseMultipartForm(maxImportUpload); err != nil {
		h.WriteError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	rows, parseErrors, err := h.Importer.ParseWorkbook(file)
	if err != nil {
		h.Logger.Warn("ImportEntries: unreadable workbook", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	job, err := h.Importer.Enqueue(principal.CompanyID, rows, parseErrors)
	if err != nil {
		h.Logger.Error("ImportEntries: enqueue failed", "error", err, "company_id", principal.CompanyID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusAccepted, job)
}

func (h *Handler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	job, err := h.Importer.Status(chi.URLParam(r, "jobID"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	// Jobs are visible to their own company only.
	if job.CompanyID != principal.CompanyID {
		h.WriteError(w, http.StatusNotFound, "Job not found")
		return
	}

	h.WriteJSON(w, http.StatusOK, job)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	categories, err := h.Service.ListCategories(principal.CompanyID)
	if err != nil {
		h.Logger.Error("ListCategories: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.Service.CreateCategory(principal.CompanyID, dto)
	if err != nil {
		h.Logger.Error("CreateCategory: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var dto UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateCategory(categoryID, principal.CompanyID, dto)
	if err != nil {
		h.Logger.Error("UpdateCategory: service error", "error", err, "category_id", categoryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	if err := h.Service.DeleteCategory(categoryID, principal.CompanyID); err != nil {
		h.Logger.Error("DeleteCategory: service error", "error", err, "category_id", categoryID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
