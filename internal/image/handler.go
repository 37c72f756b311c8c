package image

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/pricebook-hq/pricebook-api/internal/auth"
	"github.com/pricebook-hq/pricebook-api/internal/transport"
	"github.com/pricebook-hq/pricebook-api/pkg/logger"
)

type ServiceAPI interface {
	RegisterImage(companyID, uploadedBy int64, dto RegisterImageRequest) (*Image, error)
	ListImages(companyID int64) ([]*Image, error)
	DeleteImage(id, companyID int64) error
	ListEntryImages(entryID int64) ([]*Image, error)
	AttachImage(entryID, imageID, companyID int64) error
	DetachImage(entryID, imageID, companyID int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) ListImages(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	images, err := h.Service.ListImages(principal.CompanyID)
	if err != nil {
		h.Logger.Error("ListImages: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ImagesResponse{Images: images})
}

func (h *Handler) RegisterImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto RegisterImageRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	registered, err := h.Service.RegisterImage(principal.CompanyID, principal.ID, dto)
	if err != nil {
		h.Logger.Error("RegisterImage: service error", "error", err, "file_name", dto.FileName)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, registered)
}

func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	imageID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := h.Service.DeleteImage(imageID, principal.CompanyID); err != nil {
		h.Logger.Error("DeleteImage: service error", "error", err, "image_id", imageID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListEntryImages(w http.ResponseWriter, r *http.Request) {
	entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	images, err := h.Service.ListEntryImages(entryID)
	if err != nil {
		h.Logger.Error("ListEntryImages: service error", "error", err, "entry_id", entryID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ImagesResponse{Images: images})
}

func (h *Handler) AttachImage(w http.ResponseWriter, r *http.Request) {
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

	var dto AttachImageRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Service.AttachImage(entryID, dto.ImageID, principal.CompanyID); err != nil {
		h.Logger.Error("AttachImage: service error", "error", err, "entry_id", entryID, "image_id", dto.ImageID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DetachImage(w http.ResponseWriter, r *http.Request) {
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

	imageID, err := strconv.ParseInt(chi.URLParam(r, "imageID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid image id")
		return
	}

	if err := h.Service.DetachImage(entryID, imageID, principal.CompanyID); err != nil {
		h.Logger.Error("DetachImage: service error", "error", err, "entry_id", entryID, "image_id", imageID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
