package migration

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/pricebook-hq/pricebook-api/internal/auth"
	"github.com/pricebook-hq/pricebook-api/internal/transport"
	"github.com/pricebook-hq/pricebook-api/pkg/logger"
)

type ServiceAPI interface {
	StartSession(companyID, startedByID int64, dto *StartSessionRequest) (*Session, error)
	AdvanceSession(sessionID string, companyID int64) (*Session, error)
	GetSession(sessionID string, companyID int64) (*Session, error)
	AbortSession(sessionID string, companyID int64) error
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

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var dto StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.Service.StartSession(principal.CompanyID, principal.ID, &dto)
	if err != nil {
		h.Logger.Error("StartSession: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, SessionToResponse(session))
}

func (h *Handler) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := h.Service.AdvanceSession(sessionID, principal.CompanyID)
	if err != nil {
		h.Logger.Error("AdvanceSession: service error", "error", err, "session_id", sessionID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SessionToResponse(session))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "id")
	session, err := h.Service.GetSession(sessionID, principal.CompanyID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SessionToResponse(session))
}

func (h *Handler) AbortSession(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "id")
	if err := h.Service.AbortSession(sessionID, principal.CompanyID); err != nil {
		h.Logger.Error("AbortSession: service error", "error", err, "session_id", sessionID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
