package permissions

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/pricebook-hq/pricebook-api/internal/auth"
	"github.com/pricebook-hq/pricebook-api/internal/core/events"
	"github.com/pricebook-hq/pricebook-api/internal/transport"
	"github.com/pricebook-hq/pricebook-api/pkg/logger"
)

type ServiceAPI interface {
	GetAvailableRoles(companyID int64) ([]*Role, error)
	GetUserRoles(userID, companyID int64) ([]*Role, error)
	AssignRole(userID, roleID, companyID int64, assignedBy *int64) (*AssignResult, error)
	RevokeRole(userID, roleID, companyID int64) (bool, error)
	RevokeAllRoles(userID, companyID int64) (int, error)
	CreateRole(name, displayName string, perms []string, isDefault bool, companyID *int64) (*Role, error)
	UpdateRole(id int64, displayName *string, perms []string, isDefault *bool) (*Role, error)
	DeleteRole(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Events  *events.EventBus
}

func NewHandler(service ServiceAPI, bus *events.EventBus) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
		Events:      bus,
	}
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	roles, err := h.Service.GetAvailableRoles(user.CompanyID)
	if err != nil {
		h.Logger.Error("ListRoles: service error", "error", err, "company_id", user.CompanyID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var companyID *int64
	if !dto.Global {
		companyID = &user.CompanyID
	}

	role, err := h.Service.CreateRole(dto.Name, dto.DisplayName, dto.Permissions, dto.IsDefault, companyID)
	if err != nil {
		h.Logger.Error("CreateRole: service error", "error", err, "name", dto.Name)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, role)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	var dto UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.UpdateRole(roleID, dto.DisplayName, dto.Permissions, dto.IsDefault)
	if err != nil {
		h.Logger.Error("UpdateRole: service error", "error", err, "role_id", roleID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	if err := h.Service.DeleteRole(roleID); err != nil {
		h.Logger.Error("DeleteRole: service error", "error", err, "role_id", roleID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetUserRoles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	roles, err := h.Service.GetUserRoles(userID, user.CompanyID)
	if err != nil {
		h.Logger.Error("GetUserRoles: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RolesResponse{Roles: roles})
}

// AssignRole maps the structured assignment outcome onto HTTP: a
// duplicate is 409 with the rejection message, success is 200 with the
// created assignment.
func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var dto AssignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AssignRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.Service.AssignRole(userID, dto.RoleID, user.CompanyID, &user.ID)
	if err != nil {
		h.Logger.Error("AssignRole: service error", "error", err,
			"user_id", userID, "role_id", dto.RoleID)
		h.HandleServiceError(w, err)
		return
	}

	if !result.Success {
		h.WriteJSON(w, http.StatusConflict, result)
		return
	}

	h.Events.Publish(r.Context(), events.NewRoleAssignedEvent(userID, dto.RoleID, user.CompanyID, &user.ID))
	h.WriteJSON(w, http.StatusOK, result)
}

// RevokeRole turns the service's boolean outcome into 204 or 404.
func (h *Handler) RevokeRole(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	roleID, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid role id")
		return
	}

	revoked, err := h.Service.RevokeRole(userID, roleID, user.CompanyID)
	if err != nil {
		h.Logger.Error("RevokeRole: service error", "error", err,
			"user_id", userID, "role_id", roleID)
		h.HandleServiceError(w, err)
		return
	}

	if !revoked {
		h.WriteError(w, http.StatusNotFound, "assignment not found")
		return
	}

	h.Events.Publish(r.Context(), events.NewRoleRevokedEvent(userID, roleID, user.CompanyID, 1))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RevokeAllRoles(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	count, err := h.Service.RevokeAllRoles(userID, user.CompanyID)
	if err != nil {
		h.Logger.Error("RevokeAllRoles: service error", "error", err, "user_id", userID)
		h.HandleServiceError(w, err)
		return
	}

	if count > 0 {
		h.Events.Publish(r.Context(), events.NewRoleRevokedEvent(userID, 0, user.CompanyID, count))
	}
	h.WriteJSON(w, http.StatusOK, RevokeAllResponse{Revoked: count})
}
