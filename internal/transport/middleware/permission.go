package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pricebook-hq/pricebook-api/internal/auth"
)

// PermissionChecker is the slice of the permission service route
// guards rely on. Checks run through the service, not against the
// principal's flattened list, so wildcard grants are honored.
type PermissionChecker interface {
	HasAnyPermission(userID int64, permissions []string, companyID int64) (bool, error)
}

// RequirePermissions admits the request when the principal holds any
// of the given permissions within its company.
func RequirePermissions(checker PermissionChecker, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.UserFromContext(r.Context())
			if !ok || principal == nil {
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			allowed, err := checker.HasAnyPermission(principal.ID, permissions, principal.CompanyID)
			if err != nil {
				slog.Error("permission check failed",
					"user_id", principal.ID,
					"company_id", principal.CompanyID,
					"required_permissions", permissions,
					"error", err)
				writeJSONError(w, http.StatusInternalServerError, "permission check failed")
				return
			}

			if !allowed {
				slog.Warn("access denied: user lacks required permissions",
					"user_id", principal.ID,
					"company_id", principal.CompanyID,
					"required_permissions", permissions)
				writeJSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"code":` + strconv.Itoa(status) + `,"message":"` + message + `"}`))
}
