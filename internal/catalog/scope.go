package catalog

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/pricebook-hq/pricebook-api/internal/auth"
)

// RequireEntryScope guards entry-nested routes (tags, images) with a
// direct ownership lookup. The check reads one column instead of
// hydrating the whole entry, so it is cheap enough to run on every
// request.
func RequireEntryScope(db *sqlx.DB) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.UserFromContext(r.Context())
			if !ok {
				writeScopeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			entryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
			if err != nil {
				writeScopeError(w, http.StatusBadRequest, "invalid entry id")
				return
			}

			var ownerCompanyID int64
			err = db.GetContext(r.Context(), &ownerCompanyID,
				"SELECT company_id FROM catalog_entries WHERE id=$1", entryID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					writeScopeError(w, http.StatusNotFound, "entry not found")
					return
				}
				writeScopeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if ownerCompanyID != principal.CompanyID {
				// Cross-company probes read as missing entries.
				writeScopeError(w, http.StatusNotFound, "entry not found")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeScopeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    status,
		"message": message,
	})
}
