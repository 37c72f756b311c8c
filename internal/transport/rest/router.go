package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"

	"github.com/pricebook-hq/pricebook-api/internal/auth"
	"github.com/pricebook-hq/pricebook-api/internal/catalog"
	"github.com/pricebook-hq/pricebook-api/internal/company"
	"github.com/pricebook-hq/pricebook-api/internal/image"
	"github.com/pricebook-hq/pricebook-api/internal/migration"
	"github.com/pricebook-hq/pricebook-api/internal/permissions"
	"github.com/pricebook-hq/pricebook-api/internal/tag"
	"github.com/pricebook-hq/pricebook-api/internal/transport/middleware"
	"github.com/pricebook-hq/pricebook-api/internal/transport/swagger"
	"github.com/pricebook-hq/pricebook-api/internal/user"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sqlx.DB,
	permChecker middleware.PermissionChecker,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	companyHandler *company.Handler,
	roleHandler *permissions.Handler,
	catalogHandler *catalog.Handler,
	tagHandler *tag.Handler,
	imageHandler *image.Handler,
	migrationHandler *migration.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db.DB)

	// requires guards a route with a permission check resolved through
	// the permission service, so wildcard grants match.
	requires := func(perms ...string) func(http.Handler) http.Handler {
		return middleware.RequirePermissions(permChecker, perms...)
	}

	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec and swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if authHandler != nil {
			r.Route("/auth", func(ar chi.Router) {
				ar.Post("/login", authHandler.Login)
				ar.Post("/refresh", authHandler.RefreshToken)
				ar.Post("/logout", authHandler.Logout)
			})
		}

		if authHandler == nil {
			return
		}

		// Everything below requires an authenticated principal.
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			if userHandler != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/me", userHandler.GetMe)
					ur.With(requires("role:read")).Get("/", userHandler.ListUsers)
					ur.With(requires("role:manage")).Post("/", userHandler.CreateUser)
					ur.With(requires("role:manage")).Delete("/{userID}", userHandler.DeactivateUser)

					if roleHandler != nil {
						ur.Route("/{userID}/roles", func(rr chi.Router) {
							rr.With(requires("role:read")).Get("/", roleHandler.GetUserRoles)
							rr.With(requires("role:manage")).Post("/", roleHandler.AssignRole)
							rr.With(requires("role:manage")).Delete("/", roleHandler.RevokeAllRoles)
							rr.With(requires("role:manage")).Delete("/{roleID}", roleHandler.RevokeRole)
						})
					}
				})
			}

			if companyHandler != nil {
				pr.Route("/companies", func(cr chi.Router) {
					cr.Use(requires("role:manage"))
					cr.Get("/", companyHandler.ListCompanies)
					cr.Post("/", companyHandler.CreateCompany)
					cr.Get("/{id}", companyHandler.GetCompany)
				})
			}

			if roleHandler != nil {
				pr.Route("/roles", func(rr chi.Router) {
					rr.With(requires("role:read")).Get("/", roleHandler.ListRoles)
					rr.With(requires("role:manage")).Post("/", roleHandler.CreateRole)
					rr.With(requires("role:manage")).Patch("/{id}", roleHandler.UpdateRole)
					rr.With(requires("role:manage")).Delete("/{id}", roleHandler.DeleteRole)
				})
			}

			if catalogHandler != nil {
				pr.Route("/catalog", func(cr chi.Router) {
					cr.Route("/entries", func(er chi.Router) {
						er.With(requires("catalog:read")).Get("/", catalogHandler.ListEntries)
						er.With(requires("catalog:create")).Post("/", catalogHandler.CreateEntry)
						er.With(requires("catalog:read")).Get("/{id}", catalogHandler.GetEntry)
						er.With(requires("catalog:update")).Patch("/{id}", catalogHandler.UpdateEntry)
						er.With(requires("catalog:delete")).Delete("/{id}", catalogHandler.DeleteEntry)
						er.With(requires("catalog:update")).Post("/{id}/publish", catalogHandler.PublishEntry)
						er.With(requires("catalog:update")).Post("/{id}/unpublish", catalogHandler.UnpublishEntry)

						// Entry-nested tag and image routes verify the
						// entry belongs to the caller's company.
						er.Group(func(nr chi.Router) {
							nr.Use(catalog.RequireEntryScope(db))

							if tagHandler != nil {
								nr.With(requires("tag:read")).Get("/{id}/tags", tagHandler.ListEntryTags)
								nr.With(requires("tag:manage")).Post("/{id}/tags", tagHandler.AttachTag)
								nr.With(requires("tag:manage")).Delete("/{id}/tags/{tagID}", tagHandler.DetachTag)
							}
							if imageHandler != nil {
								nr.With(requires("image:read")).Get("/{id}/images", imageHandler.ListEntryImages)
								nr.With(requires("image:manage")).Post("/{id}/images", imageHandler.AttachImage)
								nr.With(requires("image:manage")).Delete("/{id}/images/{imageID}", imageHandler.DetachImage)
							}
						})
					})

					cr.With(requires("catalog:export")).Get("/export", catalogHandler.ExportEntries)
					cr.With(requires("catalog:import")).Post("/import", catalogHandler.ImportEntries)
					cr.With(requires("catalog:import")).Get("/import/{jobID}", catalogHandler.ImportStatus)

					cr.Route("/categories", func(gr chi.Router) {
						gr.With(requires("catalog:read")).Get("/", catalogHandler.ListCategories)
						gr.With(requires("catalog:create")).Post("/", catalogHandler.CreateCategory)
						gr.With(requires("catalog:update")).Patch("/{id}", catalogHandler.UpdateCategory)
						gr.With(requires("catalog:delete")).Delete("/{id}", catalogHandler.DeleteCategory)
					})
				})
			}

			if tagHandler != nil {
				pr.Route("/tags", func(tr chi.Router) {
					tr.With(requires("tag:read")).Get("/", tagHandler.ListTags)
					tr.With(requires("tag:manage")).Post("/", tagHandler.CreateTag)
					tr.With(requires("tag:manage")).Patch("/{id}", tagHandler.UpdateTag)
					tr.With(requires("tag:manage")).Delete("/{id}", tagHandler.DeleteTag)
				})
			}

			if imageHandler != nil {
				pr.Route("/images", func(ir chi.Router) {
					ir.With(requires("image:read")).Get("/", imageHandler.ListImages)
					ir.With(requires("image:manage")).Post("/", imageHandler.RegisterImage)
					ir.With(requires("image:manage")).Delete("/{id}", imageHandler.DeleteImage)
				})
			}

			if migrationHandler != nil {
				pr.Route("/migration/sessions", func(mr chi.Router) {
					mr.Use(requires("migration:manage"))
					mr.Post("/", migrationHandler.StartSession)
					mr.Get("/{id}", migrationHandler.GetSession)
					mr.Post("/{id}/advance", migrationHandler.AdvanceSession)
					mr.Delete("/{id}", migrationHandler.AbortSession)
				})
			}
		})
	})
}
