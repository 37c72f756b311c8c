package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pricebook-hq/pricebook-api/internal"
	"github.com/pricebook-hq/pricebook-api/internal/auth"
	authPostgres "github.com/pricebook-hq/pricebook-api/internal/auth/postgres"
	"github.com/pricebook-hq/pricebook-api/internal/catalog"
	catalogPostgres "github.com/pricebook-hq/pricebook-api/internal/catalog/postgres"
	"github.com/pricebook-hq/pricebook-api/internal/company"
	companyPostgres "github.com/pricebook-hq/pricebook-api/internal/company/postgres"
	"github.com/pricebook-hq/pricebook-api/internal/core/events"
	"github.com/pricebook-hq/pricebook-api/internal/image"
	imagePostgres "github.com/pricebook-hq/pricebook-api/internal/image/postgres"
	"github.com/pricebook-hq/pricebook-api/internal/migration"
	"github.com/pricebook-hq/pricebook-api/internal/permissions"
	rbacPostgres "github.com/pricebook-hq/pricebook-api/internal/permissions/postgres"
	"github.com/pricebook-hq/pricebook-api/internal/tag"
	tagPostgres "github.com/pricebook-hq/pricebook-api/internal/tag/postgres"
	"github.com/pricebook-hq/pricebook-api/internal/transport/rest"
	"github.com/pricebook-hq/pricebook-api/internal/user"
	userPostgres "github.com/pricebook-hq/pricebook-api/internal/user/postgres"
	"github.com/pricebook-hq/pricebook-api/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	EventBus *events.EventBus

	// Importer owns the XLSX worker pool and must be drained on shutdown.
	Importer *catalog.Importer

	PermissionService *permissions.Service

	AuthHandler      *auth.Handler
	UserHandler      *user.Handler
	CompanyHandler   *company.Handler
	RoleHandler      *permissions.Handler
	CatalogHandler   *catalog.Handler
	TagHandler       *tag.Handler
	ImageHandler     *image.Handler
	MigrationHandler *migration.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		// Stop accepting import jobs and wait for in-flight rows.
		deps.Importer.Shutdown()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB,
		deps.PermissionService,
		deps.AuthHandler,
		deps.UserHandler,
		deps.CompanyHandler,
		deps.RoleHandler,
		deps.CatalogHandler,
		deps.TagHandler,
		deps.ImageHandler,
		deps.MigrationHandler,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Observability.Logging.Level)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// GORM rides on the same pool sqlx opened, so there is one set of
	// connection limits for the whole process.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	if err := rest.ValidateOpenAPISpec("./api/openapi.yml"); err != nil {
		appLogger.Warn("openapi document failed validation", "error", err)
	}

	eventBus := events.NewEventBus(appLogger)
	registerEventLogging(eventBus, appLogger)

	rbacRepo := rbacPostgres.NewRBACRepository(gormDB)
	authRepo := authPostgres.NewRepository(gormDB)
	userRepo := userPostgres.NewUserRepository(gormDB)
	companyRepo := companyPostgres.NewCompanyRepository(gormDB)
	catalogRepo := catalogPostgres.NewCatalogRepository(gormDB)
	tagRepo := tagPostgres.NewTagRepository(gormDB)
	imageRepo := imagePostgres.NewImageRepository(gormDB)

	permService := permissions.NewService(rbacRepo, appLogger)
	tokens := auth.NewJWTTokenGenerator(
		config.Security.JWTSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokens, permService, config.Security.BCryptCost, appLogger)
	userService := user.NewService(userRepo, permService, authService, appLogger)
	companyService := company.NewService(companyRepo, appLogger)
	catalogService := catalog.NewService(catalogRepo, appLogger)
	exporter := catalog.NewExporter(catalogRepo, config.Catalog.ExportPageSize)
	importer := catalog.NewImporter(catalogRepo, eventBus, catalog.ImporterConfig{
		Workers: config.Catalog.ImportWorkers,
		MaxRows: config.Catalog.ImportMaxRows,
	}, appLogger)
	tagService := tag.NewService(tagRepo, appLogger)
	imageService := image.NewService(imageRepo, config.Uploads.MaxImageSizeBytes, config.Uploads.AllowedImageTypes, appLogger)
	migrationService := migration.NewService(eventBus, appLogger)

	return &Dependencies{
		Config:            config,
		DB:                db,
		Router:            chi.NewRouter(),
		Logger:            appLogger,
		EventBus:          eventBus,
		Importer:          importer,
		PermissionService: permService,
		AuthHandler:       auth.NewHandler(authService),
		UserHandler:       user.NewHandler(userService),
		CompanyHandler:    company.NewHandler(companyService),
		RoleHandler:       permissions.NewHandler(permService, eventBus),
		CatalogHandler:    catalog.NewHandler(catalogService, exporter, importer),
		TagHandler:        tag.NewHandler(tagService),
		ImageHandler:      image.NewHandler(imageService),
		MigrationHandler:  migration.NewHandler(migrationService),
	}, nil
}

// registerEventLogging attaches an audit subscriber for every domain
// event the services publish.
func registerEventLogging(bus *events.EventBus, appLogger *slog.Logger) {
	logEvent := func(ctx context.Context, event events.Event) error {
		appLogger.Info("domain event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	}

	bus.Subscribe(events.EventTypeRoleAssigned, logEvent)
	bus.Subscribe(events.EventTypeRoleRevoked, logEvent)
	bus.Subscribe(events.EventTypeImportCompleted, logEvent)
	bus.Subscribe(events.EventTypeMigrationCompleted, logEvent)
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
