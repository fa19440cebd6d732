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

	"github.com/frahmantamala/access-management/internal"
	"github.com/frahmantamala/access-management/internal/audit"
	auditPostgres "github.com/frahmantamala/access-management/internal/audit/postgres"
	"github.com/frahmantamala/access-management/internal/auth"
	authPostgres "github.com/frahmantamala/access-management/internal/auth/postgres"
	"github.com/frahmantamala/access-management/internal/core/events"
	"github.com/frahmantamala/access-management/internal/department"
	departmentPostgres "github.com/frahmantamala/access-management/internal/department/postgres"
	"github.com/frahmantamala/access-management/internal/menu"
	menuPostgres "github.com/frahmantamala/access-management/internal/menu/postgres"
	"github.com/frahmantamala/access-management/internal/notification"
	"github.com/frahmantamala/access-management/internal/permission"
	permissionPostgres "github.com/frahmantamala/access-management/internal/permission/postgres"
	"github.com/frahmantamala/access-management/internal/request"
	requestPostgres "github.com/frahmantamala/access-management/internal/request/postgres"
	"github.com/frahmantamala/access-management/internal/role"
	rolePostgres "github.com/frahmantamala/access-management/internal/role/postgres"
	"github.com/frahmantamala/access-management/internal/transport/rest"
	"github.com/frahmantamala/access-management/internal/user"
	userPostgres "github.com/frahmantamala/access-management/internal/user/postgres"
	"github.com/frahmantamala/access-management/pkg/logger"

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
	Config *internal.Config
	DB     *sqlx.DB
	Gorm   *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

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

func setupRoutes(deps *Dependencies) error {
	lg := deps.Logger
	cfg := deps.Config
	gdb := deps.Gorm

	eventBus := events.NewEventBus(lg)
	mailer := notification.NewMailer(cfg.Mailer, lg)
	notification.NewEventHandler(mailer, lg).RegisterHandlers(eventBus)

	auditSvc := audit.NewService(auditPostgres.NewAuditRepository(gdb), lg)

	permRepo := permissionPostgres.NewPermissionRepository(gdb)
	permSvc := permission.NewService(permRepo, auditSvc, lg)

	menuRepo := menuPostgres.NewMenuRepository(gdb)
	menuSvc := menu.NewService(menuRepo, auditSvc, lg)
	projector := menu.NewProjector(menuRepo, lg)

	roleSvc := role.NewService(rolePostgres.NewRoleRepository(gdb), auditSvc, lg)
	deptSvc := department.NewService(departmentPostgres.NewDepartmentRepository(gdb), auditSvc, lg)
	userSvc := user.NewService(userPostgres.NewUserRepository(gdb), auditSvc, cfg.Security.BCryptCost, lg)
	requestSvc := request.NewService(requestPostgres.NewRequestRepository(gdb), permRepo, auditSvc, eventBus, lg)

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenDuration)
	authSvc := auth.NewService(authPostgres.NewAuthRepository(gdb), tokens, mailer, auditSvc, cfg.Security.BCryptCost, lg)
	authMW := auth.NewMiddleware(authSvc)

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(authSvc),
		User:       user.NewHandler(userSvc, permSvc, projector),
		Role:       role.NewHandler(roleSvc),
		Permission: permission.NewHandler(permSvc),
		Department: department.NewHandler(deptSvc),
		Menu:       menu.NewHandler(menuSvc),
		Request:    request.NewHandler(requestSvc),
		Audit:      audit.NewHandler(auditSvc),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, authMW, lg)
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gdb, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Gorm:   gdb,
		Router: chi.NewRouter(),
	}, nil
}

// initDB opens the pooled connection through the pgx stdlib driver.
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

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm attaches the ORM to the already pooled *sql.DB so both layers
// share one pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
}
