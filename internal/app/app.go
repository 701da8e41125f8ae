package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"time"

	"alumnos-service/internal/config"
	"alumnos-service/internal/db"
	"alumnos-service/internal/health"
	"alumnos-service/internal/httputil"
	"alumnos-service/internal/logger"
	"alumnos-service/internal/metrics"
	"alumnos-service/internal/middleware"
	"alumnos-service/internal/student"
	"alumnos-service/internal/telemetry"
	"alumnos-service/internal/web"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	db        *bun.DB
	telemetry *telemetry.Telemetry
	logger    *slog.Logger
}

func New() *App {
	slogLogger := logger.NewWithServiceContext(ServiceName, Version)

	// Set as default logger so slog.Info() uses the same format
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "git_commit", GitCommit, "build_time", BuildTime)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	slogLogger.Info("config loaded", "env", cfg.Env)

	ctx := context.Background()

	tel, err := telemetry.Init(ctx, ServiceName, Version, cfg.Telemetry.OTLPEndpoint, slogLogger)
	if err != nil {
		log.Fatalf("failed to initialize telemetry: %v", err)
	}

	database, err := db.New(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.RunMigrations(ctx, database, (*student.Student)(nil)); err != nil {
		log.Fatal("failed to run migrations:", err)
	}

	meter := otel.Meter(ServiceName)
	if err := tel.Metrics.Database.RegisterDB(database.DB, meter); err != nil {
		slogLogger.Warn("failed to register database pool metrics", "error", err)
	}
	if err := tel.Metrics.Health.RegisterDependencies(meter, metrics.DependencyDatabase); err != nil {
		slogLogger.Warn("failed to register dependency metrics", "error", err)
	}
	if err := tel.Metrics.Health.RegisterServiceInfo(meter, ServiceName, Version, cfg.Env); err != nil {
		slogLogger.Warn("failed to register service info metric", "error", err)
	}

	app := &App{
		config:    cfg,
		db:        database,
		telemetry: tel,
		logger:    slogLogger,
	}
	app.router = NewRouter(cfg, database, tel.Metrics, slogLogger)

	slogLogger.Info("application initialized successfully")

	return app
}

// NewRouter wires every HTTP route of the service onto a fresh router.
func NewRouter(cfg *config.Config, database *bun.DB, m *metrics.Metrics, logger *slog.Logger) chi.Router {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	healthHandler := health.NewHandler(health.NewDBChecker(database), logger, m.Health)
	healthHandler.RegisterRoutes(router)

	studentRepo := student.NewRepository(database, m)
	studentService := student.NewService(studentRepo)
	studentHandler := student.NewHandler(studentService, logger, m)

	router.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondWithError(w, http.StatusNotFound, "Resource not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			httputil.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		})

		studentHandler.RegisterRoutes(r)
		healthHandler.RegisterAPIRoutes(r)
	})

	// Everything outside /api belongs to the UI
	router.Handle("/*", web.Handler())

	return router
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", a.config.Server.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(a.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(a.config.Server.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", a.config.Server.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	errs = append(errs, a.telemetry.Shutdown(ctx, a.logger))
	db.Close(a.db)

	return errors.Join(errs...)
}
