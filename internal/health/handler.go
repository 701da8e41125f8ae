package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"alumnos-service/internal/httputil"
	"alumnos-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
)

// Checker reports on the storage backend.
type Checker interface {
	Ping(ctx context.Context) error
	Now(ctx context.Context) (time.Time, error)
}

type dbChecker struct {
	db *bun.DB
}

func NewDBChecker(db *bun.DB) Checker {
	return &dbChecker{db: db}
}

func (c *dbChecker) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *dbChecker) Now(ctx context.Context) (time.Time, error) {
	var now time.Time
	err := c.db.NewRaw("SELECT NOW()").Scan(ctx, &now)
	return now, err
}

type Handler struct {
	checker Checker
	logger  *slog.Logger
	metrics *metrics.HealthMetrics
}

func NewHandler(checker Checker, logger *slog.Logger, hm *metrics.HealthMetrics) *Handler {
	return &Handler{
		checker: checker,
		logger:  logger,
		metrics: hm,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
}

// RegisterAPIRoutes mounts the diagnostic endpoints under the API prefix.
func (h *Handler) RegisterAPIRoutes(router chi.Router) {
	router.Get("/test-db", h.TestDB)
}

type HealthResponse struct {
	Status string `json:"status"`
}

type TestDBResponse struct {
	Success bool      `json:"success"`
	Time    time.Time `json:"time"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := h.checker.Ping(r.Context())
	h.metrics.RecordDependencyCheck(r.Context(), metrics.DependencyDatabase, time.Since(start), err)
	if err != nil {
		h.logger.WarnContext(r.Context(), "database not ready", "error", err)
		httputil.RespondWithJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}

func (h *Handler) TestDB(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	now, err := h.checker.Now(r.Context())
	h.metrics.RecordDependencyCheck(r.Context(), metrics.DependencyDatabase, time.Since(start), err)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "database check failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Database connection failed")
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, TestDBResponse{Success: true, Time: now})
}
