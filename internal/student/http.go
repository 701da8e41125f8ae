package student

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"alumnos-service/internal/httputil"
	"alumnos-service/internal/metrics"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewHandler(service Service, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
		metrics: metrics,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Route("/alumnos", func(r chi.Router) {
		r.Get("/", h.GetAllStudents)
		r.Post("/", h.CreateStudent)
		r.Get("/{id}", h.GetStudent)
		r.Put("/{id}", h.UpdateStudent)
		r.Delete("/{id}", h.DeleteStudent)
	})
}

func (h *Handler) GetAllStudents(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "fetching all students")

	students, err := h.service.GetAllStudents(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentsListViewed(r.Context())
	h.logger.InfoContext(r.Context(), "students fetched", "count", len(students))

	httputil.RespondWithJSON(w, http.StatusOK, students)
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching student", "id", id)
	student, err := h.service.GetStudentByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentViewed(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var input StudentInput
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		h.logger.WarnContext(r.Context(), "invalid create request", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating student", "email", input.Email)
	student, err := h.service.CreateStudent(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentCreated(r.Context())

	httputil.RespondWithJSON(w, http.StatusCreated, student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var input StudentInput
	if err := httputil.DecodeJSON(w, r, &input); err != nil {
		h.logger.WarnContext(r.Context(), "invalid update request", "id", id, "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "updating student", "id", id, "email", input.Email)
	student, err := h.service.UpdateStudent(r.Context(), id, input)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentUpdated(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "deleting student", "id", id)
	student, err := h.service.DeleteStudent(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.metrics.RecordStudentDeleted(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, DeleteResponse{
		Message: fmt.Sprintf("Student %s %s deleted successfully", student.FirstName, student.LastName),
	})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid student ID")
		return 0, false
	}
	return id, true
}

// handleServiceError is the only place service errors become status codes.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var validationErr *ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.logger.InfoContext(ctx, "validation failed", "fields", validationErr.FieldNames())
		httputil.RespondWithJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error:  validationErr.Error(),
			Fields: validationErr.Fields,
		})
	case errors.Is(err, ErrInvalidInput):
		h.logger.InfoContext(ctx, "invalid input", "error", err)
		httputil.RespondWithError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, ErrStudentNotFound):
		h.logger.InfoContext(ctx, "student not found")
		httputil.RespondWithError(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, ErrEmailExists):
		h.logger.InfoContext(ctx, "email already exists")
		httputil.RespondWithError(w, http.StatusConflict, "A student with this email already exists")
	default:
		h.logger.ErrorContext(ctx, "internal error", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
