package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"taskflow/internal/backup"
	"taskflow/internal/logging"
	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

const (
	maxBodyBytes   = 1 << 20
	maxBackupBytes = 32 << 20
)

// Handlers holds the HTTP handlers and their dependencies.
type Handlers struct {
	svc    *service.Service
	logger log.FieldLogger
}

// New creates a new Handlers instance.
func New(svc *service.Service, logger log.FieldLogger) *Handlers {
	return &Handlers{
		svc:    svc,
		logger: logging.Component(logger, "http"),
	}
}

// Routes builds the API router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)
			r.Post("/", h.CreateTask)
			r.Get("/overdue", h.OverdueTasks)
			r.Post("/reorder", h.ReorderTasks)
			r.Post("/clear-completed", h.ClearCompleted)
			r.Get("/{id}", h.GetTask)
			r.Patch("/{id}", h.UpdateTask)
			r.Delete("/{id}", h.DeleteTask)
			r.Post("/{id}/toggle", h.ToggleTask)
			r.Post("/{id}/move", h.MoveTask)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Patch("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
			r.Get("/{id}/tasks", h.CategoryTasks)
		})

		r.Get("/view", h.GetView)
		r.Put("/view", h.UpdateView)

		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		r.Get("/analytics", h.Analytics)

		r.Get("/backup", h.Export)
		r.Post("/backup", h.Import)
	})

	return r
}

type errorResponse struct {
	Error string `json:"error"`
}

// decodeJSON reads a single JSON object from the request body, rejecting
// unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := sonic.ConfigStd.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", tasks.ErrInvalidArgument)
		}
		return fmt.Errorf("%w: invalid json: %v", tasks.ErrInvalidArgument, err)
	}
	return nil
}

func respondJSON(w http.ResponseWriter, code int, v any) {
	data, err := sonic.ConfigStd.Marshal(v)
	if err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(data)
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Error: message})
}

// respondServiceError maps store errors to status codes.
func (h *Handlers) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, tasks.ErrInvalidArgument),
		errors.Is(err, backup.ErrMalformed),
		errors.Is(err, backup.ErrUnsupportedVersion):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.WithError(err).
			WithField("request_id", middleware.GetReqID(r.Context())).
			Error("internal server error")
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
