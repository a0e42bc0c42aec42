package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskflow/internal/models"
	"taskflow/internal/query"
)

// ListTasks returns the filtered view. Query parameters override the stored
// view state for this request only.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	filters, search := h.svc.ViewState()
	params := r.URL.Query()

	if params.Has("status") {
		status, err := query.ParseStatus(params.Get("status"))
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		filters.Status = status
	}
	if params.Has("category") {
		filters.CategoryID = params.Get("category")
	}
	if params.Has("priority") {
		priority := models.Priority(params.Get("priority"))
		if priority != "" && !priority.Valid() {
			respondError(w, http.StatusBadRequest, models.ErrInvalidPriority.Error())
			return
		}
		filters.Priority = priority
	}
	if params.Has("overdue") {
		overdue, err := strconv.ParseBool(params.Get("overdue"))
		if err != nil {
			respondError(w, http.StatusBadRequest, "overdue must be a boolean")
			return
		}
		filters.ShowOverdue = overdue
	}
	if params.Has("q") {
		search = params.Get("q")
	}

	var sortBy models.SortBy
	if params.Has("sort") {
		parsed, err := models.ParseSortBy(params.Get("sort"))
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		sortBy = parsed
	}

	respondJSON(w, http.StatusOK, h.svc.Query(filters, search, sortBy))
}

// GetTask returns a single task.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.GetTask(chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// CreateTask adds a task from a draft.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	var draft models.TaskDraft
	if err := decodeJSON(w, r, &draft); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	task, err := h.svc.AddTask(r.Context(), draft)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask merges the provided fields into an existing task.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	task, err := h.svc.UpdateTask(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask deletes a task.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ToggleTask toggles the completion status of a task.
func (h *Handlers) ToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.svc.ToggleTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// MoveTask moves a task to a position of the manual view.
func (h *Handlers) MoveTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Position *int `json:"position"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if payload.Position == nil {
		respondError(w, http.StatusBadRequest, "position is required")
		return
	}

	if err := h.svc.MoveToPosition(r.Context(), chi.URLParam(r, "id"), *payload.Position); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, h.svc.Query(query.Filters{}, "", models.SortByManual))
}

// ReorderTasks accepts either {"from": i, "to": j} or the full id list
// {"ids": [...]} and returns the resulting manual order.
func (h *Handlers) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		From *int     `json:"from"`
		To   *int     `json:"to"`
		IDs  []string `json:"ids"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	var err error
	switch {
	case payload.IDs != nil && payload.From == nil && payload.To == nil:
		err = h.svc.Arrange(r.Context(), payload.IDs)
	case payload.IDs == nil && payload.From != nil && payload.To != nil:
		err = h.svc.Reorder(r.Context(), *payload.From, *payload.To)
	default:
		respondError(w, http.StatusBadRequest, "provide either from and to, or ids")
		return
	}
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, h.svc.Query(query.Filters{}, "", models.SortByManual))
}

// ClearCompleted removes every completed task.
func (h *Handlers) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	removed := h.svc.ClearCompleted(r.Context())
	respondJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

// OverdueTasks lists incomplete tasks past their due date.
func (h *Handlers) OverdueTasks(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, nonNil(h.svc.OverdueTasks()))
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
