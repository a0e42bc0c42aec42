package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"taskflow/internal/models"
)

// ListCategories returns every category in insertion order.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, nonNil(h.svc.ListCategories()))
}

// CreateCategory creates a new category.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	category, err := h.svc.CreateCategory(r.Context(), payload.Name, payload.Color, payload.Icon)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, category)
}

// UpdateCategory renames or restyles a category.
func (h *Handlers) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var patch models.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	category, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// DeleteCategory deletes a category. Its tasks keep their categoryId.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CategoryTasks lists the tasks referencing a category.
func (h *Handlers) CategoryTasks(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.TasksByCategory(chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, nonNil(list))
}
