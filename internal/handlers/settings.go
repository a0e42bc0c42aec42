package handlers

import (
	"fmt"
	"net/http"
	"time"

	"taskflow/internal/backup"
	"taskflow/internal/models"
	"taskflow/internal/query"
)

type viewState struct {
	Filters query.Filters `json:"filters"`
	Search  string        `json:"search"`
}

// GetView returns the stored filters and search query.
func (h *Handlers) GetView(w http.ResponseWriter, r *http.Request) {
	filters, search := h.svc.ViewState()
	respondJSON(w, http.StatusOK, viewState{Filters: filters, Search: search})
}

// UpdateView merges filters and replaces the search query when provided.
func (h *Handlers) UpdateView(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Filters query.FilterPatch `json:"filters"`
		Search  *string           `json:"search"`
	}
	if err := decodeJSON(w, r, &payload); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if _, err := h.svc.SetFilter(payload.Filters); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	if payload.Search != nil {
		h.svc.SetSearchQuery(*payload.Search)
	}
	h.GetView(w, r)
}

// GetSettings returns the current settings.
func (h *Handlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Settings())
}

// UpdateSettings merges the provided settings fields.
func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	settings, err := h.svc.UpdateSettings(r.Context(), patch)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, settings)
}

// Analytics returns the analytics summary.
func (h *Handlers) Analytics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Analytics())
}

// Export streams the backup snapshot as a download.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	snap := h.svc.Export()
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="taskflow-backup-%s.json"`, snap.ExportedAt.Format(time.DateOnly)))
	if err := backup.Encode(w, snap); err != nil {
		h.logger.WithError(err).Error("failed to write backup")
	}
}

// Import replaces the whole store with the uploaded snapshot.
func (h *Handlers) Import(w http.ResponseWriter, r *http.Request) {
	snap, err := backup.Decode(http.MaxBytesReader(w, r.Body, maxBackupBytes))
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	if err := h.svc.Import(r.Context(), snap); err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]int{
		"tasks":      len(snap.Tasks),
		"categories": len(snap.Categories),
	})
}
