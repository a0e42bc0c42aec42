// Package backup encodes and decodes the portable snapshot of the task store.
package backup

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"taskflow/internal/models"
)

// Version is written into every exported snapshot.
const Version = "1.0.0"

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrMalformed          = errors.New("malformed snapshot")
)

// Snapshot is the whole-state backup document.
type Snapshot struct {
	Version    string            `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Tasks      []models.Task     `json:"tasks"`
	Categories []models.Category `json:"categories"`
	Settings   models.Settings   `json:"settings"`
}

// New captures tasks, categories and settings. The slices are copied.
func New(tasks []models.Task, categories []models.Category, settings models.Settings, exportedAt time.Time) Snapshot {
	return Snapshot{
		Version:    Version,
		ExportedAt: exportedAt,
		Tasks:      nonNil(models.CloneTasks(tasks)),
		Categories: nonNil(append([]models.Category(nil), categories...)),
		Settings:   settings,
	}
}

// Encode writes s as indented JSON.
func Encode(w io.Writer, s Snapshot) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Decode reads a snapshot and validates it. Missing settings fields
// take their defaults.
func Decode(r io.Reader) (Snapshot, error) {
	s := Snapshot{Settings: models.DefaultSettings()}
	if err := sonic.ConfigStd.NewDecoder(r).Decode(&s); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	s.Tasks = nonNil(s.Tasks)
	s.Categories = nonNil(s.Categories)
	return s, nil
}

// Validate accepts any 1.x version and requires every record to be valid on
// its own, so an import can be rejected before any state is replaced.
func (s *Snapshot) Validate() error {
	major, _, _ := strings.Cut(s.Version, ".")
	if major != "1" {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, s.Version)
	}

	taskIDs := make(map[string]struct{}, len(s.Tasks))
	for i := range s.Tasks {
		id := s.Tasks[i].ID
		if strings.TrimSpace(id) == "" {
			return fmt.Errorf("%w: task %d has no id", ErrMalformed, i)
		}
		if _, dup := taskIDs[id]; dup {
			return fmt.Errorf("%w: duplicate task id %s", ErrMalformed, id)
		}
		taskIDs[id] = struct{}{}
		if err := s.Tasks[i].Validate(); err != nil {
			return fmt.Errorf("%w: task %d (%s): %v", ErrMalformed, i, id, err)
		}
	}

	categoryIDs := make(map[string]struct{}, len(s.Categories))
	for i := range s.Categories {
		if err := s.Categories[i].Validate(); err != nil {
			return fmt.Errorf("%w: category %d: %v", ErrMalformed, i, err)
		}
		if _, dup := categoryIDs[s.Categories[i].ID]; dup {
			return fmt.Errorf("%w: duplicate category id %s", ErrMalformed, s.Categories[i].ID)
		}
		categoryIDs[s.Categories[i].ID] = struct{}{}
	}

	if _, err := models.ParseSortBy(string(s.Settings.SortBy)); err != nil {
		return fmt.Errorf("%w: settings: %v", ErrMalformed, err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
