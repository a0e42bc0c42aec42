package tasks

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/models"
	"taskflow/internal/store"
)

// CategoryRegistry owns the category list and is the only writer of
// Category.TaskCount.
type CategoryRegistry struct {
	store      store.Store
	opts       options
	categories []models.Category
}

// NewCategoryRegistry creates an empty registry persisting through s.
func NewCategoryRegistry(s store.Store, opts ...Option) *CategoryRegistry {
	return &CategoryRegistry{
		store: s,
		opts:  buildOptions("categories", opts),
	}
}

// Load hydrates categories from storage. Read failures leave the registry empty.
func (r *CategoryRegistry) Load(ctx context.Context) {
	var categories []models.Category
	found, err := r.store.GetItem(ctx, store.KeyCategories, &categories)
	if err != nil {
		r.opts.logger.WithError(err).Error("failed to load categories; starting empty")
		r.categories = nil
		return
	}
	if !found {
		r.categories = nil
		return
	}
	r.categories = categories
	r.opts.logger.WithField("count", len(categories)).Debug("categories loaded")
}

// List returns the categories in insertion order.
func (r *CategoryRegistry) List() []models.Category {
	return append([]models.Category(nil), r.categories...)
}

// Has reports whether a category with id exists.
func (r *CategoryRegistry) Has(id string) bool {
	return r.indexOf(id) >= 0
}

// Get returns the category with id.
func (r *CategoryRegistry) Get(id string) (models.Category, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return models.Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	return r.categories[idx], nil
}

// Create adds a category with a zero task count.
func (r *CategoryRegistry) Create(ctx context.Context, name, color, icon string) (models.Category, error) {
	id, err := r.opts.newID()
	if err != nil {
		return models.Category{}, err
	}

	category := models.Category{
		ID:    id,
		Name:  strings.TrimSpace(name),
		Color: color,
		Icon:  icon,
	}
	if err := category.Validate(); err != nil {
		return models.Category{}, invalid(err)
	}
	if r.Has(id) {
		return models.Category{}, fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}

	r.categories = append(r.categories, category)
	r.persist(ctx, "create")

	return category, nil
}

// Update merges patch into the category with id.
func (r *CategoryRegistry) Update(ctx context.Context, id string, patch models.CategoryPatch) (models.Category, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return models.Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}

	updated := r.categories[idx]
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return models.Category{}, invalid(err)
	}

	r.categories[idx] = updated
	r.persist(ctx, "update")

	return updated, nil
}

// Delete removes the category with id. Tasks referencing it keep their
// categoryId; the association is a weak reference.
func (r *CategoryRegistry) Delete(ctx context.Context, id string) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}

	r.categories = append(r.categories[:idx:idx], r.categories[idx+1:]...)
	r.persist(ctx, "delete")

	return nil
}

// UpdateTaskCount adds delta to the cached task count of a category.
// Counts never go below zero.
func (r *CategoryRegistry) UpdateTaskCount(ctx context.Context, id string, delta int) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
	}
	if delta == 0 {
		return nil
	}

	next := r.categories[idx].TaskCount + delta
	if next < 0 {
		r.opts.logger.WithFields(log.Fields{
			"category": id,
			"count":    r.categories[idx].TaskCount,
			"delta":    delta,
		}).Warn("task count would go negative; clamping to zero")
		next = 0
	}
	r.categories[idx].TaskCount = next
	r.persist(ctx, "update_task_count")

	return nil
}

// Replace swaps the whole category list, trusting the recorded counts.
// Unlike ordinary mutations, a failed write is returned to the caller.
func (r *CategoryRegistry) Replace(ctx context.Context, categories []models.Category) error {
	seen := make(map[string]struct{}, len(categories))
	for i := range categories {
		if err := categories[i].Validate(); err != nil {
			return invalid(fmt.Errorf("category %d: %w", i, err))
		}
		if _, dup := seen[categories[i].ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, categories[i].ID)
		}
		seen[categories[i].ID] = struct{}{}
	}

	r.categories = append([]models.Category(nil), categories...)
	return r.store.SetItem(ctx, store.KeyCategories, r.categories)
}

// ResetCounts overwrites every category's task count from counts; categories
// missing from counts get zero. A failed write is returned to the caller.
func (r *CategoryRegistry) ResetCounts(ctx context.Context, counts map[string]int) error {
	for i := range r.categories {
		r.categories[i].TaskCount = counts[r.categories[i].ID]
	}
	return r.store.SetItem(ctx, store.KeyCategories, r.categories)
}

func (r *CategoryRegistry) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range r.categories {
		if r.categories[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *CategoryRegistry) persist(ctx context.Context, op string) {
	if err := r.store.SetItem(ctx, store.KeyCategories, r.categories); err != nil {
		r.opts.logger.WithError(err).WithField("op", op).Error("failed to persist categories; in-memory state kept")
	}
}
