package tasks

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"taskflow/internal/models"
	"taskflow/internal/store"
)

// CategoryCounter is the slice of the category registry the repository may
// use: existence checks and count adjustments.
type CategoryCounter interface {
	Has(id string) bool
	UpdateTaskCount(ctx context.Context, id string, delta int) error
}

// Repository owns the task list. Every mutation rewrites the full list under
// store.KeyTasks; a failed write is logged and the in-memory change stands.
type Repository struct {
	store  store.Store
	counts CategoryCounter
	opts   options
	tasks  []models.Task
}

// NewRepository creates an empty repository.
func NewRepository(s store.Store, counts CategoryCounter, opts ...Option) *Repository {
	return &Repository{
		store:  s,
		counts: counts,
		opts:   buildOptions("tasks", opts),
	}
}

// Load hydrates tasks from storage. Read failures leave the repository empty.
func (r *Repository) Load(ctx context.Context) {
	var tasks []models.Task
	found, err := r.store.GetItem(ctx, store.KeyTasks, &tasks)
	if err != nil {
		r.opts.logger.WithError(err).Error("failed to load tasks; starting empty")
		r.tasks = nil
		return
	}
	if !found {
		r.tasks = nil
		return
	}
	r.tasks = tasks
	r.opts.logger.WithField("count", len(tasks)).Debug("tasks loaded")
}

// Count returns the number of tasks.
func (r *Repository) Count() int {
	return len(r.tasks)
}

// List returns a copy of every task in storage order.
func (r *Repository) List() []models.Task {
	return models.CloneTasks(r.tasks)
}

// Get returns the task with id.
func (r *Repository) Get(id string) (models.Task, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return r.tasks[idx].Clone(), nil
}

// TasksByCategory returns the tasks referencing categoryID.
func (r *Repository) TasksByCategory(categoryID string) []models.Task {
	var out []models.Task
	for i := range r.tasks {
		if r.tasks[i].CategoryID == categoryID {
			out = append(out, r.tasks[i].Clone())
		}
	}
	return out
}

// OverdueTasks returns incomplete tasks whose due date is before now.
func (r *Repository) OverdueTasks(now time.Time) []models.Task {
	var out []models.Task
	for i := range r.tasks {
		if r.tasks[i].IsOverdue(now) {
			out = append(out, r.tasks[i].Clone())
		}
	}
	return out
}

// ManualOrder returns the tasks as the manual view shows them, highest order first.
func (r *Repository) ManualOrder() []models.Task {
	list := models.CloneTasks(r.tasks)
	slices.SortStableFunc(list, models.CompareManual)
	return list
}

// Add creates a task from draft with a fresh id and order equal to the
// current task count.
func (r *Repository) Add(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	if draft.CategoryID != "" && !r.counts.Has(draft.CategoryID) {
		return models.Task{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, draft.CategoryID)
	}

	id, err := r.uniqueID()
	if err != nil {
		return models.Task{}, err
	}

	now := r.opts.now()
	task := models.Task{
		ID:          id,
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Priority:    draft.Priority,
		CategoryID:  draft.CategoryID,
		DueDate:     draft.DueDate,
		Reminder:    draft.Reminder,
		CreatedAt:   now,
		UpdatedAt:   now,
		Order:       len(r.tasks),
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	task = task.Clone()
	if err := task.Validate(); err != nil {
		return models.Task{}, invalid(err)
	}

	r.tasks = append(r.tasks, task)
	r.persist(ctx, "add")

	if task.HasCategory() {
		r.adjustCount(ctx, task.CategoryID, 1)
	}

	return task.Clone(), nil
}

// Update merges patch into the task with id and refreshes UpdatedAt. A
// category change moves one count from the old category to the new one.
func (r *Repository) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	old := r.tasks[idx]
	moved := patch.ChangesCategory(old)
	if moved && *patch.CategoryID != "" && !r.counts.Has(*patch.CategoryID) {
		return models.Task{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, *patch.CategoryID)
	}

	updated := old.Clone()
	patch.Apply(&updated)
	updated.Title = strings.TrimSpace(updated.Title)
	updated.UpdatedAt = r.touch(updated)
	if err := updated.Validate(); err != nil {
		return models.Task{}, invalid(err)
	}

	r.tasks[idx] = updated
	r.persist(ctx, "update")

	if moved {
		if old.HasCategory() {
			r.adjustCount(ctx, old.CategoryID, -1)
		}
		if updated.HasCategory() {
			r.adjustCount(ctx, updated.CategoryID, 1)
		}
	}

	return updated.Clone(), nil
}

// Delete removes the task with id.
func (r *Repository) Delete(ctx context.Context, id string) error {
	idx := r.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	removed := r.tasks[idx]
	r.tasks = slices.Delete(r.tasks, idx, idx+1)
	r.persist(ctx, "delete")

	if removed.HasCategory() {
		r.adjustCount(ctx, removed.CategoryID, -1)
	}

	return nil
}

// ToggleCompletion flips IsCompleted and refreshes UpdatedAt.
func (r *Repository) ToggleCompletion(ctx context.Context, id string) (models.Task, error) {
	idx := r.indexOf(id)
	if idx < 0 {
		return models.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	r.tasks[idx].IsCompleted = !r.tasks[idx].IsCompleted
	r.tasks[idx].UpdatedAt = r.touch(r.tasks[idx])
	r.persist(ctx, "toggle")

	return r.tasks[idx].Clone(), nil
}

// ClearCompleted removes every completed task in one write and returns how
// many were removed. Counts are adjusted once per affected category.
func (r *Repository) ClearCompleted(ctx context.Context) int {
	deltas := make(map[string]int)
	kept := make([]models.Task, 0, len(r.tasks))
	removed := 0
	for _, task := range r.tasks {
		if !task.IsCompleted {
			kept = append(kept, task)
			continue
		}
		removed++
		if task.HasCategory() {
			deltas[task.CategoryID]--
		}
	}
	if removed == 0 {
		return 0
	}

	r.tasks = kept
	r.persist(ctx, "clear_completed")

	categoryIDs := make([]string, 0, len(deltas))
	for id := range deltas {
		categoryIDs = append(categoryIDs, id)
	}
	slices.Sort(categoryIDs)
	for _, id := range categoryIDs {
		r.adjustCount(ctx, id, deltas[id])
	}

	return removed
}

// Reorder moves the task at fromIndex of the manual view to toIndex and
// renumbers every task so that order = len - position - 1.
func (r *Repository) Reorder(ctx context.Context, fromIndex, toIndex int) error {
	n := len(r.tasks)
	if fromIndex < 0 || fromIndex >= n || toIndex < 0 || toIndex >= n {
		return fmt.Errorf("%w: from=%d to=%d len=%d", ErrIndexOutOfRange, fromIndex, toIndex, n)
	}

	r.applyOrder(ctx, move(r.ManualOrder(), fromIndex, toIndex), "reorder")
	return nil
}

// MoveToPosition is Reorder addressed by task id.
func (r *Repository) MoveToPosition(ctx context.Context, id string, position int) error {
	list := r.ManualOrder()
	from := slices.IndexFunc(list, func(t models.Task) bool { return t.ID == id })
	if from < 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if position < 0 || position >= len(list) {
		return fmt.Errorf("%w: position=%d len=%d", ErrIndexOutOfRange, position, len(list))
	}

	r.applyOrder(ctx, move(list, from, position), "move")
	return nil
}

// Arrange sets the manual order to ids, which must name every task once.
func (r *Repository) Arrange(ctx context.Context, ids []string) error {
	if len(ids) != len(r.tasks) {
		return fmt.Errorf("%w: got %d ids for %d tasks", ErrNotAPermutation, len(ids), len(r.tasks))
	}

	list := make([]models.Task, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s repeated", ErrNotAPermutation, id)
		}
		seen[id] = struct{}{}

		idx := r.indexOf(id)
		if idx < 0 {
			return fmt.Errorf("%w: unknown id %s", ErrNotAPermutation, id)
		}
		list = append(list, r.tasks[idx])
	}

	r.applyOrder(ctx, list, "arrange")
	return nil
}

// Replace swaps the whole task list. Category counts are not touched and a
// failed write is returned to the caller.
func (r *Repository) Replace(ctx context.Context, tasks []models.Task) error {
	seen := make(map[string]struct{}, len(tasks))
	for i := range tasks {
		if strings.TrimSpace(tasks[i].ID) == "" {
			return invalid(fmt.Errorf("task %d: id is required", i))
		}
		if _, dup := seen[tasks[i].ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, tasks[i].ID)
		}
		seen[tasks[i].ID] = struct{}{}
		if err := tasks[i].Validate(); err != nil {
			return invalid(fmt.Errorf("task %s: %w", tasks[i].ID, err))
		}
	}

	r.tasks = models.CloneTasks(tasks)
	return r.store.SetItem(ctx, store.KeyTasks, r.tasks)
}

func (r *Repository) applyOrder(ctx context.Context, list []models.Task, op string) {
	n := len(list)
	for i := range list {
		list[i].Order = n - i - 1
	}
	r.tasks = list
	r.persist(ctx, op)
}

func move(list []models.Task, from, to int) []models.Task {
	task := list[from]
	list = slices.Delete(list, from, from+1)
	return slices.Insert(list, to, task)
}

// touch returns the refreshed UpdatedAt, never earlier than CreatedAt.
func (r *Repository) touch(t models.Task) time.Time {
	now := r.opts.now()
	if now.Before(t.CreatedAt) {
		return t.CreatedAt
	}
	return now
}

func (r *Repository) uniqueID() (string, error) {
	for attempt := 0; attempt < 3; attempt++ {
		id, err := r.opts.newID()
		if err != nil {
			return "", err
		}
		if r.indexOf(id) < 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: repeated collisions", ErrIDGeneration)
}

func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.tasks, func(t models.Task) bool { return t.ID == id })
}

func (r *Repository) adjustCount(ctx context.Context, categoryID string, delta int) {
	if err := r.counts.UpdateTaskCount(ctx, categoryID, delta); err != nil {
		r.opts.logger.WithError(err).
			WithField("category", categoryID).
			WithField("delta", delta).
			Warn("category count not adjusted")
	}
}

func (r *Repository) persist(ctx context.Context, op string) {
	if err := r.store.SetItem(ctx, store.KeyTasks, r.tasks); err != nil {
		r.opts.logger.WithError(err).WithField("op", op).Error("failed to persist tasks; in-memory state kept")
	}
}
