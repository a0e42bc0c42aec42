// Package service holds the single task store instance shared by the HTTP
// and CLI transports.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"taskflow/internal/analytics"
	"taskflow/internal/backup"
	"taskflow/internal/logging"
	"taskflow/internal/models"
	"taskflow/internal/query"
	"taskflow/internal/store"
	"taskflow/internal/tasks"
)

// Options configures a Service. Zero values select defaults.
type Options struct {
	Logger   log.FieldLogger
	Location *time.Location
	// RecomputeCounts rebuilds category task counts from imported tasks
	// instead of trusting the counts recorded in the snapshot.
	RecomputeCounts bool
	Now             func() time.Time
	NewID           func() (string, error)
}

// Service serializes every operation behind one mutex so callers observe
// each operation complete before the next begins.
type Service struct {
	mu sync.Mutex

	categories *tasks.CategoryRegistry
	tasks      *tasks.Repository
	settings   *tasks.SettingsProvider

	filters query.Filters
	search  string

	logger    log.FieldLogger
	loc       *time.Location
	now       func() time.Time
	recompute bool
}

// New wires the registry, repository and settings provider over s.
func New(s store.Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = tasks.NewID
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}

	common := []tasks.Option{
		tasks.WithLogger(opts.Logger),
		tasks.WithClock(opts.Now),
		tasks.WithIDGenerator(opts.NewID),
	}
	categories := tasks.NewCategoryRegistry(s, common...)

	return &Service{
		categories: categories,
		tasks:      tasks.NewRepository(s, categories, common...),
		settings:   tasks.NewSettingsProvider(s, common...),
		filters:    query.Filters{Status: query.StatusAll},
		logger:     logging.Component(opts.Logger, "service"),
		loc:        opts.Location,
		now:        opts.Now,
		recompute:  opts.RecomputeCounts,
	}
}

// Load hydrates categories, settings and tasks, in that order.
func (s *Service) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories.Load(ctx)
	s.settings.Load(ctx)
	s.tasks.Load(ctx)
	s.logger.WithFields(log.Fields{
		"tasks":      s.tasks.Count(),
		"categories": len(s.categories.List()),
	}).Info("task store loaded")
}

// Tasks

func (s *Service) ListTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.List()
}

func (s *Service) GetTask(id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Get(id)
}

func (s *Service) AddTask(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Add(ctx, draft)
}

func (s *Service) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Update(ctx, id, patch)
}

func (s *Service) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Delete(ctx, id)
}

func (s *Service) ToggleTask(ctx context.Context, id string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.ToggleCompletion(ctx, id)
}

func (s *Service) ClearCompleted(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.ClearCompleted(ctx)
}

func (s *Service) Reorder(ctx context.Context, from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Reorder(ctx, from, to)
}

func (s *Service) MoveToPosition(ctx context.Context, id string, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.MoveToPosition(ctx, id, position)
}

func (s *Service) Arrange(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Arrange(ctx, ids)
}

func (s *Service) TasksByCategory(categoryID string) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.categories.Has(categoryID) {
		return nil, fmt.Errorf("%w: %s", tasks.ErrCategoryNotFound, categoryID)
	}
	return s.tasks.TasksByCategory(categoryID), nil
}

func (s *Service) OverdueTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.OverdueTasks(s.now())
}

// Categories

func (s *Service) ListCategories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.List()
}

func (s *Service) CreateCategory(ctx context.Context, name, color, icon string) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Create(ctx, name, color, icon)
}

func (s *Service) UpdateCategory(ctx context.Context, id string, patch models.CategoryPatch) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Update(ctx, id, patch)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.categories.Delete(ctx, id)
}

// Settings

func (s *Service) Settings() models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Current()
}

func (s *Service) UpdateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.UpdateSettings(ctx, patch)
}

// View state

// SetFilter merges patch into the current filters.
func (s *Service) SetFilter(patch query.FilterPatch) (query.Filters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.filters
	if err := patch.Apply(&next); err != nil {
		return s.filters, fmt.Errorf("%w: %v", tasks.ErrInvalidArgument, err)
	}
	s.filters = next
	return s.filters, nil
}

func (s *Service) SetSearchQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = q
}

// ViewState returns the current filters and search query.
func (s *Service) ViewState() (query.Filters, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters, s.search
}

// FilteredTasks materializes the view with the current filters, search
// query and sort preference.
func (s *Service) FilteredTasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.FilterTasks(s.tasks.List(), s.filters, s.search, s.settings.SortBy(), s.now())
}

// Query materializes a view with explicit parameters. An empty sortBy
// uses the sort preference.
func (s *Service) Query(filters query.Filters, search string, sortBy models.SortBy) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sortBy == "" {
		sortBy = s.settings.SortBy()
	}
	return query.FilterTasks(s.tasks.List(), filters, search, sortBy, s.now())
}

// Analytics and backup

func (s *Service) Analytics() analytics.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.Compute(s.tasks.List(), s.categories.List(), s.now(), s.loc)
}

// Export captures the current state without mutating it.
func (s *Service) Export() backup.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return backup.New(s.tasks.List(), s.categories.List(), s.settings.Current(), s.now().UTC())
}

// Import replaces categories, tasks and settings with the snapshot's. Every
// write is awaited and the first failure is returned; state replaced before
// the failure stays in memory.
func (s *Service) Import(ctx context.Context, snap backup.Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.categories.Replace(ctx, snap.Categories); err != nil {
		return fmt.Errorf("import categories: %w", err)
	}
	if err := s.tasks.Replace(ctx, snap.Tasks); err != nil {
		return fmt.Errorf("import tasks: %w", err)
	}
	if s.recompute {
		counts := make(map[string]int)
		for _, t := range snap.Tasks {
			if t.HasCategory() {
				counts[t.CategoryID]++
			}
		}
		if err := s.categories.ResetCounts(ctx, counts); err != nil {
			return fmt.Errorf("import recompute counts: %w", err)
		}
	}
	if err := s.settings.Replace(ctx, snap.Settings); err != nil {
		return fmt.Errorf("import settings: %w", err)
	}

	s.logger.WithFields(log.Fields{
		"version":    snap.Version,
		"tasks":      len(snap.Tasks),
		"categories": len(snap.Categories),
		"recomputed": s.recompute,
	}).Info("snapshot imported")
	return nil
}
