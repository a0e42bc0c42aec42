package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"taskflow/internal/models"
	"taskflow/internal/store"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

// stepClock returns t0, t0+1m, t0+2m, ...
func stepClock() func() time.Time {
	next := t0
	return func() time.Time {
		now := next
		next = next.Add(time.Minute)
		return now
	}
}

func sequentialIDs(prefix string) func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("%s%d", prefix, n), nil
	}
}

// failingStore reads and writes through an inner store until broken is set.
type failingStore struct {
	inner  store.Store
	broken bool
	writes int
}

func (s *failingStore) GetItem(ctx context.Context, key string, dst any) (bool, error) {
	if s.broken {
		return false, fmt.Errorf("%w: read %s: disk gone", store.ErrPersistence, key)
	}
	return s.inner.GetItem(ctx, key, dst)
}

func (s *failingStore) SetItem(ctx context.Context, key string, value any) error {
	s.writes++
	if s.broken {
		return fmt.Errorf("%w: write %s: disk gone", store.ErrPersistence, key)
	}
	return s.inner.SetItem(ctx, key, value)
}

func (s *failingStore) Close() error { return nil }

type fixture struct {
	store      *failingStore
	categories *CategoryRegistry
	repo       *Repository
	logs       *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	s := &failingStore{inner: store.NewMemoryStore()}
	categories := NewCategoryRegistry(s, WithLogger(logger), WithIDGenerator(sequentialIDs("cat-")))
	repo := NewRepository(s, categories,
		WithLogger(logger),
		WithClock(stepClock()),
		WithIDGenerator(sequentialIDs("task-")),
	)
	return &fixture{store: s, categories: categories, repo: repo, logs: hook}
}

func (f *fixture) addTask(t *testing.T, title string, mods ...func(*models.TaskDraft)) models.Task {
	t.Helper()
	draft := models.TaskDraft{Title: title, Priority: models.PriorityMedium}
	for _, mod := range mods {
		mod(&draft)
	}
	task, err := f.repo.Add(context.Background(), draft)
	require.NoError(t, err)
	return task
}

func (f *fixture) addCategory(t *testing.T, name string) models.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), name, "#ff0000", "")
	require.NoError(t, err)
	return c
}

func (f *fixture) count(t *testing.T, categoryID string) int {
	t.Helper()
	c, err := f.categories.Get(categoryID)
	require.NoError(t, err)
	return c.TaskCount
}

func inCategory(id string) func(*models.TaskDraft) {
	return func(d *models.TaskDraft) { d.CategoryID = id }
}

func ids(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].ID
	}
	return out
}

func orders(tasks []models.Task) []int {
	out := make([]int, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Order
	}
	return out
}

var errBoom = errors.New("boom")
