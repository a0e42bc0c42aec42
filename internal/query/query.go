// Package query materializes the filtered, searched and sorted task view.
package query

import (
	"cmp"
	"errors"
	"slices"
	"strings"
	"time"

	"taskflow/internal/models"
)

// Status selects tasks by completion state.
type Status string

const (
	StatusAll       Status = "all"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

var ErrInvalidStatus = errors.New("status must be 'all', 'active', or 'completed'")

// ParseStatus converts a raw string into a Status. An empty string means all.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case "":
		return StatusAll, nil
	case StatusAll, StatusActive, StatusCompleted:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Filters are AND-combined. Zero values match everything.
type Filters struct {
	Status      Status          `json:"status"`
	CategoryID  string          `json:"categoryId,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	ShowOverdue bool            `json:"showOverdue"`
}

// FilterPatch is a partial update of Filters. An empty CategoryID or
// Priority clears that clause.
type FilterPatch struct {
	Status      *Status          `json:"status,omitempty"`
	CategoryID  *string          `json:"categoryId,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	ShowOverdue *bool            `json:"showOverdue,omitempty"`
}

// Apply validates and merges p into f.
func (p FilterPatch) Apply(f *Filters) error {
	if p.Status != nil {
		status, err := ParseStatus(string(*p.Status))
		if err != nil {
			return err
		}
		f.Status = status
	}
	if p.Priority != nil {
		if *p.Priority != "" && !p.Priority.Valid() {
			return models.ErrInvalidPriority
		}
		f.Priority = *p.Priority
	}
	if p.CategoryID != nil {
		f.CategoryID = *p.CategoryID
	}
	if p.ShowOverdue != nil {
		f.ShowOverdue = *p.ShowOverdue
	}
	return nil
}

// Match reports whether t passes every clause of f and the search query.
func (f Filters) Match(t *models.Task, search string, now time.Time) bool {
	switch f.Status {
	case StatusActive:
		if t.IsCompleted {
			return false
		}
	case StatusCompleted:
		if !t.IsCompleted {
			return false
		}
	}

	if f.CategoryID != "" && t.CategoryID != f.CategoryID {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.ShowOverdue && !t.IsOverdue(now) {
		return false
	}

	return matchesSearch(t, search)
}

func matchesSearch(t *models.Task, search string) bool {
	search = strings.TrimSpace(search)
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(t.Title), needle) ||
		strings.Contains(strings.ToLower(t.Description), needle)
}

// FilterTasks returns copies of the tasks that match filters and search,
// ordered by sortBy. Every policy is a total order: remaining ties fall
// back to the manual order.
func FilterTasks(tasks []models.Task, filters Filters, search string, sortBy models.SortBy, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for i := range tasks {
		if filters.Match(&tasks[i], search, now) {
			out = append(out, tasks[i].Clone())
		}
	}
	slices.SortStableFunc(out, Comparator(sortBy))
	return out
}

// Comparator returns the ordering for sortBy. Unknown policies sort by creation.
func Comparator(sortBy models.SortBy) func(a, b models.Task) int {
	switch sortBy {
	case models.SortByDueDate:
		return compareDueDate
	case models.SortByPriority:
		return comparePriority
	case models.SortByManual:
		return models.CompareManual
	default:
		return compareCreated
	}
}

func compareDueDate(a, b models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return models.CompareManual(a, b)
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	if c := a.DueDate.Compare(*b.DueDate); c != 0 {
		return c
	}
	return models.CompareManual(a, b)
}

func comparePriority(a, b models.Task) int {
	if c := cmp.Compare(b.Priority.Rank(), a.Priority.Rank()); c != 0 {
		return c
	}
	return models.CompareManual(a, b)
}

func compareCreated(a, b models.Task) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return models.CompareManual(a, b)
}
