package models

import (
	"cmp"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var ErrInvalidPriority = errors.New("priority must be 'high', 'medium', or 'low'")

// ParsePriority converts a raw string into a Priority.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	default:
		return "", ErrInvalidPriority
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	_, err := ParsePriority(string(p))
	return err == nil
}

// Rank returns a numeric weight for sorting by priority.
// Higher numbers indicate higher priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Task represents a single user-tracked unit of work.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsCompleted bool       `json:"isCompleted"`
	Priority    Priority   `json:"priority"`
	CategoryID  string     `json:"categoryId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Reminder    *time.Time `json:"reminder,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Order       int        `json:"order"`
}

const maxTitleLength = 500

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return errors.New("title is required")
	}

	if utf8.RuneCountInString(t.Title) > maxTitleLength {
		return errors.New("title must be 500 characters or fewer")
	}

	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}

	if t.UpdatedAt.Before(t.CreatedAt) {
		return errors.New("updatedAt cannot be before createdAt")
	}

	return nil
}

// IsOverdue returns true if the task has a due date before now and is not completed.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.IsCompleted || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now)
}

// HasCategory reports whether the task references a category.
func (t *Task) HasCategory() bool {
	return t.CategoryID != ""
}

// CompareManual orders tasks for the manual view: higher Order first, then
// newer CreatedAt, then ID. It is a total order over distinct ids.
func CompareManual(a, b Task) int {
	if c := cmp.Compare(b.Order, a.Order); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	if t.Reminder != nil {
		r := *t.Reminder
		t.Reminder = &r
	}
	return t
}

// CloneTasks copies a task slice element by element.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}

// TaskDraft holds the caller-supplied fields of a new task. Identity,
// timestamps, completion and order are assigned by the repository.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	CategoryID  string     `json:"categoryId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Reminder    *time.Time `json:"reminder,omitempty"`
}

// TaskPatch is a field-level merge. Nil fields are left untouched; an empty
// CategoryID or Description clears the value.
type TaskPatch struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Priority      *Priority  `json:"priority,omitempty"`
	CategoryID    *string    `json:"categoryId,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	ClearDueDate  bool       `json:"clearDueDate,omitempty"`
	Reminder      *time.Time `json:"reminder,omitempty"`
	ClearReminder bool       `json:"clearReminder,omitempty"`
	IsCompleted   *bool      `json:"isCompleted,omitempty"`
}

// ChangesCategory reports whether applying p to t moves it to another category.
func (p TaskPatch) ChangesCategory(t Task) bool {
	return p.CategoryID != nil && *p.CategoryID != t.CategoryID
}

// Apply merges the provided fields into t. Timestamps are not touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.CategoryID != nil {
		t.CategoryID = *p.CategoryID
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		t.DueDate = &d
	}
	switch {
	case p.ClearReminder:
		t.Reminder = nil
	case p.Reminder != nil:
		r := *p.Reminder
		t.Reminder = &r
	}
	if p.IsCompleted != nil {
		t.IsCompleted = *p.IsCompleted
	}
}
