package models

import (
	"strings"
	"testing"
	"time"
)

func TestTaskValidation_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty title should fail",
			task:    Task{Title: "", Priority: PriorityMedium},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name:    "whitespace title should fail",
			task:    Task{Title: "   ", Priority: PriorityMedium},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name:    "valid task should pass",
			task:    Task{Title: "Test task", Priority: PriorityMedium},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestTaskValidation_PriorityValues(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name:    "high priority is valid",
			task:    Task{Title: "Test", Priority: PriorityHigh},
			wantErr: false,
		},
		{
			name:    "medium priority is valid",
			task:    Task{Title: "Test", Priority: PriorityMedium},
			wantErr: false,
		},
		{
			name:    "low priority is valid",
			task:    Task{Title: "Test", Priority: PriorityLow},
			wantErr: false,
		},
		{
			name:    "empty priority should fail",
			task:    Task{Title: "Test", Priority: ""},
			wantErr: true,
			errMsg:  "priority must be 'high', 'medium', or 'low'",
		},
		{
			name:    "invalid priority should fail",
			task:    Task{Title: "Test", Priority: "urgent"},
			wantErr: true,
			errMsg:  "priority must be 'high', 'medium', or 'low'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestTaskValidation_TitleLength(t *testing.T) {
	valid := Task{Title: strings.Repeat("a", 500), Priority: PriorityMedium}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected 500-char title to be valid, got error: %v", err)
	}

	invalid := Task{Title: strings.Repeat("a", 501), Priority: PriorityMedium}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("expected validation error for title longer than 500")
	}
	if err.Error() != "title must be 500 characters or fewer" {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestTaskValidation_Timestamps(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	task := Task{Title: "Task", Priority: PriorityLow, CreatedAt: created, UpdatedAt: created.Add(-time.Second)}

	if err := task.Validate(); err == nil {
		t.Fatal("expected error when updatedAt precedes createdAt")
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	tests := []struct {
		name     string
		task     Task
		expected bool
	}{
		{
			name:     "past due date and not completed is overdue",
			task:     Task{DueDate: &yesterday, IsCompleted: false},
			expected: true,
		},
		{
			name:     "past due date but completed is not overdue",
			task:     Task{DueDate: &yesterday, IsCompleted: true},
			expected: false,
		},
		{
			name:     "future due date is not overdue",
			task:     Task{DueDate: &tomorrow, IsCompleted: false},
			expected: false,
		},
		{
			name:     "due exactly now is not overdue",
			task:     Task{DueDate: &now, IsCompleted: false},
			expected: false,
		},
		{
			name:     "no due date is not overdue",
			task:     Task{DueDate: nil, IsCompleted: false},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.task.IsOverdue(now)
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestPriority_Rank(t *testing.T) {
	tests := []struct {
		name     string
		priority Priority
		expected int
	}{
		{name: "high priority returns 3", priority: PriorityHigh, expected: 3},
		{name: "medium priority returns 2", priority: PriorityMedium, expected: 2},
		{name: "low priority returns 1", priority: PriorityLow, expected: 1},
		{name: "unknown priority returns 0", priority: "unknown", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.priority.Rank()
			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestTask_CloneDoesNotShareDates(t *testing.T) {
	due := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	original := Task{Title: "Task", DueDate: &due}

	clone := original.Clone()
	*clone.DueDate = clone.DueDate.AddDate(1, 0, 0)

	if !original.DueDate.Equal(due) {
		t.Fatalf("expected original due date to be untouched, got %v", original.DueDate)
	}
}

func TestTaskPatch_Apply(t *testing.T) {
	due := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	task := Task{Title: "Old", Description: "notes", Priority: PriorityLow, CategoryID: "work", DueDate: &due}

	title := "New"
	empty := ""
	high := PriorityHigh
	patch := TaskPatch{Title: &title, CategoryID: &empty, Priority: &high, ClearDueDate: true}

	if !patch.ChangesCategory(task) {
		t.Fatal("expected patch to change category")
	}

	patch.Apply(&task)

	if task.Title != "New" {
		t.Errorf("expected title %q, got %q", "New", task.Title)
	}
	if task.Description != "notes" {
		t.Errorf("expected description to be untouched, got %q", task.Description)
	}
	if task.CategoryID != "" {
		t.Errorf("expected category to be cleared, got %q", task.CategoryID)
	}
	if task.Priority != PriorityHigh {
		t.Errorf("expected priority high, got %q", task.Priority)
	}
	if task.DueDate != nil {
		t.Errorf("expected due date to be cleared, got %v", task.DueDate)
	}
}

func TestTaskPatch_SameCategoryIsNotAChange(t *testing.T) {
	same := "work"
	patch := TaskPatch{CategoryID: &same}

	if patch.ChangesCategory(Task{CategoryID: "work"}) {
		t.Fatal("expected identical category not to count as a change")
	}
	if (TaskPatch{}).ChangesCategory(Task{CategoryID: "work"}) {
		t.Fatal("expected absent category not to count as a change")
	}
}
