// Package analytics derives summary statistics from a task snapshot.
package analytics

import (
	"time"

	"taskflow/internal/models"
)

const dateLayout = "2006-01-02"

// WeekDays is the length of the weekly activity window.
const WeekDays = 7

// PriorityCounts counts tasks per priority bucket.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// CategoryCounts is the per-category breakdown. Count is derived from the
// tasks, not from Category.TaskCount.
type CategoryCounts struct {
	CategoryID string `json:"categoryId"`
	Count      int    `json:"count"`
	Completed  int    `json:"completed"`
}

// DayActivity covers one local calendar day.
type DayActivity struct {
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Created   int    `json:"created"`
}

// Summary is the analytics view of the store.
type Summary struct {
	TotalTasks     int     `json:"totalTasks"`
	CompletedTasks int     `json:"completedTasks"`
	CompletionRate float64 `json:"completionRate"`
	// AverageCompletionTime is the mean updatedAt - createdAt of completed
	// tasks, in milliseconds.
	AverageCompletionTime float64          `json:"averageCompletionTime"`
	TasksByPriority       PriorityCounts   `json:"tasksByPriority"`
	TasksByCategory       []CategoryCounts `json:"tasksByCategory"`
	WeeklyCompletion      []DayActivity    `json:"weeklyCompletion"`
}

// Compute builds the summary for tasks and categories as of now. Calendar
// days are taken in loc; a nil loc means time.Local.
func Compute(tasks []models.Task, categories []models.Category, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}

	summary := Summary{
		TotalTasks:       len(tasks),
		TasksByCategory:  make([]CategoryCounts, len(categories)),
		WeeklyCompletion: make([]DayActivity, WeekDays),
	}

	byCategory := make(map[string]int, len(categories))
	for i := range categories {
		summary.TasksByCategory[i].CategoryID = categories[i].ID
		byCategory[categories[i].ID] = i
	}

	today := startOfDay(now, loc)
	firstDay := today.AddDate(0, 0, -(WeekDays - 1))
	for i := range summary.WeeklyCompletion {
		summary.WeeklyCompletion[i].Date = firstDay.AddDate(0, 0, i).Format(dateLayout)
	}

	var totalCompletion time.Duration
	for i := range tasks {
		t := &tasks[i]

		switch t.Priority {
		case models.PriorityHigh:
			summary.TasksByPriority.High++
		case models.PriorityMedium:
			summary.TasksByPriority.Medium++
		case models.PriorityLow:
			summary.TasksByPriority.Low++
		}

		idx, tracked := byCategory[t.CategoryID]
		if tracked && t.HasCategory() {
			summary.TasksByCategory[idx].Count++
		}

		if day, ok := dayIndex(firstDay, t.CreatedAt, loc); ok {
			summary.WeeklyCompletion[day].Created++
		}

		if !t.IsCompleted {
			continue
		}
		summary.CompletedTasks++
		totalCompletion += t.UpdatedAt.Sub(t.CreatedAt)
		if tracked && t.HasCategory() {
			summary.TasksByCategory[idx].Completed++
		}
		if day, ok := dayIndex(firstDay, t.UpdatedAt, loc); ok {
			summary.WeeklyCompletion[day].Completed++
		}
	}

	if summary.TotalTasks > 0 {
		summary.CompletionRate = float64(summary.CompletedTasks) / float64(summary.TotalTasks) * 100
	}
	if summary.CompletedTasks > 0 {
		summary.AverageCompletionTime = float64(totalCompletion.Milliseconds()) / float64(summary.CompletedTasks)
	}

	return summary
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// dayIndex returns the position of ts's local calendar day in the window
// starting at firstDay.
func dayIndex(firstDay, ts time.Time, loc *time.Location) (int, bool) {
	day := startOfDay(ts, loc)
	for i := 0; i < WeekDays; i++ {
		if day.Equal(firstDay.AddDate(0, 0, i)) {
			return i, true
		}
	}
	return 0, false
}
