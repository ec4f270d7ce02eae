package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date form used for due dates and streak tracking.
const DateLayout = "2006-01-02"

// Category classifies a task into one of the planner's fixed buckets.
type Category string

const (
	CategoryHomework Category = "Homework"
	CategoryExams    Category = "Exams"
	CategoryProjects Category = "Projects"
	CategoryRevision Category = "Revision"
	CategoryPersonal Category = "Personal"
	CategoryGoals    Category = "Goals"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryHomework,
	CategoryExams,
	CategoryProjects,
	CategoryRevision,
	CategoryPersonal,
	CategoryGoals,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Priority ranks a task's urgency.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists every valid priority, highest first.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Rank orders priorities for sorting (High=3, Medium=2, Low=1).
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

// XP returns the experience points a completion of this priority earns.
func (p Priority) XP() int {
	switch p {
	case PriorityHigh:
		return 20
	case PriorityMedium:
		return 15
	default:
		return 10
	}
}

// Status is a task's completion state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Task represents a single planner item.
//
// CompletedAt is present exactly when Status is completed; the task service
// maintains that invariant on every mutation.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Category    Category   `json:"category"`
	Priority    Priority   `json:"priority"`
	DueDate     string     `json:"dueDate,omitempty"`
	Status      Status     `json:"status"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// MatchesSearch reports whether the query occurs in the title or notes,
// case-insensitively. An empty query matches everything.
func (t *Task) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Notes), q)
}

// DueTime parses the due date, reporting false when none is set or it is
// malformed.
func (t *Task) DueTime() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	due, err := time.Parse(DateLayout, t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return due, true
}
