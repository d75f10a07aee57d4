package domain

import (
	"errors"
	"time"
)

// Category groups tasks into a fixed set of buckets.
type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryUrgent   Category = "Urgent"
	CategoryIdeas    Category = "Ideas"
	CategoryShopping Category = "Shopping"
)

// Categories lists the fixed vocabulary in display order.
var Categories = []Category{CategoryWork, CategoryPersonal, CategoryUrgent, CategoryIdeas, CategoryShopping}

// Valid reports whether c belongs to the fixed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryWork, CategoryPersonal, CategoryUrgent, CategoryIdeas, CategoryShopping:
		return true
	}
	return false
}

// Priority orders tasks by urgency.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// Priorities lists the fixed vocabulary from least to most urgent.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityHigh:     1,
	PriorityMedium:   2,
	PriorityLow:      3,
}

// Rank returns the sort rank of p, most urgent first. Unknown values sort last.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return len(priorityRank)
}

// Valid reports whether p belongs to the fixed priority set.
func (p Priority) Valid() bool {
	_, ok := priorityRank[p]
	return ok
}

// SuggestedTags is the recommended tag vocabulary. Tasks may carry
// arbitrary tags; this list only feeds UI suggestions.
var SuggestedTags = []string{"bug", "feature", "improvement", "meeting", "code", "docs"}

var (
	ErrEmptyTitle      = errors.New("task title must not be empty")
	ErrInvalidCategory = errors.New("unknown task category")
	ErrInvalidPriority = errors.New("unknown task priority")
)

// DueDateLayout is the wire format for due dates. Due dates carry no
// time component.
const DueDateLayout = "2006-01-02"

// Subtask is a checklist item owned by a single task.
type Subtask struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task is a unit of work with scheduling and categorization metadata.
// EstimatedTime and TimeSpent are minutes.
type Task struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Category      Category  `json:"category"`
	Priority      Priority  `json:"priority"`
	Completed     bool      `json:"completed"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	DueDate       string    `json:"dueDate,omitempty"`
	Tags          []string  `json:"tags"`
	Subtasks      []Subtask `json:"subtasks"`
	Notes         string    `json:"notes"`
	EstimatedTime int       `json:"estimatedTime"`
	TimeSpent     int       `json:"timeSpent"`
}

// Due returns the due date at local midnight and whether one is set.
// A malformed due date counts as unset.
func (t *Task) Due() (time.Time, bool) {
	if t.DueDate == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(DueDateLayout, t.DueDate, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Overdue reports whether the task is pending with a due date strictly
// before now.
func (t *Task) Overdue(now time.Time) bool {
	if t.Completed {
		return false
	}
	due, ok := t.Due()
	return ok && due.Before(now)
}

// DueToday reports whether the due date falls on the same calendar day
// as now, regardless of completion.
func (t *Task) DueToday(now time.Time) bool {
	due, ok := t.Due()
	if !ok {
		return false
	}
	y1, m1, d1 := due.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// Clone returns a deep copy of the task so callers can hold query
// results without aliasing the store's slices.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.Subtasks != nil {
		out.Subtasks = append([]Subtask(nil), t.Subtasks...)
	}
	return out
}

// TaskPatch carries a partial update. Only non-nil fields are applied.
type TaskPatch struct {
	Title         *string
	Category      *Category
	Priority      *Priority
	DueDate       *string
	Tags          *[]string
	Notes         *string
	EstimatedTime *int
	TimeSpent     *int
}
