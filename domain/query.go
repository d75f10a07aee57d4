package domain

import (
	"sort"
	"strings"
	"time"
)

// Filter names a predicate selecting a subset of tasks.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
	FilterToday     Filter = "today"
)

// Valid reports whether f is a known filter name.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterPending, FilterCompleted, FilterOverdue, FilterToday:
		return true
	}
	return false
}

// SortKey names a total order over a task sequence.
type SortKey string

const (
	SortNone     SortKey = ""
	SortPriority SortKey = "priority"
	SortCreated  SortKey = "created"
	SortDueDate  SortKey = "duedate"
)

// Valid reports whether k is a known sort key. The empty key keeps
// insertion order.
func (k SortKey) Valid() bool {
	switch k {
	case SortNone, SortPriority, SortCreated, SortDueDate:
		return true
	}
	return false
}

// Query describes a single deterministic pass over the collection:
// a filter predicate, an optional case-insensitive search text and an
// optional sort key. Filter and search compose with AND; there is no
// precedence between them.
type Query struct {
	Filter Filter
	Search string
	Sort   SortKey
}

// Evaluate applies q to tasks and returns a fresh ordered slice of
// deep copies. The input is never mutated. An empty filter behaves
// like FilterAll.
func Evaluate(q Query, tasks []Task, now time.Time) []Task {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if !matchesFilter(q.Filter, t, now) {
			continue
		}
		if needle != "" && !matchesSearch(t, needle) {
			continue
		}
		out = append(out, t.Clone())
	}
	sortTasks(q.Sort, out)
	return out
}

func matchesFilter(f Filter, t *Task, now time.Time) bool {
	switch f {
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	case FilterOverdue:
		return t.Overdue(now)
	case FilterToday:
		return t.DueToday(now)
	default:
		return true
	}
}

func matchesSearch(t *Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Notes), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// sortTasks orders the slice in place. All orders are stable so ties
// keep their original relative position.
func sortTasks(key SortKey, tasks []Task) {
	switch key {
	case SortPriority:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
		})
	case SortCreated:
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		})
	case SortDueDate:
		sort.SliceStable(tasks, func(i, j int) bool {
			di, iok := tasks[i].Due()
			dj, jok := tasks[j].Due()
			if !iok {
				return false
			}
			if !jok {
				return true
			}
			return di.Before(dj)
		})
	}
}
