package domain

import (
	"math"
	"time"
)

// Snapshot is a derived, read-only aggregate of the current collection.
// ByCategory and ByPriority always carry every vocabulary key, zero or
// not, so consumers can render fixed layouts.
type Snapshot struct {
	Total              int              `json:"total"`
	Completed          int              `json:"completed"`
	Pending            int              `json:"pending"`
	Overdue            int              `json:"overdue"`
	CompletionRate     int              `json:"completionRate"`
	ByCategory         map[Category]int `json:"byCategory"`
	ByPriority         map[Priority]int `json:"byPriority"`
	TotalTimeSpent     int              `json:"totalTimeSpent"`
	TotalEstimatedTime int              `json:"totalEstimatedTime"`
}

// ComputeStats builds a Snapshot from tasks. It has no side effects.
func ComputeStats(tasks []Task, now time.Time) Snapshot {
	s := Snapshot{
		ByCategory: make(map[Category]int, len(Categories)),
		ByPriority: make(map[Priority]int, len(Priorities)),
	}
	for _, c := range Categories {
		s.ByCategory[c] = 0
	}
	for _, p := range Priorities {
		s.ByPriority[p] = 0
	}

	for i := range tasks {
		t := &tasks[i]
		s.Total++
		if t.Completed {
			s.Completed++
		}
		if t.Overdue(now) {
			s.Overdue++
		}
		if _, ok := s.ByCategory[t.Category]; ok {
			s.ByCategory[t.Category]++
		}
		if _, ok := s.ByPriority[t.Priority]; ok {
			s.ByPriority[t.Priority]++
		}
		s.TotalTimeSpent += t.TimeSpent
		s.TotalEstimatedTime += t.EstimatedTime
	}

	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
