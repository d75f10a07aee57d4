package api

import (
	"context"

	"tasks-api/domain"
	"tasks-api/notify"
)

// Store is the task state handlers operate on. Mutations follow the
// store's contract: missing ids are silent no-ops, persistence
// failures never surface.
type Store interface {
	Add(ctx context.Context, title string, category domain.Category, priority domain.Priority, dueDate string, tags []string) (domain.Task, error)
	Delete(ctx context.Context, id int64)
	ToggleCompleted(ctx context.Context, id int64)
	Update(ctx context.Context, id int64, patch domain.TaskPatch) error
	AddSubtask(ctx context.Context, taskID int64, title string)
	ToggleSubtask(ctx context.Context, taskID, subtaskID int64)
	DeleteSubtask(ctx context.Context, taskID, subtaskID int64)
	Query(q domain.Query) []domain.Task
	Stats() domain.Snapshot
	Export() []domain.Task
	Replace(ctx context.Context, tasks []domain.Task) error
}

// Notifier delivers best-effort notifications. The return value only
// reports whether the message was accepted for delivery; handlers
// ignore it beyond logging.
type Notifier interface {
	Notify(msg notify.Message) bool
}
