package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	log "github.com/sirupsen/logrus"

	"tasks-api/domain"
)

// Sanitizer cleans free-form text before it enters the collection. It
// must be idempotent and must not fail.
type Sanitizer func(string) string

// KV abstracts the persistence capability. The whole collection is
// serialized under a single key; Set replaces the previous value.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// TaskStore owns the authoritative ordered task collection. The
// in-memory slice is the source of truth for the life of the process;
// the key-value store is a write-through mirror loaded once at
// construction. Persistence failures are logged and swallowed so a
// broken mirror never takes the collection down with it.
type TaskStore struct {
	kv       KV
	key      string
	sanitize Sanitizer
	logger   *log.Logger

	mu     sync.Mutex
	tasks  []domain.Task
	lastID int64
}

// New loads any persisted collection and returns a ready store.
// Unreadable or malformed persisted data yields an empty collection.
func New(ctx context.Context, kv KV, key string, sanitize Sanitizer, logger *log.Logger) *TaskStore {
	if sanitize == nil {
		panic("store.New: sanitizer is required")
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	s := &TaskStore{kv: kv, key: key, sanitize: sanitize, logger: logger}
	s.load(ctx)
	return s
}

func (s *TaskStore) load(ctx context.Context) {
	if s.kv == nil {
		return
	}
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.logger.WithField("key", s.key).Warnf("load tasks: %v, starting empty", err)
		return
	}
	if !ok {
		return
	}
	var tasks []domain.Task
	if err := sonic.ConfigStd.Unmarshal(data, &tasks); err != nil {
		s.logger.WithField("key", s.key).Warnf("decode persisted tasks: %v, starting empty", err)
		return
	}
	s.tasks = tasks
	s.reseedIDs()
}

// reseedIDs advances the id clock past every loaded id so ids stay
// unique and creation-ordered across restarts.
func (s *TaskStore) reseedIDs() {
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
		for _, sub := range t.Subtasks {
			if sub.ID > s.lastID {
				s.lastID = sub.ID
			}
		}
	}
}

// nextID returns a unique creation-ordered identifier. Ids are
// nanosecond timestamps nudged forward on collision, so two calls in
// the same clock tick still produce distinct increasing values.
// Callers must hold s.mu.
func (s *TaskStore) nextID() int64 {
	now := time.Now().UnixNano()
	if now <= s.lastID {
		now = s.lastID + 1
	}
	s.lastID = now
	return now
}

// persist mirrors the whole collection to the key-value store. Errors
// are logged, never returned: the in-memory state stays authoritative.
// Callers must hold s.mu.
func (s *TaskStore) persist(ctx context.Context) {
	if s.kv == nil {
		return
	}
	data, err := sonic.ConfigStd.Marshal(s.tasks)
	if err != nil {
		s.logger.Errorf("encode tasks: %v", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.WithField("key", s.key).Errorf("persist tasks: %v", err)
	}
}

// Add creates a task and appends it to the collection. Empty category
// and priority fall back to Personal/Medium; unknown values are
// rejected. The returned task carries the assigned id and timestamps.
func (s *TaskStore) Add(ctx context.Context, title string, category domain.Category, priority domain.Priority, dueDate string, tags []string) (domain.Task, error) {
	title = s.sanitize(title)
	if title == "" {
		return domain.Task{}, domain.ErrEmptyTitle
	}
	if category == "" {
		category = domain.CategoryPersonal
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !category.Valid() {
		return domain.Task{}, fmt.Errorf("%w: %q", domain.ErrInvalidCategory, category)
	}
	if !priority.Valid() {
		return domain.Task{}, fmt.Errorf("%w: %q", domain.ErrInvalidPriority, priority)
	}
	if tags == nil {
		tags = []string{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	task := domain.Task{
		ID:        s.nextID(),
		Title:     title,
		Category:  category,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
		DueDate:   dueDate,
		Tags:      append([]string(nil), tags...),
		Subtasks:  []domain.Subtask{},
	}
	s.tasks = append(s.tasks, task)
	s.persist(ctx)
	return task.Clone(), nil
}

// Delete removes the task with the given id. Deleting a missing id is
// a no-op, so the operation is idempotent.
func (s *TaskStore) Delete(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// ToggleCompleted flips the completion state and refreshes UpdatedAt.
// Missing ids are a silent no-op.
func (s *TaskStore) ToggleCompleted(ctx context.Context, id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return
	}
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now()
	s.persist(ctx)
}

// Update applies the fields present in patch. Title and notes pass
// through the sanitizer; category and priority are validated. Missing
// ids are a silent no-op.
func (s *TaskStore) Update(ctx context.Context, id int64, patch domain.TaskPatch) error {
	if patch.Category != nil && !patch.Category.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCategory, *patch.Category)
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPriority, *patch.Priority)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(id)
	if t == nil {
		return nil
	}
	if patch.Title != nil {
		title := s.sanitize(*patch.Title)
		if title == "" {
			return domain.ErrEmptyTitle
		}
		t.Title = title
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		t.DueDate = *patch.DueDate
	}
	if patch.Tags != nil {
		t.Tags = append([]string(nil), (*patch.Tags)...)
	}
	if patch.Notes != nil {
		t.Notes = s.sanitize(*patch.Notes)
	}
	if patch.EstimatedTime != nil {
		t.EstimatedTime = *patch.EstimatedTime
	}
	if patch.TimeSpent != nil {
		t.TimeSpent = *patch.TimeSpent
	}
	t.UpdatedAt = time.Now()
	s.persist(ctx)
	return nil
}

// AddSubtask appends a checklist item to the given task. A missing
// parent is a silent no-op.
func (s *TaskStore) AddSubtask(ctx context.Context, taskID int64, title string) {
	title = s.sanitize(title)
	if title == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(taskID)
	if t == nil {
		return
	}
	t.Subtasks = append(t.Subtasks, domain.Subtask{ID: s.nextID(), Title: title})
	t.UpdatedAt = time.Now()
	s.persist(ctx)
}

// ToggleSubtask flips a subtask's completion state independently of
// its parent. Missing parent or child ids are silent no-ops.
func (s *TaskStore) ToggleSubtask(ctx context.Context, taskID, subtaskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(taskID)
	if t == nil {
		return
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks[i].Completed = !t.Subtasks[i].Completed
			t.UpdatedAt = time.Now()
			s.persist(ctx)
			return
		}
	}
}

// DeleteSubtask removes a checklist item. Missing parent or child ids
// leave the parent untouched.
func (s *TaskStore) DeleteSubtask(ctx context.Context, taskID, subtaskID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.find(taskID)
	if t == nil {
		return
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == subtaskID {
			t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
			t.UpdatedAt = time.Now()
			s.persist(ctx)
			return
		}
	}
}

// Query evaluates q against the current collection and returns a fresh
// ordered slice. The store is not mutated.
func (s *TaskStore) Query(q domain.Query) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Evaluate(q, s.tasks, time.Now())
}

// Stats returns an aggregate snapshot of the current collection.
func (s *TaskStore) Stats() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.ComputeStats(s.tasks, time.Now())
}

// Export returns a deep copy of the whole collection in insertion
// order, suitable for backup.
func (s *TaskStore) Export() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, len(s.tasks))
	for i := range s.tasks {
		out[i] = s.tasks[i].Clone()
	}
	return out
}

// Replace swaps in a new collection wholesale, re-seeds the id clock
// and persists. Used by restore; enum values are validated so a bad
// backup cannot poison the vocabularies.
func (s *TaskStore) Replace(ctx context.Context, tasks []domain.Task) error {
	for i := range tasks {
		if !tasks[i].Category.Valid() {
			return fmt.Errorf("task %d: %w: %q", tasks[i].ID, domain.ErrInvalidCategory, tasks[i].Category)
		}
		if !tasks[i].Priority.Valid() {
			return fmt.Errorf("task %d: %w: %q", tasks[i].ID, domain.ErrInvalidPriority, tasks[i].Priority)
		}
	}
	clone := make([]domain.Task, len(tasks))
	for i := range tasks {
		clone[i] = tasks[i].Clone()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = clone
	s.lastID = 0
	s.reseedIDs()
	s.persist(ctx)
	return nil
}

// find returns a pointer into the backing slice. Callers must hold
// s.mu and must not retain the pointer past the critical section.
func (s *TaskStore) find(id int64) *domain.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}
