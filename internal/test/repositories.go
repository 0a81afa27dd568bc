package test

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/codguard/internal/domain/errors"
	"github.com/polkiloo/codguard/internal/domain/model"
)

// OptionRepositoryStub stores named blobs in-memory.
type OptionRepositoryStub struct {
	Values map[string][]byte
	GetErr error
	SetErr error

	mu sync.Mutex
}

// NewOptionRepositoryStub constructs stub with initialized storage.
func NewOptionRepositoryStub() *OptionRepositoryStub {
	return &OptionRepositoryStub{Values: make(map[string][]byte)}
}

// Get returns stored value or not found.
func (s *OptionRepositoryStub) Get(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	value, ok := s.Values[name]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return append([]byte(nil), value...), nil
}

// Set overwrites stored value.
func (s *OptionRepositoryStub) Set(ctx context.Context, name string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return s.SetErr
	}
	if s.Values == nil {
		s.Values = make(map[string][]byte)
	}
	s.Values[name] = append([]byte(nil), value...)
	return nil
}

// Add stores value only when name is free.
func (s *OptionRepositoryStub) Add(ctx context.Context, name string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SetErr != nil {
		return false, s.SetErr
	}
	if s.Values == nil {
		s.Values = make(map[string][]byte)
	}
	if _, exists := s.Values[name]; exists {
		return false, nil
	}
	s.Values[name] = append([]byte(nil), value...)
	return true, nil
}

type transientEntry struct {
	value     []byte
	expiresAt time.Time
}

// TransientStoreStub is an in-memory expiring blob store.
type TransientStoreStub struct {
	Now       func() time.Time
	GetErr    error
	UpdateErr error
	DeleteErr error

	mu      sync.Mutex
	entries map[string]transientEntry
	updates int
}

// NewTransientStoreStub constructs empty store.
func NewTransientStoreStub() *TransientStoreStub {
	return &TransientStoreStub{entries: make(map[string]transientEntry)}
}

func (s *TransientStoreStub) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TransientStoreStub) live(key string) ([]byte, bool) {
	entry, ok := s.entries[key]
	if !ok || !entry.expiresAt.After(s.now()) {
		return nil, false
	}
	return append([]byte(nil), entry.value...), true
}

// Get returns live value or not found.
func (s *TransientStoreStub) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	value, ok := s.live(key)
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return value, nil
}

// Set stores value with expiry.
func (s *TransientStoreStub) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entries == nil {
		s.entries = make(map[string]transientEntry)
	}
	s.entries[key] = transientEntry{value: append([]byte(nil), value...), expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete removes key.
func (s *TransientStoreStub) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.entries, key)
	return nil
}

// Update applies fn atomically under the store lock.
func (s *TransientStoreStub) Update(ctx context.Context, key string, ttl time.Duration, fn func([]byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.updates++
	current, _ := s.live(key)
	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		delete(s.entries, key)
		return nil
	}
	if s.entries == nil {
		s.entries = make(map[string]transientEntry)
	}
	s.entries[key] = transientEntry{value: append([]byte(nil), next...), expiresAt: s.now().Add(ttl)}
	return nil
}

// ExpiresAt reports expiry for key, zero when missing.
func (s *TransientStoreStub) ExpiresAt(key string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key].expiresAt
}

// Updates returns number of Update calls.
func (s *TransientStoreStub) Updates() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates
}

// TaskSchedulerStub keeps one-shot tasks in-memory.
type TaskSchedulerStub struct {
	ScheduleErr error
	CheckErr    error

	mu       sync.Mutex
	tasks    map[string]time.Time
	attempts int
}

// NewTaskSchedulerStub constructs empty scheduler.
func NewTaskSchedulerStub() *TaskSchedulerStub {
	return &TaskSchedulerStub{tasks: make(map[string]time.Time)}
}

// IsScheduled reports whether name is pending.
func (s *TaskSchedulerStub) IsScheduled(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CheckErr != nil {
		return false, s.CheckErr
	}
	_, ok := s.tasks[name]
	return ok, nil
}

// Next returns pending registration for name.
func (s *TaskSchedulerStub) Next(ctx context.Context, name string) (*model.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.tasks[name]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &model.ScheduledTask{Name: name, RunAt: at}, nil
}

// ScheduleOnce registers name unless already pending.
func (s *TaskSchedulerStub) ScheduleOnce(ctx context.Context, name string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.ScheduleErr != nil {
		return false, s.ScheduleErr
	}
	if s.tasks == nil {
		s.tasks = make(map[string]time.Time)
	}
	if _, ok := s.tasks[name]; ok {
		return false, nil
	}
	s.tasks[name] = at
	return true, nil
}

// ClaimDue removes and returns tasks due at now.
func (s *TaskSchedulerStub) ClaimDue(ctx context.Context, now time.Time, limit int) ([]model.ScheduledTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var due []model.ScheduledTask
	for name, at := range s.tasks {
		if !at.After(now) {
			due = append(due, model.ScheduledTask{Name: name, RunAt: at})
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].RunAt.Before(due[j].RunAt) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	for _, t := range due {
		delete(s.tasks, t.Name)
	}
	return due, nil
}

// Clear removes pending registration.
func (s *TaskSchedulerStub) Clear(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, name)
	return nil
}

// Count returns number of pending tasks.
func (s *TaskSchedulerStub) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Attempts returns number of ScheduleOnce calls.
func (s *TaskSchedulerStub) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

// BlockEventRepositoryStub keeps block events in-memory.
type BlockEventRepositoryStub struct {
	Events    []model.BlockEvent
	AppendErr error
	ListErr   error

	mu sync.Mutex
}

// Append stores event and drops events older than cutoff.
func (s *BlockEventRepositoryStub) Append(ctx context.Context, event model.BlockEvent, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendErr != nil {
		return 0, s.AppendErr
	}
	s.Events = append(s.Events, event)
	kept := s.Events[:0]
	for _, e := range s.Events {
		if !e.Timestamp.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	s.Events = kept
	return len(s.Events), nil
}

// List returns events newer than since, newest first.
func (s *BlockEventRepositoryStub) List(ctx context.Context, since time.Time) ([]model.BlockEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var result []model.BlockEvent
	for _, e := range s.Events {
		if e.Timestamp.After(since) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Timestamp.After(result[j].Timestamp) })
	return result, nil
}

// Len returns number of stored events.
func (s *BlockEventRepositoryStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Events)
}
