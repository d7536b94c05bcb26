// Package session persists conversation threads so a user can continue a
// conversation across requests.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/message"
)

// DefaultThreadID is used when a caller does not name a thread.
const DefaultThreadID = "default"

// Record is the persisted state of one conversation thread.
type Record struct {
	ID        string             `json:"id"`
	Messages  []*message.Message `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewRecord returns an empty thread.
func NewRecord(id string) *Record {
	now := time.Now()
	return &Record{ID: id, CreatedAt: now, UpdatedAt: now}
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cloned := *r
	cloned.Messages = message.CloneMessages(r.Messages)
	return &cloned
}

// Append adds messages to the thread.
func (r *Record) Append(msgs ...*message.Message) {
	r.Messages = append(r.Messages, msgs...)
	r.UpdatedAt = time.Now()
}

// Store defines the interface for session storage backends that operate on
// serializable session records.
type Store interface {
	Save(ctx context.Context, record *Record) error
	// Load returns an error wrapping errors.ErrNotFound for unknown ids.
	Load(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// Manager serializes updates per thread on top of a Store. Different threads
// proceed in parallel.
type Manager struct {
	store Store
	locks sync.Map // thread id -> *sync.Mutex
}

// NewManager creates a manager over store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Store returns the backing store.
func (m *Manager) Store() Store {
	return m.store
}

// History returns the messages of a thread, or nil for an unknown thread.
func (m *Manager) History(ctx context.Context, id string) ([]*message.Message, error) {
	record, err := m.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Messages, nil
}

// Update loads the thread (creating it when absent), applies fn and saves the
// result. Calls for the same thread run one at a time. Nothing is saved when
// fn fails.
func (m *Manager) Update(ctx context.Context, id string, fn func(*Record) error) error {
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	record, err := m.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(record); err != nil {
		return err
	}
	if err := m.store.Save(ctx, record); err != nil {
		return fmt.Errorf("save thread %s: %w", id, err)
	}
	return nil
}

// Reset deletes a thread. Unknown threads are ignored.
func (m *Manager) Reset(ctx context.Context, id string) error {
	mu := m.lock(id)
	mu.Lock()
	defer mu.Unlock()

	if err := m.store.Delete(ctx, id); err != nil && !errorskg.IsNotFound(err) {
		return err
	}
	return nil
}

func (m *Manager) load(ctx context.Context, id string) (*Record, error) {
	record, err := m.store.Load(ctx, id)
	if errorskg.IsNotFound(err) {
		return NewRecord(id), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load thread %s: %w", id, err)
	}
	return record, nil
}

func (m *Manager) lock(id string) *sync.Mutex {
	mu, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
