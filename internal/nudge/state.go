package nudge

import (
	"context"
	"sync"
	"time"
)

// State is the persisted record for one nudge id. The zero value is the
// default state created on first read.
type State struct {
	DismissCount         int        `json:"dismissCount"`
	LastDismissedAt      *time.Time `json:"lastDismissedAt,omitempty"`
	SnoozeUntil          *time.Time `json:"snoozeUntil,omitempty"`
	PermanentlyDismissed bool       `json:"permanentlyDismissed"`
}

// Store persists nudge state across sessions. Get returns the default
// State for ids never written. Update applies fn as one read-modify-write.
type Store interface {
	Get(ctx context.Context, id string) (State, error)
	Set(ctx context.Context, id string, st State) error
	Update(ctx context.Context, id string, fn func(*State)) (State, error)
}

type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id], nil
}

func (s *MemoryStore) Set(_ context.Context, id string, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = st
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id string, fn func(*State)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[id]
	fn(&st)
	s.states[id] = st
	return st, nil
}

type prefixedStore struct {
	inner  Store
	prefix string
}

// Prefixed scopes every id of inner under prefix, e.g. one namespace per user.
func Prefixed(inner Store, prefix string) Store {
	return &prefixedStore{inner: inner, prefix: prefix + ":"}
}

func (p *prefixedStore) Get(ctx context.Context, id string) (State, error) {
	return p.inner.Get(ctx, p.prefix+id)
}

func (p *prefixedStore) Set(ctx context.Context, id string, st State) error {
	return p.inner.Set(ctx, p.prefix+id, st)
}

func (p *prefixedStore) Update(ctx context.Context, id string, fn func(*State)) (State, error) {
	return p.inner.Update(ctx, p.prefix+id, fn)
}
