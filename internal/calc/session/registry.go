package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"Civica/internal/calc/standards"
)

var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu       sync.Mutex
	session  *Session
	lastSeen time.Time
}

// Registry keeps the open sessions of a server. Sessions are independent; the
// registry lock guards only the map and each entry has its own lock.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	lib     *standards.Library
	ttl     time.Duration
	opts    []Option
	now     func() time.Time
}

func NewRegistry(lib *standards.Library, ttl time.Duration, opts ...Option) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		lib:     lib,
		ttl:     ttl,
		opts:    opts,
		now:     time.Now,
	}
}

func (r *Registry) Library() *standards.Library { return r.lib }

// Create opens a session for a calculator and returns its id.
func (r *Registry) Create(calculatorID string) (string, error) {
	cat, err := r.lib.Catalog(calculatorID)
	if err != nil {
		return "", err
	}
	s, err := New(cat, r.opts...)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	r.mu.Lock()
	r.entries[id] = &entry{session: s, lastSeen: r.now()}
	r.mu.Unlock()
	return id, nil
}

// Do runs fn with exclusive access to the session.
func (r *Registry) Do(id string, fn func(*Session) error) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		e.lastSeen = r.now()
	}
	r.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than the ttl and returns how many went.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			delete(r.entries, id)
			n++
		}
	}
	return n
}
