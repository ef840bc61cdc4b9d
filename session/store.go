package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"memestudio/core"
	"memestudio/gateway"
	"memestudio/loader"
	"memestudio/logging"
	"memestudio/render"
)

// ErrSessionNotFound is returned when a studio session ID is unknown.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionExpired is returned when a studio session exists but has
// idled past its TTL.
var ErrSessionExpired = errors.New("session expired")

type entry struct {
	controller *Controller
	deadline   time.Time
}

// Store holds the live studio sessions keyed by their cryptographically
// random IDs. Access slides the expiry deadline so an active session never
// dies under the user.
type Store struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	ttl      time.Duration
	loader   *loader.Loader
	renderer *render.Renderer
	provider gateway.Provider
	logger   *logging.Logger
	observer TaskObserver
}

// NewStore builds a session store. The loader, renderer, and provider are
// shared by every controller the store creates.
func NewStore(ttl time.Duration, ld *loader.Loader, rd *render.Renderer, provider gateway.Provider, logger *logging.Logger) *Store {
	return &Store{
		entries:  make(map[string]*entry),
		ttl:      ttl,
		loader:   ld,
		renderer: rd,
		provider: provider,
		logger:   logger,
	}
}

// SetObserver attaches a task observer that will be propagated to every
// controller the store creates. Call before serving traffic.
func (s *Store) SetObserver(o TaskObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = o
}

// Create makes a fresh studio session and returns its controller.
func (s *Store) Create() (*Controller, error) {
	id, err := core.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	c := NewController(id, s.loader, s.renderer, s.provider, s.logger)

	s.mu.Lock()
	if s.observer != nil {
		c.SetObserver(s.observer)
	}
	s.entries[id] = &entry{controller: c, deadline: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return c, nil
}

// Get returns the controller for id and extends its deadline. Expired
// sessions are removed on access.
func (s *Store) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[id]
	if !exists {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(e.deadline) {
		delete(s.entries, id)
		return nil, ErrSessionExpired
	}
	e.deadline = time.Now().Add(s.ttl)
	return e.controller, nil
}

// Delete removes a session. Idempotent.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Cleanup removes all expired sessions and returns how many were dropped.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for id, e := range s.entries {
		if now.After(e.deadline) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// StartCleanupTicker runs Cleanup every interval until ctx is cancelled.
func (s *Store) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
