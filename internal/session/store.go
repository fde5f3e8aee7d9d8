// Package session keeps conversation state in process memory.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/qrpay/internal/common"
	"github.com/Veraticus/qrpay/internal/model"
)

// entry pairs a session with the token that serializes access to it.
type entry struct {
	session *model.Session
	token   chan struct{}
}

func newEntry(s *model.Session) *entry {
	e := &entry{session: s, token: make(chan struct{}, 1)}
	e.token <- struct{}{}
	return e
}

func (e *entry) acquire(ctx context.Context) error {
	select {
	case <-e.token:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for session: %w", ctx.Err())
	}
}

func (e *entry) release() {
	e.token <- struct{}{}
}

// Store is an in-memory SessionStore. Sessions are never evicted.
type Store struct {
	entries map[string]*entry
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger
	mu      sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides session identifier allocation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// NewStore creates an empty session store.
func NewStore(logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		entries: make(map[string]*entry),
		now:     time.Now,
		newID:   uuid.NewString,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve returns a working copy of the session named by sessionID together
// with exclusive access to it. An empty or unknown identifier allocates a new
// session under a fresh identifier. The release func must always be called;
// calling it more than once is harmless.
func (s *Store) Resolve(ctx context.Context, sessionID string) (*model.Session, func(), error) {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	if !ok || sessionID == "" {
		id := s.newID()
		e = newEntry(&model.Session{
			ID:        id,
			Status:    model.SessionIdle,
			Metadata:  map[string]any{},
			CreatedAt: s.now(),
		})
		s.entries[id] = e
		if sessionID != "" {
			s.logger.Debug("unknown session, allocated new one", "requested", sessionID, "session_id", id)
		}
	}
	s.mu.Unlock()

	if err := e.acquire(ctx); err != nil {
		return nil, func() {}, err
	}

	var once sync.Once
	release := func() { once.Do(e.release) }
	return e.session.Clone(), release, nil
}

// Commit publishes session as the current state for its identifier.
func (s *Store) Commit(_ context.Context, session *model.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("commit session: %w", common.ErrInvalidPayload)
	}

	stored := session.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[stored.ID]
	if !ok {
		s.entries[stored.ID] = newEntry(stored)
		return nil
	}
	e.session = stored
	return nil
}

// Get returns a snapshot of the session.
func (s *Store) Get(_ context.Context, sessionID string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %q: %w", sessionID, common.ErrNotFound)
	}
	return e.session.Clone(), nil
}

// ClearHistory drops every turn of the session while keeping its identity.
func (s *Store) ClearHistory(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	e, ok := s.entries[sessionID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", sessionID, common.ErrNotFound)
	}

	if err := e.acquire(ctx); err != nil {
		return err
	}
	defer e.release()

	cleared := e.session.Clone()
	cleared.History = nil
	cleared.Status = model.SessionIdle
	delete(cleared.Metadata, model.MetaLastQRSummary)

	s.mu.Lock()
	e.session = cleared
	s.mu.Unlock()
	return nil
}

// Len returns the number of sessions held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
