// Package session keeps the per-visitor controllers alive between page loads.
package session

import (
	"context"
	"sync"
	"time"

	"schemebot/internal/metrics"
	"schemebot/internal/search"
	"schemebot/internal/utils"
	"schemebot/internal/verify"
	"schemebot/pkg/types"

	"github.com/sirupsen/logrus"
)

// Backend is everything the controllers need from the scheme service.
type Backend interface {
	search.Searcher
	verify.Verifier
}

type Session struct {
	ID     string
	Search *search.Controller

	store *Store

	mu           sync.Mutex
	verification *verify.Controller
	lastSeen     time.Time
}

// OpenVerification replaces any active verification with a fresh one for
// scheme.
func (s *Session) OpenVerification(scheme types.SchemeSummary) *verify.Controller {
	next := verify.NewController(scheme, s.store.backend, s.store.logger.WithField("session_id", s.ID), s.store.metrics, s.store.timeout)

	s.mu.Lock()
	prev := s.verification
	s.verification = next
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}

	return next
}

// Verification returns the active workflow or nil.
func (s *Session) Verification() *verify.Controller {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verification
}

func (s *Session) CloseVerification() {
	s.mu.Lock()
	prev := s.verification
	s.verification = nil
	s.mu.Unlock()

	if prev != nil {
		prev.Close()
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) close() {
	s.CloseVerification()
	s.Search.Close()
}

type Store struct {
	backend Backend
	logger  logrus.FieldLogger
	metrics *metrics.Metrics
	timeout time.Duration
	ttl     time.Duration
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(backend Backend, logger logrus.FieldLogger, m *metrics.Metrics, timeout, ttl time.Duration) *Store {
	return &Store{
		backend:  backend,
		logger:   logger.WithField("component", "session"),
		metrics:  m,
		timeout:  timeout,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

func (st *Store) Create() *Session {
	id := utils.NanoID()
	s := &Session{
		ID:       id,
		Search:   search.NewController(st.backend, st.logger.WithField("session_id", id), st.metrics, st.timeout),
		store:    st,
		lastSeen: st.now(),
	}

	st.mu.Lock()
	st.sessions[id] = s
	count := len(st.sessions)
	st.mu.Unlock()

	st.metrics.SetActiveSessions(count)
	return s
}

// Get returns the live session for id and marks it as used.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	st.mu.Unlock()

	if !ok {
		return nil, false
	}

	s.touch(st.now())
	return s, true
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep drops sessions idle for longer than the ttl and closes their
// controllers. It returns how many were removed. A non-positive ttl never
// expires anything.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}

	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	count := len(st.sessions)
	st.mu.Unlock()

	for _, s := range expired {
		s.close()
	}

	st.metrics.SetActiveSessions(count)
	if len(expired) > 0 {
		st.logger.WithField("expired", len(expired)).Debug("swept idle sessions")
	}

	return len(expired)
}

// Run sweeps every interval until ctx is done, then closes every session.
func (st *Store) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.closeAll()
			return nil
		case <-ticker.C:
			st.Sweep()
		}
	}
}

func (st *Store) closeAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	st.metrics.SetActiveSessions(0)
}
