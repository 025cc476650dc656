package engine

import (
	"context"
	"sync"
	"time"
)

// Session serializes generations for one viewer. Starting a new generation
// cancels the one in flight, and the superseded call returns context.Canceled.
type Session struct {
	engine *Engine

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	last   *Snapshot
}

// NewSession creates a session backed by e.
func NewSession(e *Engine) *Session {
	return &Session{engine: e}
}

// Generate runs req, superseding any generation already running in s.
func (s *Session) Generate(ctx context.Context, req Request) (*Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.seq++
	seq := s.seq
	s.cancel = cancel
	s.mu.Unlock()

	snap, err := s.engine.Generate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq != seq {
		return nil, context.Canceled
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	s.last = snap
	return snap, nil
}

// abort cancels the generation in flight, if any.
func (s *Session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Last returns the most recent completed snapshot, or nil.
func (s *Session) Last() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Session limits used by NewSessions.
const (
	DefaultMaxSessions = 1024
	DefaultSessionIdle = 30 * time.Minute
)

type sessionEntry struct {
	sess *Session
	used time.Time
}

// Sessions is a registry of sessions keyed by viewer id. Sessions idle for
// longer than Idle are dropped, and the least recently used session is
// evicted once the registry holds more than Max.
type Sessions struct {
	engine *Engine
	Max    int
	Idle   time.Duration

	mu       sync.Mutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

// NewSessions creates an empty registry with the default limits.
func NewSessions(e *Engine) *Sessions {
	return &Sessions{
		engine:   e,
		Max:      DefaultMaxSessions,
		Idle:     DefaultSessionIdle,
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
}

// Get returns the session for id, creating it on first use.
func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	r.pruneLocked(now)

	ent, ok := r.sessions[id]
	if !ok {
		ent = &sessionEntry{sess: NewSession(r.engine)}
		r.sessions[id] = ent
	}
	ent.used = now

	if r.Max > 0 {
		for len(r.sessions) > r.Max {
			r.evictOldestLocked(id)
		}
	}
	return ent.sess
}

// Prune drops sessions idle for longer than r.Idle and reports how many
// were removed.
func (r *Sessions) Prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(r.now())
}

func (r *Sessions) pruneLocked(now time.Time) int {
	if r.Idle <= 0 {
		return 0
	}
	n := 0
	for id, ent := range r.sessions {
		if now.Sub(ent.used) > r.Idle {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *Sessions) evictOldestLocked(keep string) {
	var oldest string
	var oldestAt time.Time
	for id, ent := range r.sessions {
		if id == keep {
			continue
		}
		if oldest == "" || ent.used.Before(oldestAt) {
			oldest, oldestAt = id, ent.used
		}
	}
	if oldest == "" {
		return
	}
	if ent := r.sessions[oldest]; ent != nil {
		ent.sess.abort()
	}
	delete(r.sessions, oldest)
}

// Len returns the number of sessions.
func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
