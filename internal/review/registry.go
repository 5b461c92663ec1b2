package review

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout exits sessions that receive no user command for d.
// Zero or negative disables expiry.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		r.idleTimeout = d
	}
}

// WithRegistryClock replaces the wall clock used for idle sweeps.
func WithRegistryClock(clock Clock) RegistryOption {
	return func(r *Registry) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// Registry tracks live sessions by id. A session is dropped from the
// registry as soon as it exits. With an idle timeout, sessions nobody has
// touched for that long are exited by a periodic sweep.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	logger   *slog.Logger

	idleTimeout time.Duration
	clock       Clock
	// sweep is armed only while sessions are registered.
	sweep  Stopper
	closed bool
}

// NewRegistry creates an empty registry.
// If logger is nil, a default logger will be used.
func NewRegistry(logger *slog.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		sessions: make(map[uuid.UUID]*Session),
		logger:   logger.With(slog.String("component", "session_registry")),
		clock:    SystemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers s until it exits.
func (r *Registry) Add(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID()] = s
	count := len(r.sessions)
	r.armSweepLocked()
	r.mu.Unlock()

	r.logger.Debug("session registered",
		slog.String("session_id", s.ID().String()),
		slog.Int("active", count))

	go func() {
		<-s.Done()
		r.remove(s)
	}()
}

// Get returns the live session with id, or ErrSessionNotFound.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll exits every live session and stops the idle sweep.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	r.closed = true
	if r.sweep != nil {
		r.sweep.Stop()
		r.sweep = nil
	}
	sessions := r.snapshotLocked()
	r.mu.Unlock()

	for _, s := range sessions {
		s.Exit()
	}
	if len(sessions) > 0 {
		r.logger.Info("closed review sessions", slog.Int("count", len(sessions)))
	}
}

// ExpireIdle exits every session whose last command is older than the idle
// timeout and returns how many it exited.
func (r *Registry) ExpireIdle() int {
	if r.idleTimeout <= 0 {
		return 0
	}

	r.mu.RLock()
	sessions := r.snapshotLocked()
	r.mu.RUnlock()

	cutoff := r.clock.Now().Add(-r.idleTimeout)
	expired := 0
	for _, s := range sessions {
		if s.LastActive().After(cutoff) {
			continue
		}
		r.logger.Info("expiring idle review session",
			slog.String("session_id", s.ID().String()),
			slog.Time("last_active", s.LastActive()))
		s.Exit()
		expired++
	}
	return expired
}

// armSweepLocked schedules the next idle sweep. r.mu must be held.
func (r *Registry) armSweepLocked() {
	if r.idleTimeout <= 0 || r.closed || r.sweep != nil {
		return
	}
	r.sweep = r.clock.AfterFunc(r.sweepInterval(), r.runSweep)
}

func (r *Registry) runSweep() {
	r.mu.Lock()
	r.sweep = nil
	r.mu.Unlock()

	r.ExpireIdle()

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		select {
		case <-s.Done():
			continue
		default:
		}
		r.armSweepLocked()
		return
	}
}

// sweepInterval checks twice per timeout so a session outlives its idle
// limit by at most half of it.
func (r *Registry) sweepInterval() time.Duration {
	interval := r.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	return interval
}

func (r *Registry) snapshotLocked() []*Session {
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	return sessions
}

func (r *Registry) remove(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions[s.ID()] == s {
		delete(r.sessions, s.ID())
	}
}
