package session

import (
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/cache"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/events"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultTTL = 2 * time.Hour

	// CleanupInterval is how often idle sessions are looked for.
	CleanupInterval = time.Minute
)

type Registry struct {
	deps *Deps
	ttl  time.Duration
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session

	stopCleanup chan struct{}
	stopOnce    sync.Once
	wg          sync.WaitGroup
}

// NewRegistry starts the idle-session janitor; call Close to stop it.
func NewRegistry(deps Deps, ttl, interval time.Duration) *Registry {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Scratch == nil {
		deps.Scratch = cache.NewMemoryScratch()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}
	if deps.Currency == "" {
		deps.Currency = checkout.DefaultCurrency
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if interval <= 0 {
		interval = CleanupInterval
	}

	r := &Registry{
		deps:        &deps,
		ttl:         ttl,
		now:         time.Now,
		sessions:    make(map[string]*Session),
		stopCleanup: make(chan struct{}),
	}
	r.wg.Add(1)
	go r.cleanupLoop(interval)
	return r
}

func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.deps, r.now())
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	r.deps.Logger.Debug("session created", zap.String("session_id", s.ID))
	return s
}

// Get returns a live session and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// GetOrCreate resolves id, creating a new session when it is unknown or
// expired. created reports whether the caller must hand out a new id.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool) {
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, false
		}
	}
	return r.Create(), true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) cleanupLoop(interval time.Duration) {
	defer r.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.expireIdle()
		case <-r.stopCleanup:
			return
		}
	}
}

// expireIdle drops sessions idle for longer than the ttl. A session with a
// payment in flight is kept until the payment settles.
func (r *Registry) expireIdle() {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) && !s.Paying() {
			delete(r.sessions, id)
			expired = append(expired, s)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.close()
		r.deps.Logger.Debug("session expired", zap.String("session_id", s.ID))
	}
}

// Close stops the janitor and cancels every session context.
func (r *Registry) Close() error {
	r.stopOnce.Do(func() {
		close(r.stopCleanup)
	})
	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		s.close()
		delete(r.sessions, id)
	}
	return nil
}
