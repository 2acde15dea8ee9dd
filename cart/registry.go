package cart

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/campus-canteen/utils"
)

type session struct {
	store    *Store
	lastSeen time.Time
}

// Registry owns every live Store, keyed by session id.
type Registry struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*session
	stopChan chan struct{}
	stopOnce sync.Once
	now      func() time.Time
}

func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{
		IdleTTL:       idleTTL,
		SweepInterval: time.Minute,
		sessions:      make(map[string]*session),
		stopChan:      make(chan struct{}),
		now:           time.Now,
	}
}

// Create starts a new empty session.
func (r *Registry) Create() (string, *Store) {
	id := uuid.NewString()
	store := NewStore()

	r.mu.Lock()
	r.sessions[id] = &session{store: store, lastSeen: r.now()}
	r.mu.Unlock()
	return id, store
}

// Get returns the live store for id and refreshes its idle timer.
func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	if r.IdleTTL > 0 && r.now().Sub(s.lastSeen) > r.IdleTTL {
		delete(r.sessions, id)
		return nil, false
	}
	s.lastSeen = r.now()
	return s.store, true
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than IdleTTL and returns how many.
func (r *Registry) Sweep() int {
	if r.IdleTTL <= 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	now := r.now()
	for id, s := range r.sessions {
		if now.Sub(s.lastSeen) > r.IdleTTL {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Start() {
	go func() {
		ticker := time.NewTicker(r.SweepInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := r.Sweep(); n > 0 {
					utils.InfoLogger.Printf("Expired %d idle cart sessions", n)
				}
			case <-r.stopChan:
				return
			}
		}
	}()
}

func (r *Registry) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopChan)
	})
}
