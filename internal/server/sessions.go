package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/compound-curves/internal/session"
)

// browserSession is the calculator state of one browser. Its mutex
// serializes render passes so each pass runs to completion before the next.
type browserSession struct {
	mu       sync.Mutex
	state    session.State
	params   session.Params
	lastSeen time.Time
}

type registry struct {
	mu       sync.Mutex
	entries  map[string]*browserSession
	ttl      time.Duration
	palette  []string
	defaults session.Params
	now      func() time.Time
}

func newRegistry(ttl time.Duration, palette []string, defaults session.Params) *registry {
	return &registry{
		entries:  make(map[string]*browserSession),
		ttl:      ttl,
		palette:  palette,
		defaults: defaults.Clamp(),
		now:      time.Now,
	}
}

// lookup returns the session for id, creating a fresh one (with a new id)
// when id is unknown or expired. The boolean reports whether it was created.
func (r *registry) lookup(id string) (string, *browserSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)

	if entry, ok := r.entries[id]; ok && id != "" {
		entry.lastSeen = now
		return id, entry, false
	}

	id = uuid.NewString()
	entry := &browserSession{
		state:    session.NewState(r.palette),
		params:   r.defaults,
		lastSeen: now,
	}
	r.entries[id] = entry
	return id, entry, true
}

func (r *registry) sweepLocked(now time.Time) {
	if r.ttl <= 0 {
		return
	}
	for id, entry := range r.entries {
		if now.Sub(entry.lastSeen) > r.ttl {
			delete(r.entries, id)
		}
	}
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
