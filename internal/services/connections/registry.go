package connections

import (
	"errors"
	"strings"
	"sync"

	"github.com/samber/lo"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrHandleOwned = errors.New("handle is registered to another user")
)

// Handle is one live client connection.
type Handle interface {
	ID() string
	// Send queues payload without blocking and reports whether it was accepted.
	Send(payload []byte) bool
	// Done is closed once the connection is gone.
	Done() <-chan struct{}
}

type Stats struct {
	Users   int `json:"users"`
	Handles int `json:"connections"`
}

// Registry maps users to their live handles. A user may hold many handles; a
// handle belongs to exactly one user. Users without handles are not kept.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]map[string]Handle
	owners map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]map[string]Handle),
		owners: make(map[string]string),
	}
}

func (r *Registry) Register(userID string, handle Handle) error {
	if strings.TrimSpace(userID) == "" || handle == nil || handle.ID() == "" {
		return ErrValidation
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := handle.ID()
	if owner, ok := r.owners[id]; ok && owner != userID {
		return ErrHandleOwned
	}

	set, ok := r.byUser[userID]
	if !ok {
		set = make(map[string]Handle)
		r.byUser[userID] = set
	}
	set[id] = handle
	r.owners[id] = userID
	return nil
}

// Unregister is idempotent; it reports whether the handle was registered.
func (r *Registry) Unregister(handle Handle) bool {
	if handle == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(handle.ID())
}

// ConnectionsFor returns a snapshot; callers may use it after the registry
// changes.
func (r *Registry) ConnectionsFor(userID string) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	return lo.Values(set)
}

func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{Users: len(r.byUser), Handles: len(r.owners)}
}

// Sweep drops handles whose connection already ended and returns how many were
// removed.
func (r *Registry) Sweep() int {
	r.mu.RLock()
	stale := make([]string, 0)
	for _, set := range r.byUser {
		for id, handle := range set {
			if isDone(handle) {
				stale = append(stale, id)
			}
		}
	}
	r.mu.RUnlock()

	if len(stale) == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := lo.CountBy(stale, r.removeLocked)
	return removed
}

func (r *Registry) removeLocked(id string) bool {
	userID, ok := r.owners[id]
	if !ok {
		return false
	}
	delete(r.owners, id)

	if set, ok := r.byUser[userID]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(r.byUser, userID)
		}
	}
	return true
}

func isDone(handle Handle) bool {
	select {
	case <-handle.Done():
		return true
	default:
		return false
	}
}
