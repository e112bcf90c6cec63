package controller

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/maintenance-tracker/internal/db"
	"github.com/ukydev/maintenance-tracker/internal/logging"
	"github.com/ukydev/maintenance-tracker/internal/notify"
)

// Registry keeps one controller per signed-in user.
type Registry struct {
	vehicles db.VehicleCollection
	records  db.ServiceRecordCollection
	opts     []Option

	mu          sync.Mutex
	controllers map[string]*registryEntry
}

// registryEntry loads its controller once; concurrent first callers wait for
// that load.
type registryEntry struct {
	ctrl    *Controller
	once    sync.Once
	loadErr error
}

// NewRegistry creates a registry whose controllers share the given store,
// notifier and logger. notifier may be nil.
func NewRegistry(vehicles db.VehicleCollection, records db.ServiceRecordCollection, notifier notify.Notifier, logger *log.Entry, opts ...Option) *Registry {
	if logger == nil {
		logger = logging.Discard()
	}
	base := []Option{WithLogger(logger)}
	if notifier != nil {
		base = append(base, WithNotifier(notifier))
	}
	return &Registry{
		vehicles:    vehicles,
		records:     records,
		opts:        append(base, opts...),
		controllers: make(map[string]*registryEntry),
	}
}

// Get returns the controller for session, creating it on first use. A new
// controller is loaded before it is returned, and callers racing the first
// load wait for it. A failed load leaves the controller in the error state,
// returns the error alongside it and drops it from the registry so the next
// call starts over.
func (r *Registry) Get(ctx context.Context, session Session) (*Controller, error) {
	if !session.SignedIn || session.UserID == "" {
		return nil, ErrSignedOut
	}

	r.mu.Lock()
	e, ok := r.controllers[session.UserID]
	if !ok {
		e = &registryEntry{ctrl: New(session, r.vehicles, r.records, r.opts...)}
		r.controllers[session.UserID] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		if _, err := e.ctrl.Load(ctx); err != nil {
			e.loadErr = err
			r.mu.Lock()
			if r.controllers[session.UserID] == e {
				delete(r.controllers, session.UserID)
			}
			r.mu.Unlock()
		}
	})
	return e.ctrl, e.loadErr
}

// Len returns the number of controllers held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}
