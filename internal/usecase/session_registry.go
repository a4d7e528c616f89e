package usecase

import (
	"context"
	"sync"
	"time"

	"siddhaka-portal/internal/data/repository"
	"siddhaka-portal/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const restoreTimeout = 30 * time.Second

// StoreFactory builds a fresh, unrestored store for a visitor.
type StoreFactory func(visitorID uuid.UUID) SessionStore

// Visitor is one browser: its session store and the booking workflows it has
// open, keyed by package name.
type Visitor struct {
	ID    uuid.UUID
	Store SessionStore

	metrics *metrics.BackendMetrics
	log     *zap.Logger

	restoreOnce sync.Once

	mu        sync.Mutex
	lastSeen  time.Time
	workflows map[string]*BookingWorkflow
}

// Workflow returns the open workflow for packageName, creating one when needed.
func (v *Visitor) Workflow(packageName, packageID string) *BookingWorkflow {
	v.mu.Lock()
	defer v.mu.Unlock()

	if w, ok := v.workflows[packageName]; ok {
		if packageID != "" {
			w.setPackageID(packageID)
		}
		return w
	}

	w := NewBookingWorkflow(v.Store, packageName, packageID, v.metrics, v.log)
	v.workflows[packageName] = w
	return w
}

// CloseWorkflow resets and forgets the workflow for packageName.
func (v *Visitor) CloseWorkflow(packageName string) {
	v.mu.Lock()
	w, ok := v.workflows[packageName]
	delete(v.workflows, packageName)
	v.mu.Unlock()

	if ok {
		w.Close()
	}
}

func (v *Visitor) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *Visitor) idleSince(now time.Time) time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return now.Sub(v.lastSeen)
}

type SessionRegistry interface {
	Get(ctx context.Context, visitorID uuid.UUID) *Visitor
	Forget(visitorID uuid.UUID)
	Len() int
	Evict(now time.Time) int
	Run(ctx context.Context)
}

type sessionRegistry struct {
	newStore      StoreFactory
	credentials   repository.CredentialRepository
	metrics       *metrics.BackendMetrics
	idleTimeout   time.Duration
	credentialTTL time.Duration
	log           *zap.Logger
	now           func() time.Time

	mu       sync.Mutex
	visitors map[uuid.UUID]*Visitor
}

func NewSessionRegistry(newStore StoreFactory, credentials repository.CredentialRepository, m *metrics.BackendMetrics, idleTimeout, credentialTTL time.Duration, log *zap.Logger) SessionRegistry {
	return &sessionRegistry{
		newStore:      newStore,
		credentials:   credentials,
		metrics:       m,
		idleTimeout:   idleTimeout,
		credentialTTL: credentialTTL,
		log:           log.With(zap.String("service", "registry")),
		now:           time.Now,
		visitors:      make(map[uuid.UUID]*Visitor),
	}
}

// Get returns the visitor, creating its store on first use. The first caller
// restores the persisted credential; concurrent callers wait for it.
func (r *sessionRegistry) Get(ctx context.Context, visitorID uuid.UUID) *Visitor {
	r.mu.Lock()
	v, ok := r.visitors[visitorID]
	if !ok {
		v = &Visitor{
			ID:        visitorID,
			Store:     r.newStore(visitorID),
			metrics:   r.metrics,
			log:       r.log,
			workflows: make(map[string]*BookingWorkflow),
		}
		r.visitors[visitorID] = v
	}
	r.mu.Unlock()

	v.touch(r.now())
	v.restoreOnce.Do(func() {
		restoreCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), restoreTimeout)
		defer cancel()
		if err := v.Store.Restore(restoreCtx); err != nil {
			r.log.Warn("Failed to restore session", zap.String("visitor_id", visitorID.String()), zap.Error(err))
		}
	})
	return v
}

func (r *sessionRegistry) Forget(visitorID uuid.UUID) {
	r.mu.Lock()
	delete(r.visitors, visitorID)
	r.mu.Unlock()
}

func (r *sessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.visitors)
}

// Evict drops visitors idle for longer than the idle timeout. Their persisted
// credential stays, so the next request restores them.
func (r *sessionRegistry) Evict(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, v := range r.visitors {
		if v.idleSince(now) > r.idleTimeout {
			delete(r.visitors, id)
			evicted++
		}
	}
	return evicted
}

// Run evicts idle visitors every minute and purges stale credentials every
// hour until ctx is done.
func (r *sessionRegistry) Run(ctx context.Context) {
	evictTicker := time.NewTicker(time.Minute)
	defer evictTicker.Stop()
	cleanTicker := time.NewTicker(time.Hour)
	defer cleanTicker.Stop()

	r.log.Info("Session registry started", zap.Duration("idle_timeout", r.idleTimeout))

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Session registry stopped")
			return
		case <-evictTicker.C:
			if n := r.Evict(r.now()); n > 0 {
				r.log.Debug("Evicted idle sessions", zap.Int("count", n))
			}
		case <-cleanTicker.C:
			if err := r.credentials.CleanStale(ctx, r.credentialTTL); err != nil {
				r.log.Warn("Failed to clean stale credentials", zap.Error(err))
			}
		}
	}
}
