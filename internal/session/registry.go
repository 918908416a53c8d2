// Package session owns the per-patient fact-store handles. The registry is
// bounded: inactive sessions are evicted by TTL or capacity instead of
// growing for the life of the process.
package session

import (
	"sync"
	"time"

	"github.com/clinai/neurodiag/internal/domain"
	"github.com/clinai/neurodiag/internal/engine"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

const (
	DefaultCapacity = 1024
	DefaultTTL      = 30 * time.Minute

	patientPrefix = "Patient_"
)

// Handle is the lockable owner of one patient's fact store and dialogue
// phase. All reset+assert+infer sequences for a session run under its mutex,
// so concurrent requests for the same session cannot interleave a reset with
// another request's assertions.
type Handle struct {
	mu sync.Mutex

	Patient domain.Symbol
	Store   *engine.FactStore
	Phase   domain.DialoguePhase
}

// Lock serializes access to the handle's store and phase. Callers must not
// issue blocking collaborator calls while holding it.
func (h *Handle) Lock() { h.mu.Lock() }

// Unlock releases the handle.
func (h *Handle) Unlock() { h.mu.Unlock() }

// Registry hands out one handle per session id, creating fact stores lazily
// on first access.
type Registry struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, *Handle]
	rules  *domain.RuleBase
	logger *zap.Logger
}

func NewRegistry(rules *domain.RuleBase, capacity int, ttl time.Duration, logger *zap.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	r := &Registry{rules: rules, logger: logger}
	r.cache = expirable.NewLRU(capacity, func(sessionID string, _ *Handle) {
		logger.Info("session evicted", zap.String("session_id", sessionID))
	}, ttl)
	return r
}

// Acquire returns the handle for a session, creating it on first access.
// The session id must fit the symbolic alphabet since it becomes part of the
// patient identifier embedded in inference queries.
func (r *Registry) Acquire(sessionID string) (*Handle, error) {
	patient, err := domain.NewSymbol(patientPrefix + sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.cache.Get(sessionID); ok {
		return h, nil
	}

	h := &Handle{
		Patient: patient,
		Store:   engine.NewFactStore(),
		Phase:   domain.PhaseCollectingEvidence,
	}
	for _, seed := range r.rules.SeedFacts {
		seed.Subject = patient
		h.Store.Assert(seed)
	}
	r.cache.Add(sessionID, h)
	r.logger.Debug("session created", zap.String("session_id", sessionID))
	return h, nil
}

// Evict drops a session immediately. Idempotent.
func (r *Registry) Evict(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Remove(sessionID)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache.Len()
}
