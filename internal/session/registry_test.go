package session

import (
	"testing"
	"time"

	"github.com/clinai/neurodiag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRules() *domain.RuleBase {
	return &domain.RuleBase{
		SeedFacts: []domain.Fact{
			{
				Predicate: domain.PredicateRiskFactor,
				Object:    "GeneralPopulation",
				TV:        domain.TruthValue{Strength: 1, Confidence: 0.5},
			},
		},
	}
}

func TestAcquireCreatesAndReuses(t *testing.T) {
	r := NewRegistry(testRules(), 10, time.Minute, zap.NewNop())

	h1, err := r.Acquire("abc123")
	require.NoError(t, err)
	assert.Equal(t, domain.Symbol("Patient_abc123"), h1.Patient)
	assert.Equal(t, domain.PhaseCollectingEvidence, h1.Phase)

	h2, err := r.Acquire("abc123")
	require.NoError(t, err)
	assert.Same(t, h1, h2, "same session must return the same handle")
	assert.Equal(t, 1, r.Len())
}

func TestAcquireSeedsFacts(t *testing.T) {
	r := NewRegistry(testRules(), 10, time.Minute, zap.NewNop())

	h, err := r.Acquire("abc123")
	require.NoError(t, err)

	seeded, ok := h.Store.Get(domain.PredicateRiskFactor, h.Patient, "GeneralPopulation")
	require.True(t, ok, "seed fact must be asserted into the new session store")
	assert.Equal(t, h.Patient, seeded.Subject)
}

func TestAcquireRejectsInvalidSessionID(t *testing.T) {
	r := NewRegistry(testRules(), 10, time.Minute, zap.NewNop())

	_, err := r.Acquire("no spaces allowed")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
}

func TestCapacityEviction(t *testing.T) {
	r := NewRegistry(testRules(), 2, time.Minute, zap.NewNop())

	for _, id := range []string{"s1", "s2", "s3"} {
		_, err := r.Acquire(id)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, r.Len(), "capacity bound must hold")

	// The least recently used session was dropped; re-acquiring it yields a
	// fresh store.
	h1, err := r.Acquire("s1")
	require.NoError(t, err)
	h1.Lock()
	defer h1.Unlock()
	assert.Equal(t, len(testRules().SeedFacts), h1.Store.Len(),
		"re-acquired evicted session should start from seed facts only")
}

func TestEvict(t *testing.T) {
	r := NewRegistry(testRules(), 10, time.Minute, zap.NewNop())

	h, err := r.Acquire("s1")
	require.NoError(t, err)
	h.Lock()
	h.Store.Assert(domain.Fact{
		Predicate: domain.PredicateHasSymptom,
		Subject:   h.Patient,
		Object:    "Fever",
		TV:        domain.TruthValue{Strength: 0.5, Confidence: 0.5},
	})
	h.Unlock()

	r.Evict("s1")
	r.Evict("s1") // idempotent
	assert.Equal(t, 0, r.Len())

	fresh, err := r.Acquire("s1")
	require.NoError(t, err)
	_, ok := fresh.Store.Get(domain.PredicateHasSymptom, fresh.Patient, "Fever")
	assert.False(t, ok, "evicted session state must not leak into the fresh handle")
}
