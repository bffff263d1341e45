// Package market holds the opportunity store, brokerage strategies, the rate
// optimizer, the scheduled market monitor, and market reporting.
package market

import (
	"fmt"
	"sort"
	"sync"

	"github.com/haulcore/dispatch-engine/engine/domain"
)

// Store is the engine's only concurrently shared mutable state. Records are
// stored by value and replaced wholesale on update (copy-on-write), so a
// reader sees either the pre-update or post-update record, never one with
// rate changed but rate-per-mile stale.
type Store struct {
	mu   sync.RWMutex
	recs map[string]domain.LoadOpportunity
}

// NewStore creates an empty opportunity store.
func NewStore() *Store {
	return &Store{recs: make(map[string]domain.LoadOpportunity)}
}

// Put validates, normalizes, and inserts (or replaces) an opportunity.
// Malformed opportunities never enter the store.
func (s *Store) Put(o domain.LoadOpportunity) error {
	if err := domain.ValidateOpportunity(o); err != nil {
		return fmt.Errorf("store put: %w", err)
	}
	o = domain.Normalize(o)
	s.mu.Lock()
	s.recs[o.ID] = o
	s.mu.Unlock()
	return nil
}

// Remove deletes an opportunity (expiry, withdrawal, or acceptance).
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[id]; !ok {
		return false
	}
	delete(s.recs, id)
	return true
}

// Get returns a copy of one opportunity.
func (s *Store) Get(id string) (domain.LoadOpportunity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.recs[id]
	return o, ok
}

// Len returns the number of open opportunities.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

// IDs returns all opportunity IDs in a stable order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.recs))
	for id := range s.recs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Update applies fn to a single record under the write lock. Derived fields
// are recomputed before the record is published, so the mutation of a record
// is atomic with respect to readers. Missing IDs are a no-op.
func (s *Store) Update(id string, fn func(*domain.LoadOpportunity)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.recs[id]
	if !ok {
		return false
	}
	fn(&o)
	o.RecalcDerived()
	s.recs[id] = o
	return true
}

// Filter narrows a query over the store. Zero-valued fields match anything.
type Filter struct {
	VehicleClass domain.VehicleClass
	Urgency      domain.UrgencyTier
	Equipment    domain.EquipmentType
}

func (f Filter) matches(o domain.LoadOpportunity) bool {
	if f.VehicleClass != "" && o.VehicleClass != f.VehicleClass {
		return false
	}
	if f.Urgency != "" && o.Urgency != f.Urgency {
		return false
	}
	if f.Equipment != "" && o.Equipment != f.Equipment {
		return false
	}
	return true
}

// List returns copies of all opportunities matching the filter, ordered by ID.
func (s *Store) List(f Filter) []domain.LoadOpportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.LoadOpportunity, 0, len(s.recs))
	for _, o := range s.recs {
		if f.matches(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns a consistent copy of every record, taken under a single
// read lock so category counts computed from it sum correctly.
func (s *Store) Snapshot() []domain.LoadOpportunity {
	return s.List(Filter{})
}
