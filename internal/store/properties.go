package store

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/propex/propex/internal/domain"
)

// Properties is the thread-safe in-memory property catalog, keyed by
// property_id. The catalog itself is read-only after seeding; only the
// last traded price mutates, and only through trade settlement.
type Properties struct {
	mu   sync.RWMutex
	byID map[int64]*domain.Property
}

// NewProperties creates an empty catalog.
func NewProperties() *Properties {
	return &Properties{
		byID: make(map[int64]*domain.Property),
	}
}

// Add installs a property in the catalog, replacing any previous entry
// with the same id.
func (s *Properties) Add(p domain.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := p
	s.byID[p.PropertyID] = &cp
}

// LoadFile seeds the catalog from a JSON file holding an array of
// properties. Returns the number of properties loaded.
func (s *Properties) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read properties file: %w", err)
	}
	var props []domain.Property
	if err := json.Unmarshal(data, &props); err != nil {
		return 0, fmt.Errorf("parse properties file: %w", err)
	}
	for _, p := range props {
		s.Add(p)
	}
	return len(props), nil
}

// Get returns a snapshot of the property. It returns
// domain.ErrPropertyNotFound if the id is unknown.
func (s *Properties) Get(id int64) (domain.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return *p, nil
}

// Exists returns true if the property id is known.
func (s *Properties) Exists(id int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[id]
	return ok
}

// List returns snapshots of all properties, ordered by id.
func (s *Properties) List() []domain.Property {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Property, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PropertyID < out[j].PropertyID })
	return out
}

// SetLTP records a new last traded price. Called only by trade settlement.
func (s *Properties) SetLTP(id int64, price decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.byID[id]; ok {
		p.LTP = price
	}
}

// LTP returns the property's last traded price, or zero for an unknown
// property or one that has never traded.
func (s *Properties) LTP(id int64) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.byID[id]; ok {
		return p.LTP
	}
	return decimal.Zero
}
