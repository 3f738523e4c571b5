package domain

import (
	"fmt"
	"strings"
)

// GarageKey is the comparable identity of a garage.
type GarageKey string

// Garage is a location where cars park.
// Two Garage values with the same ID represent the same garage, even if they
// were loaded separately.
type Garage struct {
	// ID is the unique identifier for this garage.
	ID string

	// Name is the display name of the garage.
	Name string

	// Address is the postal address of the garage.
	Address string
}

// NewGarage creates a garage after validating its fields.
func NewGarage(id, name, address string) (Garage, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Garage{}, NewValidationError("id", "cannot be empty")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return Garage{}, NewValidationError("name", "cannot be empty")
	}

	return Garage{
		ID:      id,
		Name:    name,
		Address: strings.TrimSpace(address),
	}, nil
}

// Key returns the identity key used for equality and set membership.
func (g Garage) Key() GarageKey {
	return GarageKey(g.ID)
}

// Equal reports whether g and other are the same garage.
func (g Garage) Equal(other Garage) bool {
	return g.Key() == other.Key()
}

// String implements fmt.Stringer.
func (g Garage) String() string {
	return fmt.Sprintf("Garage(name=%s, address=%s)", g.Name, g.Address)
}

// GarageSet is a set of garages keyed by Garage.Key.
// Iteration order is not part of its contract.
type GarageSet struct {
	index   map[GarageKey]int
	garages []Garage
}

// NewGarageSet creates a set containing the given garages.
func NewGarageSet(garages ...Garage) *GarageSet {
	s := &GarageSet{index: make(map[GarageKey]int, len(garages))}
	for _, g := range garages {
		s.Add(g)
	}

	return s
}

// Add inserts g unless a garage with the same key is already present.
// Reports whether the set changed.
func (s *GarageSet) Add(g Garage) bool {
	if s.index == nil {
		s.index = make(map[GarageKey]int)
	}

	if _, ok := s.index[g.Key()]; ok {
		return false
	}

	s.index[g.Key()] = len(s.garages)
	s.garages = append(s.garages, g)

	return true
}

// Contains reports whether a garage with the same key is in the set.
func (s *GarageSet) Contains(g Garage) bool {
	_, ok := s.index[g.Key()]
	return ok
}

// Len returns the number of distinct garages.
func (s *GarageSet) Len() int {
	return len(s.garages)
}

// Garages returns the members of the set.
func (s *GarageSet) Garages() []Garage {
	out := make([]Garage, len(s.garages))
	copy(out, s.garages)

	return out
}
