// Package store keeps the curves a user has committed for comparison during
// one interactive session.
package store

import (
	"github.com/google/uuid"
	"github.com/iwvelando/compound-curves/internal/curve"
	"github.com/iwvelando/compound-curves/pkg/constants"
)

// Curve is a committed curve. It is never mutated after creation.
type Curve struct {
	ID     string        `json:"id" yaml:"id"`
	Label  string        `json:"label" yaml:"label"`
	Points []curve.Point `json:"points" yaml:"points"`
	Color  string        `json:"color" yaml:"color"`
}

// Store maps opaque ids to curves, iterated in insertion order.
// A Store is not safe for concurrent use; callers serialize access per session.
type Store struct {
	palette []string
	order   []string
	curves  map[string]Curve
}

// New creates an empty store cycling through palette. An empty palette
// falls back to constants.DefaultPalette.
func New(palette []string) *Store {
	if len(palette) == 0 {
		palette = constants.DefaultPalette
	}
	return &Store{
		palette: append([]string(nil), palette...),
		curves:  make(map[string]Curve),
	}
}

// Add stores a copy of points under a fresh id and returns the id. The k-th
// curve since the last Clear gets palette[k mod len(palette)].
func (s *Store) Add(label string, points []curve.Point) string {
	id := uuid.NewString()
	for _, exists := s.curves[id]; exists; _, exists = s.curves[id] {
		id = uuid.NewString()
	}

	s.curves[id] = Curve{
		ID:     id,
		Label:  label,
		Points: append([]curve.Point(nil), points...),
		Color:  s.palette[len(s.order)%len(s.palette)],
	}
	s.order = append(s.order, id)
	return id
}

// Clear removes every curve. Color rotation restarts at palette[0].
func (s *Store) Clear() {
	s.order = nil
	s.curves = make(map[string]Curve)
}

// All returns a snapshot of the stored curves in insertion order.
func (s *Store) All() []Curve {
	all := make([]Curve, 0, len(s.order))
	for _, id := range s.order {
		c := s.curves[id]
		c.Points = append([]curve.Point(nil), c.Points...)
		all = append(all, c)
	}
	return all
}

// Len reports the number of stored curves.
func (s *Store) Len() int {
	return len(s.order)
}

// Palette returns a copy of the palette in rotation order.
func (s *Store) Palette() []string {
	return append([]string(nil), s.palette...)
}

// NextColor is the color the next Add will assign.
func (s *Store) NextColor() string {
	return s.palette[len(s.order)%len(s.palette)]
}
