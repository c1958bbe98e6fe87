// Package scaling derives real-world scale factors for photogrammetry
// models from point-pair measurements: pick two vertices, supply the
// real-world distance between them, average the per-pair ratios.
package scaling

import (
	"errors"
	"fmt"

	"github.com/exanvub/photogrammetry/pkg/geometry"
	"github.com/exanvub/photogrammetry/pkg/mesh"
)

var (
	// ErrNoActivePair means a point was placed with no pick in progress.
	ErrNoActivePair = errors.New("scaling: no measurement pick in progress")
	// ErrPickInProgress means a second pick was started before the
	// first finished.
	ErrPickInProgress = errors.New("scaling: another measurement pick is in progress")
	// ErrIndexOutOfRange means the pair index does not exist.
	ErrIndexOutOfRange = errors.New("scaling: measurement index out of range")
)

// PairState describes how far along a measurement pair is
type PairState int

const (
	StateEmpty    PairState = iota // no endpoints yet
	StatePartial                   // one endpoint placed
	StateComplete                  // both endpoints placed, model distance known
	StateMeasured                  // real-world distance supplied
)

func (s PairState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePartial:
		return "partial"
	case StateComplete:
		return "complete"
	case StateMeasured:
		return "measured"
	default:
		return "unknown"
	}
}

// Endpoint identifies one picked vertex
type Endpoint struct {
	Mesh        *mesh.Mesh
	VertexIndex int
}

// Pair is one point-pair measurement: two picked endpoints, the model
// distance between them, and the user-supplied real-world distance.
type Pair struct {
	Label         string
	A, B          Endpoint
	PointCount    int     // endpoints placed so far, 0..2
	ModelDistance float64 // world-space distance between A and B
	RealDistance  float64 // real-world distance, 0 until supplied
}

// State reports the pair's lifecycle state
func (p *Pair) State() PairState {
	switch {
	case p.PointCount == 0:
		return StateEmpty
	case p.PointCount == 1:
		return StatePartial
	case p.RealDistance > 0:
		return StateMeasured
	default:
		return StateComplete
	}
}

// recompute refreshes the model distance from current world positions
func (p *Pair) recompute() error {
	if p.PointCount < 2 {
		return nil
	}
	a, err := p.A.Mesh.WorldVertex(p.A.VertexIndex)
	if err != nil {
		return fmt.Errorf("measurement %q endpoint A: %w", p.Label, err)
	}
	b, err := p.B.Mesh.WorldVertex(p.B.VertexIndex)
	if err != nil {
		return fmt.Errorf("measurement %q endpoint B: %w", p.Label, err)
	}
	p.ModelDistance = geometry.Distance(a, b)
	return nil
}

// snapshot captures a pair's full value for re-pick cancellation
type snapshot struct {
	index int
	pair  Pair
}

// Store holds the ordered measurement pair collection for one scene.
// At most one pair is ever in progress; it is always the entry the
// activeIdx points at, so cancel and restore know exactly where to
// act. Not safe for concurrent use.
type Store struct {
	pairs     []*Pair
	activeIdx int       // index of the in-progress pair, -1 when none
	saved     *snapshot // pre-re-pick state, nil for fresh picks
}

// NewStore creates an empty measurement store
func NewStore() *Store {
	return &Store{activeIdx: -1}
}

// Pairs returns the current pair collection in order
func (s *Store) Pairs() []*Pair {
	return s.pairs
}

// Len returns the number of pairs, including an in-progress one
func (s *Store) Len() int {
	return len(s.pairs)
}

// InProgress returns the pair currently being picked, if any
func (s *Store) InProgress() (*Pair, bool) {
	if s.activeIdx < 0 {
		return nil, false
	}
	return s.pairs[s.activeIdx], true
}

// Add appends a new empty pair and starts picking its points. An empty
// label picks the next positional default.
func (s *Store) Add(label string) (*Pair, error) {
	if s.activeIdx >= 0 {
		return nil, ErrPickInProgress
	}
	if label == "" {
		label = fmt.Sprintf("M%d", len(s.pairs)+1)
	}
	p := &Pair{Label: label}
	s.pairs = append(s.pairs, p)
	s.activeIdx = len(s.pairs) - 1
	s.saved = nil
	return p, nil
}

// RePick restarts point picking for an existing pair. The prior
// endpoints, model distance and real distance are snapshotted and come
// back verbatim if the re-pick is cancelled.
func (s *Store) RePick(index int) (*Pair, error) {
	if s.activeIdx >= 0 {
		return nil, ErrPickInProgress
	}
	if index < 0 || index >= len(s.pairs) {
		return nil, ErrIndexOutOfRange
	}

	p := s.pairs[index]
	s.saved = &snapshot{index: index, pair: *p}

	p.PointCount = 0
	p.A = Endpoint{}
	p.B = Endpoint{}
	p.ModelDistance = 0
	s.activeIdx = index
	return p, nil
}

// PlacePoint records a picked vertex for the in-progress pair. The
// first call fills endpoint A, the second fills endpoint B, computes
// the model distance and finishes the pick.
func (s *Store) PlacePoint(m *mesh.Mesh, vertexIndex int) (*Pair, error) {
	p, ok := s.InProgress()
	if !ok {
		return nil, ErrNoActivePair
	}

	switch p.PointCount {
	case 0:
		p.A = Endpoint{Mesh: m, VertexIndex: vertexIndex}
		p.PointCount = 1
	case 1:
		p.B = Endpoint{Mesh: m, VertexIndex: vertexIndex}
		p.PointCount = 2
		if err := p.recompute(); err != nil {
			p.B = Endpoint{}
			p.PointCount = 1
			return nil, err
		}
		s.activeIdx = -1
		s.saved = nil
	default:
		return nil, fmt.Errorf("scaling: pair %q already has both points", p.Label)
	}
	return p, nil
}

// Cancel abandons the in-progress pick. A fresh pair is discarded
// entirely; a re-pick restores the pair exactly as it was.
func (s *Store) Cancel() {
	if s.activeIdx < 0 {
		return
	}

	if s.saved != nil {
		restored := s.saved.pair
		*s.pairs[s.saved.index] = restored
		s.saved = nil
	} else {
		s.pairs = append(s.pairs[:s.activeIdx], s.pairs[s.activeIdx+1:]...)
	}
	s.activeIdx = -1
}

// Remove deletes a pair. Removing the in-progress pair cancels its
// pick as well.
func (s *Store) Remove(index int) error {
	if index < 0 || index >= len(s.pairs) {
		return ErrIndexOutOfRange
	}
	if index == s.activeIdx {
		s.activeIdx = -1
		s.saved = nil
	} else if index < s.activeIdx {
		s.activeIdx--
		if s.saved != nil {
			s.saved.index--
		}
	}
	s.pairs = append(s.pairs[:index], s.pairs[index+1:]...)
	return nil
}

// Clear removes every pair and any in-progress pick
func (s *Store) Clear() {
	s.pairs = nil
	s.activeIdx = -1
	s.saved = nil
}

// SetRealDistance supplies the real-world distance for a pair
func (s *Store) SetRealDistance(index int, distance float64) error {
	if index < 0 || index >= len(s.pairs) {
		return ErrIndexOutOfRange
	}
	if distance < 0 {
		return fmt.Errorf("scaling: real distance must not be negative, got %v", distance)
	}
	s.pairs[index].RealDistance = distance
	return nil
}

// Recalculate refreshes the model distance of every complete pair from
// the meshes' current transforms. Call it after anything that moves or
// scales a mesh.
func (s *Store) Recalculate() error {
	for _, p := range s.pairs {
		if err := p.recompute(); err != nil {
			return err
		}
	}
	return nil
}
