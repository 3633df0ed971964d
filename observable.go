// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.10
//

package goik

import (
	"gonum.org/v1/gonum/mat"
)

// observable is one named, weighted quantity the solver tries to match: a
// marker position (three residual rows) or a coordinate value (one row).
// Both variants expose target lookup, prediction and Jacobian contribution
// uniformly, so the solve loop never branches on the concrete kind.
type observable interface {
	name() string
	// dim is the number of residual rows the observable contributes.
	dim() int
	// target returns the reference values at time t and whether the
	// observable is observed at that time.
	target(t float64) ([]float64, bool, error)
	weight() float64
	setWeight(w float64)
	// predict returns the model-predicted values for the pose in s. fr must
	// be the frames evaluated for the same pose.
	predict(m *Model, s *State, fr []frame) []float64
	// jacobianInto writes the observable's Jacobian rows starting at the
	// given row of J (one column per free coordinate).
	jacobianInto(m *Model, s *State, fr []frame, J *mat.Dense, row int)
}

// markerObservable matches one model marker against a MarkersReference
// column of the same name.
type markerObservable struct {
	mk  Marker
	ref *MarkersReference
	w   float64
}

func (p *markerObservable) name() string { return p.mk.Name }

func (p *markerObservable) dim() int { return 3 }

func (p *markerObservable) target(t float64) ([]float64, bool, error) {
	v, active, err := p.ref.ValueAt(p.mk.Name, t)
	if err != nil {
		return nil, false, err
	}
	return []float64{v.X, v.Y, v.Z}, active, nil
}

func (p *markerObservable) weight() float64 { return p.w }

func (p *markerObservable) setWeight(w float64) { p.w = w }

func (p *markerObservable) predict(m *Model, s *State, fr []frame) []float64 {
	v := m.markerWorld(p.mk, fr)
	return []float64{v.X, v.Y, v.Z}
}

func (p *markerObservable) jacobianInto(m *Model, s *State, fr []frame, J *mat.Dense, row int) {
	pos := m.markerWorld(p.mk, fr)
	for j, col := range m.markerJacobian(p.mk, fr, pos) {
		J.Set(row, j, col.X)
		J.Set(row+1, j, col.Y)
		J.Set(row+2, j, col.Z)
	}
}

// coordObservable matches one generalized coordinate against a
// CoordinateReference target.
type coordObservable struct {
	idx int // Coordinate index in the model
	ref *CoordinateReference
	w   float64
}

func (p *coordObservable) name() string { return p.ref.Name }

func (p *coordObservable) dim() int { return 1 }

func (p *coordObservable) target(t float64) ([]float64, bool, error) {
	return []float64{p.ref.Value(t)}, true, nil
}

func (p *coordObservable) weight() float64 { return p.w }

func (p *coordObservable) setWeight(w float64) { p.w = w }

func (p *coordObservable) predict(m *Model, s *State, fr []frame) []float64 {
	return []float64{s.Q[p.idx]}
}

func (p *coordObservable) jacobianInto(m *Model, s *State, fr []frame, J *mat.Dense, row int) {
	J.Set(row, p.idx, 1)
}
