// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.10
//

package goik

import (
	"fmt"
)

//-------------------------------------------------------------------
// MarkersReference
//-------------------------------------------------------------------

// MarkersReference supplies marker target positions and per-marker weights
// to a solver. It takes sole ownership of the marker table passed at
// construction; the caller must not retain or mutate the table afterwards.
type MarkersReference struct {
	table         *MarkerTable
	weights       map[string]float64
	defaultWeight float64
}

// NewMarkersReference creates a reference owning the given table. Markers
// without a registered weight use the default weight (DEFAULT_WEIGHT until
// SetDefaultWeight is called).
func NewMarkersReference(table *MarkerTable) *MarkersReference {
	return &MarkersReference{
		table:         table,
		weights:       map[string]float64{},
		defaultWeight: DEFAULT_WEIGHT,
	}
}

// Names returns the marker names in table column order.
func (p *MarkersReference) Names() []string {
	names := make([]string, len(p.table.Names))
	copy(names, p.table.Names)
	return names
}

// NumFrames returns the number of frames in the owned table.
func (p *MarkersReference) NumFrames() int {
	return p.table.NumFrames()
}

// SetDefaultWeight sets the weight used for markers without an explicit
// weight entry.
func (p *MarkersReference) SetDefaultWeight(w float64) error {
	if w < 0 {
		return &InvalidArgumentError{Arg: "weight", Reason: fmt.Sprintf("must be >= 0, got %g", w)}
	}
	p.defaultWeight = w
	return nil
}

// SetWeight registers the weight of one named marker.
func (p *MarkersReference) SetWeight(name string, w float64) error {
	if _, ok := p.table.ColumnIndex(name); !ok {
		return fmt.Errorf("marker %q does not exist in the reference data", name)
	}
	if w < 0 {
		return &InvalidArgumentError{Arg: "weight", Reason: fmt.Sprintf("must be >= 0, got %g", w)}
	}
	p.weights[name] = w
	return nil
}

// Weight returns the current weight of the named marker.
func (p *MarkersReference) Weight(name string) float64 {
	if w, ok := p.weights[name]; ok {
		return w
	}
	return p.defaultWeight
}

// Weights returns the weights of all markers in table column order.
func (p *MarkersReference) Weights() []float64 {
	w := make([]float64, len(p.table.Names))
	for i, name := range p.table.Names {
		w[i] = p.Weight(name)
	}
	return w
}

// ValueAt returns the target position of the named marker at the frame
// nearest to time t, and whether the marker is observed at that frame. An
// all-NaN sample marks the marker absent.
func (p *MarkersReference) ValueAt(name string, t float64) (Vec3, bool, error) {
	i, ok := p.table.ColumnIndex(name)
	if !ok {
		return Vec3{}, false, fmt.Errorf("marker %q does not exist in the reference data", name)
	}
	f, err := p.table.GetNearest(t)
	if err != nil {
		return Vec3{}, false, fmt.Errorf("GetNearest() failed, err=%v", err)
	}
	v := f.Dat[i]
	return v, !v.IsNaN(), nil
}

//-------------------------------------------------------------------
// CoordinateReference
//-------------------------------------------------------------------

// CoordinateReference supplies a time-varying target value for one named
// generalized coordinate.
type CoordinateReference struct {
	Name   string                  // Coordinate name in the model
	Value  func(t float64) float64 // Target value as a function of time
	Weight float64                 // Non-negative weight
}

// NewCoordinateReference creates a coordinate reference with weight 1.
func NewCoordinateReference(name string, value func(t float64) float64) *CoordinateReference {
	return &CoordinateReference{
		Name:   name,
		Value:  value,
		Weight: 1.0,
	}
}

// Constant returns a value function that ignores time.
func Constant(v float64) func(t float64) float64 {
	return func(float64) float64 { return v }
}
