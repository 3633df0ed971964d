// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.15
//

// Implements synthetic test-data generation: a reference pendulum model and
// marker trajectories sampled from known poses with optional Gaussian noise.

package goik

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NewPendulumWithMarkers builds a single-hinge pendulum with three markers
// on the bob. The hinge is 1 m above the origin and rotates around z; the
// bob frame sits at the origin when the hinge angle is zero. Markers are at
// the bob origin, 1 cm right and 2 cm left of it.
func NewPendulumWithMarkers() *Model {
	m := NewModel("pendulum")
	m.AddJoint("theta", Vec3{Y: 1}, Vec3{Z: 1})
	m.AddMarker("m0", "theta", Vec3{Y: -1})
	m.AddMarker("mR", "theta", Vec3{X: 0.01, Y: -1})
	m.AddMarker("mL", "theta", Vec3{X: -0.02, Y: -1})
	return m
}

// GenerateMarkerData evaluates the model's markers along a pose trajectory
// and returns them as a marker table. When noiseRadius > 0 each sample is
// perturbed by noiseRadius-scaled standard Gaussian noise drawn from src;
// with fixed=true a single offset, drawn once, perturbs every sample, so
// the noise is constant across frames. src must be supplied whenever noise
// is requested so that data generation stays reproducible.
func GenerateMarkerData(m *Model, states []*State, noiseRadius float64, fixed bool, src rand.Source) (*MarkerTable, error) {

	if len(states) == 0 {
		return nil, fmt.Errorf("no states to sample")
	}
	if noiseRadius < 0 {
		return nil, &InvalidArgumentError{Arg: "noiseRadius", Reason: fmt.Sprintf("must be >= 0, got %g", noiseRadius)}
	}
	if noiseRadius > 0 && src == nil {
		return nil, &InvalidArgumentError{Arg: "src", Reason: "a random source is required when noiseRadius > 0"}
	}

	var noise distuv.Normal
	if noiseRadius > 0 {
		noise = distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	}
	drawOffset := func() Vec3 {
		return Vec3{X: noise.Rand(), Y: noise.Rand(), Z: noise.Rand()}.Scale(noiseRadius)
	}

	var offset Vec3
	if noiseRadius > 0 && fixed {
		offset = drawOffset()
	}

	table := NewMarkerTable(m.MarkerNames())
	dat := make([]Vec3, len(m.markers))
	for _, s := range states {
		if len(s.Q) != m.NumCoordinates() {
			return nil, fmt.Errorf("state has %d coordinates, model has %d", len(s.Q), m.NumCoordinates())
		}
		fr := m.frames(s.Q)
		for i, mk := range m.markers {
			dat[i] = m.markerWorld(mk, fr)
			if noiseRadius > 0 {
				if !fixed {
					offset = drawOffset()
				}
				dat[i] = dat[i].Add(offset)
			}
		}
		if err := table.AppendFrame(s.Time, dat); err != nil {
			return nil, fmt.Errorf("AppendFrame() failed, err=%v", err)
		}
	}

	return table, nil
}
