// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.20
//

package goik

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoLinkArm builds a planar two-link arm with unit link lengths and a tip
// marker: tip = (cos a + cos(a+b), sin a + sin(a+b), 0).
func twoLinkArm(t *testing.T) *Model {
	t.Helper()
	m := NewModel("arm")
	require.NoError(t, m.AddJoint("shoulder", Vec3{}, Vec3{Z: 1}))
	require.NoError(t, m.AddJoint("elbow", Vec3{X: 1}, Vec3{Z: 1}))
	require.NoError(t, m.AddMarker("tip", "elbow", Vec3{X: 1}))
	require.NoError(t, m.AddMarker("mid", "shoulder", Vec3{X: 1}))
	return m
}

func TestPendulumForwardKinematics(t *testing.T) {
	m := NewPendulumWithMarkers()
	s := NewState(m.NumCoordinates())

	// Hinge angle zero: the bob sits at the origin
	for name, want := range map[string]Vec3{
		"m0": {},
		"mR": {X: 0.01},
		"mL": {X: -0.02},
	} {
		got, err := m.PredictMarker(name, s)
		require.NoError(t, err)
		assert.InDelta(t, want.X, got.X, 1e-12, name)
		assert.InDelta(t, want.Y, got.Y, 1e-12, name)
		assert.InDelta(t, want.Z, got.Z, 1e-12, name)
	}

	// Quarter turn: the bob swings to (1, 1, 0)
	s.Q[0] = PI / 2
	got, err := m.PredictMarker("m0", s)
	require.NoError(t, err)
	assert.InDelta(t, 1, got.X, 1e-12)
	assert.InDelta(t, 1, got.Y, 1e-12)
	assert.InDelta(t, 0, got.Z, 1e-12)
}

func TestTwoLinkForwardKinematics(t *testing.T) {
	m := twoLinkArm(t)
	s := NewState(m.NumCoordinates())
	a := ToRad(30)
	b := ToRad(45)
	s.Q[0] = a
	s.Q[1] = b

	tip, err := m.PredictMarker("tip", s)
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(a)+math.Cos(a+b), tip.X, 1e-12)
	assert.InDelta(t, math.Sin(a)+math.Sin(a+b), tip.Y, 1e-12)
	assert.InDelta(t, 0, tip.Z, 1e-12)

	mid, err := m.PredictMarker("mid", s)
	require.NoError(t, err)
	assert.InDelta(t, math.Cos(a), mid.X, 1e-12)
	assert.InDelta(t, math.Sin(a), mid.Y, 1e-12)
}

// The analytic Jacobian must match central finite differences.
func TestMarkerJacobianMatchesFiniteDifference(t *testing.T) {
	m := twoLinkArm(t)
	names := m.MarkerNames()
	s := NewState(m.NumCoordinates())
	s.Q[0] = 0.7
	s.Q[1] = -0.4

	J, err := m.MarkerJacobian(names, s)
	require.NoError(t, err)

	h := 1e-6
	for j := 0; j < m.NumCoordinates(); j++ {
		q0 := s.Q[j]
		for i, name := range names {
			s.Q[j] = q0 + h
			hi, err := m.PredictMarker(name, s)
			require.NoError(t, err)
			s.Q[j] = q0 - h
			lo, err := m.PredictMarker(name, s)
			require.NoError(t, err)
			s.Q[j] = q0

			d := hi.Sub(lo).Scale(1 / (2 * h))
			assert.InDelta(t, d.X, J.At(3*i, j), 1e-6)
			assert.InDelta(t, d.Y, J.At(3*i+1, j), 1e-6)
			assert.InDelta(t, d.Z, J.At(3*i+2, j), 1e-6)
		}
	}
}

func TestModelValidation(t *testing.T) {
	m := NewModel("test")
	require.NoError(t, m.AddJoint("j0", Vec3{}, Vec3{Z: 1}))

	assert.Error(t, m.AddJoint("j0", Vec3{}, Vec3{Z: 1}), "duplicate coordinate name")
	assert.Error(t, m.AddJoint("j1", Vec3{}, Vec3{}), "zero rotation axis")

	require.NoError(t, m.AddMarker("p", "j0", Vec3{X: 1}))
	assert.Error(t, m.AddMarker("p", "j0", Vec3{}), "duplicate marker name")
	assert.Error(t, m.AddMarker("q", "nope", Vec3{}), "unknown joint")

	s := NewState(m.NumCoordinates())
	_, err := m.PredictMarker("nope", s)
	assert.Error(t, err)
	_, err = m.CoordinateValue("nope", s)
	assert.Error(t, err)

	v, err := m.CoordinateValue("j0", &State{Q: []float64{0.5}})
	require.NoError(t, err)
	assert.Equal(t, 0.5, v)
}

func TestCoordinateOrder(t *testing.T) {
	m := twoLinkArm(t)
	assert.Equal(t, []string{"shoulder", "elbow"}, m.CoordinateNames())
	assert.Equal(t, []string{"tip", "mid"}, m.MarkerNames())

	i, ok := m.CoordinateIndex("elbow")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = m.CoordinateIndex("wrist")
	assert.False(t, ok)
}
