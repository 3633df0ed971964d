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

func newTestMarkersReference(t *testing.T) *MarkersReference {
	t.Helper()
	table := NewMarkerTable([]string{"a", "b"})
	nan := math.NaN()
	require.NoError(t, table.AppendFrame(0, []Vec3{{X: 1}, {X: 2}}))
	require.NoError(t, table.AppendFrame(0.1, []Vec3{{X: 3}, {X: nan, Y: nan, Z: nan}}))
	return NewMarkersReference(table)
}

func TestMarkersReferenceWeights(t *testing.T) {
	ref := newTestMarkersReference(t)

	// Defaults apply to markers without an explicit entry
	assert.Equal(t, []float64{DEFAULT_WEIGHT, DEFAULT_WEIGHT}, ref.Weights())

	require.NoError(t, ref.SetDefaultWeight(2.5))
	require.NoError(t, ref.SetWeight("b", 4))
	assert.Equal(t, []float64{2.5, 4}, ref.Weights())
	assert.Equal(t, 2.5, ref.Weight("a"))

	assert.Error(t, ref.SetWeight("z", 1), "unknown marker")
	assert.Error(t, ref.SetWeight("a", -1), "negative weight")
	assert.Error(t, ref.SetDefaultWeight(-1), "negative default weight")
}

func TestMarkersReferenceValueAt(t *testing.T) {
	ref := newTestMarkersReference(t)

	v, active, err := ref.ValueAt("a", 0.01)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, 1.0, v.X)

	// NaN sample marks the marker absent at that frame
	_, active, err = ref.ValueAt("b", 0.1)
	require.NoError(t, err)
	assert.False(t, active)

	_, _, err = ref.ValueAt("z", 0)
	assert.Error(t, err)
}

func TestCoordinateReference(t *testing.T) {
	cr := NewCoordinateReference("theta", Constant(0.25))
	assert.Equal(t, "theta", cr.Name)
	assert.Equal(t, 1.0, cr.Weight)
	assert.Equal(t, 0.25, cr.Value(0))
	assert.Equal(t, 0.25, cr.Value(123.4))
}
