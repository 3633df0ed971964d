// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.20
//

package goik

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func pendulumTrajectory(n int, amp, dt float64) []*State {
	states := make([]*State, n)
	for i := range states {
		s := NewState(1)
		s.Time = dt * float64(i)
		s.Q[0] = amp * float64(i) / float64(n-1)
		states[i] = s
	}
	return states
}

func TestGenerateMarkerDataNoiseless(t *testing.T) {
	model := NewPendulumWithMarkers()
	states := pendulumTrajectory(5, PI/4, 0.01)

	table, err := GenerateMarkerData(model, states, 0, false, nil)
	require.NoError(t, err)
	require.Equal(t, len(states), table.NumFrames())
	assert.Equal(t, model.MarkerNames(), table.Names)

	for i, s := range states {
		for j, name := range table.Names {
			want, err := model.PredictMarker(name, s)
			require.NoError(t, err)
			assert.InDelta(t, 0, EucDist(want, table.Frames[i].Dat[j]), 1e-15)
		}
	}
}

func TestGenerateMarkerDataDeterministic(t *testing.T) {
	model := NewPendulumWithMarkers()
	states := pendulumTrajectory(8, PI/3, 0.01)

	t1, err := GenerateMarkerData(model, states, 0.02, false, rand.NewSource(7))
	require.NoError(t, err)
	t2, err := GenerateMarkerData(model, states, 0.02, false, rand.NewSource(7))
	require.NoError(t, err)

	for i := range t1.Frames {
		for j := range t1.Frames[i].Dat {
			assert.Equal(t, t1.Frames[i].Dat[j], t2.Frames[i].Dat[j])
		}
	}
}

func TestGenerateMarkerDataFixedNoise(t *testing.T) {
	model := NewPendulumWithMarkers()
	states := pendulumTrajectory(6, PI/3, 0.01)

	clean, err := GenerateMarkerData(model, states, 0, false, nil)
	require.NoError(t, err)
	noisy, err := GenerateMarkerData(model, states, 0.02, true, rand.NewSource(3))
	require.NoError(t, err)

	// The offset is drawn once and shared by every sample
	offset := noisy.Frames[0].Dat[0].Sub(clean.Frames[0].Dat[0])
	assert.Greater(t, offset.Norm(), 0.0)
	for i := range noisy.Frames {
		for j := range noisy.Frames[i].Dat {
			d := noisy.Frames[i].Dat[j].Sub(clean.Frames[i].Dat[j])
			assert.InDelta(t, 0, EucDist(d, offset), 1e-15)
		}
	}
}

func TestGenerateMarkerDataValidation(t *testing.T) {
	model := NewPendulumWithMarkers()
	states := pendulumTrajectory(3, PI/4, 0.01)

	_, err := GenerateMarkerData(model, nil, 0, false, nil)
	assert.Error(t, err, "empty trajectory")

	_, err = GenerateMarkerData(model, states, -1, false, nil)
	var argErr *InvalidArgumentError
	assert.ErrorAs(t, err, &argErr)

	_, err = GenerateMarkerData(model, states, 0.02, false, nil)
	assert.ErrorAs(t, err, &argErr, "noise without a source")

	bad := []*State{{Time: 0, Q: []float64{1, 2}}}
	_, err = GenerateMarkerData(model, bad, 0, false, nil)
	assert.Error(t, err, "coordinate count mismatch")
}
