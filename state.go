// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.5.20
//

package goik

// State holds the free generalized coordinates of a kinematic model at a
// point in time. It is owned by the caller: the solver reads Q as the initial
// guess and writes the solved values back in place. It must not be touched by
// another goroutine while a solve is in progress.
type State struct {
	Time float64   // Time stamp [s], used to look up reference data
	Q    []float64 // Free coordinate values, in model coordinate order
}

// NewState creates a state with all coordinates at zero for a model with n
// free coordinates.
func NewState(n int) *State {
	return &State{
		Time: 0,
		Q:    make([]float64, n),
	}
}

// Clone returns an independent copy of the state.
func (s *State) Clone() *State {
	q := make([]float64, len(s.Q))
	copy(q, s.Q)
	return &State{
		Time: s.Time,
		Q:    q,
	}
}
