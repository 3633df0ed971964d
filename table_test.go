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
)

func TestMarkerTableAppendFrame(t *testing.T) {
	table := NewMarkerTable([]string{"a", "b"})

	require.NoError(t, table.AppendFrame(0, []Vec3{{X: 1}, {X: 2}}))
	require.NoError(t, table.AppendFrame(0.1, []Vec3{{X: 3}, {X: 4}}))
	assert.Equal(t, 2, table.NumFrames())

	assert.Error(t, table.AppendFrame(0.2, []Vec3{{X: 5}}), "sample count mismatch")
	assert.Error(t, table.AppendFrame(0.05, []Vec3{{X: 5}, {X: 6}}), "time going backwards")
	assert.Equal(t, 2, table.NumFrames())
}

func TestMarkerTableGetNearest(t *testing.T) {
	table := NewMarkerTable([]string{"a"})
	for i := 0; i < 5; i++ {
		require.NoError(t, table.AppendFrame(float64(i)*0.1, []Vec3{{X: float64(i)}}))
	}

	f, err := table.GetNearest(0.21)
	require.NoError(t, err)
	assert.Equal(t, 2.0, f.Dat[0].X)

	// Queries outside the range clamp to the first or last frame
	f, err = table.GetNearest(-1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, f.Dat[0].X)
	f, err = table.GetNearest(100)
	require.NoError(t, err)
	assert.Equal(t, 4.0, f.Dat[0].X)

	_, err = NewMarkerTable([]string{"a"}).GetNearest(0)
	assert.Error(t, err, "empty table")
}

func TestMarkerTableColumnIndex(t *testing.T) {
	table := NewMarkerTable([]string{"a", "b", "c"})
	i, ok := table.ColumnIndex("b")
	require.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = table.ColumnIndex("z")
	assert.False(t, ok)
}

// Frames must be copies, not aliases of the caller's slice.
func TestMarkerTableCopiesSamples(t *testing.T) {
	table := NewMarkerTable([]string{"a"})
	dat := []Vec3{{X: 1}}
	require.NoError(t, table.AppendFrame(0, dat))
	dat[0].X = 99
	assert.Equal(t, 1.0, table.Frames[0].Dat[0].X)
}
