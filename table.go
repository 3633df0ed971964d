// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.2
//

package goik

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/slices"
)

// MarkerFrame stores the observed marker positions for one time frame.
type MarkerFrame struct {
	Time float64 // Frame time [s]
	Dat  []Vec3  // One sample per table column; an all-NaN sample marks the marker absent
}

// MarkerTable stores observed marker trajectories: a fixed set of named
// columns and a time-ascending sequence of frames.
type MarkerTable struct {
	Names  []string       // Column names, fixed at construction
	Frames []*MarkerFrame // Frames sorted by time in ascending order
}

// NewMarkerTable creates an empty table with the given column names.
func NewMarkerTable(names []string) *MarkerTable {
	cols := make([]string, len(names))
	copy(cols, names)
	return &MarkerTable{
		Names:  cols,
		Frames: []*MarkerFrame{},
	}
}

// AppendFrame appends one frame. The sample count must match the column
// count and the time must not precede the last frame.
func (p *MarkerTable) AppendFrame(t float64, dat []Vec3) error {
	if len(dat) != len(p.Names) {
		return fmt.Errorf("invalid frame size. names(%d), dat(%d)", len(p.Names), len(dat))
	}
	if n := len(p.Frames); n > 0 && t < p.Frames[n-1].Time {
		return fmt.Errorf("frame time %f precedes last frame time %f", t, p.Frames[n-1].Time)
	}
	d := make([]Vec3, len(dat))
	copy(d, dat)
	p.Frames = append(p.Frames, &MarkerFrame{Time: t, Dat: d})
	return nil
}

// NumFrames returns the number of stored frames.
func (p *MarkerTable) NumFrames() int {
	return len(p.Frames)
}

// ColumnIndex returns the column index of the named marker.
func (p *MarkerTable) ColumnIndex(name string) (int, bool) {
	i := slices.Index(p.Names, name)
	return i, i >= 0
}

// GetNearest returns the frame closest in time to the specified time. Query
// times outside the series range clamp to the first or last frame.
func (p *MarkerTable) GetNearest(t float64) (*MarkerFrame, error) {
	if len(p.Frames) == 0 {
		return nil, fmt.Errorf("the container is empty")
	}
	best := p.Frames[0]
	m := math.Abs(t - best.Time)
	for _, f := range p.Frames[1:] {
		d := math.Abs(t - f.Time)
		if d < m {
			best = f
			m = d
		}
	}
	return best, nil
}

// Display table overview
func (p *MarkerTable) String() string {
	if len(p.Frames) == 0 {
		return "NO DATA"
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("markers (%d):", len(p.Names)))
	for _, n := range p.Names {
		sb.WriteString(" " + n)
	}
	return fmt.Sprintf("time: %.3f - %.3f (%d frames)\n%s",
		p.Frames[0].Time, p.Frames[len(p.Frames)-1].Time, len(p.Frames), sb.String())
}
