// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.6.2
//

package goik

import (
	"fmt"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"
)

// Joint is one revolute joint of a serial chain. Its frame is reached from
// the parent frame by the fixed translation Offset followed by a rotation of
// the joint coordinate around Axis.
type Joint struct {
	Name   string // Generalized coordinate name (unique within a model)
	Offset Vec3   // Fixed translation from the parent joint frame [m]
	Axis   Vec3   // Unit rotation axis in the parent frame
}

// Marker is a labeled point rigidly attached to one joint frame.
type Marker struct {
	Name  string // Marker name (unique within a model)
	Joint int    // Index of the joint frame carrying the marker
	Local Vec3   // Marker position in that joint frame [m]
}

// Model is a serial chain of revolute joints with markers attached to the
// joint frames. One joint contributes one free generalized coordinate. The
// topology is fixed once built; pose evaluation is a pure function of a
// State.
type Model struct {
	Name    string
	joints  []Joint
	markers []Marker
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{
		Name:    name,
		joints:  []Joint{},
		markers: []Marker{},
	}
}

// AddJoint appends a revolute joint to the end of the chain. The axis is
// normalized; a zero axis or duplicate coordinate name is an error.
func (m *Model) AddJoint(name string, offset, axis Vec3) error {
	if _, ok := m.CoordinateIndex(name); ok {
		return fmt.Errorf("duplicate coordinate name %q", name)
	}
	u, err := axis.Normalize()
	if err != nil {
		return fmt.Errorf("joint %q: %w", name, err)
	}
	m.joints = append(m.joints, Joint{Name: name, Offset: offset, Axis: u})
	return nil
}

// AddMarker attaches a marker to the frame of the named joint.
func (m *Model) AddMarker(name, joint string, local Vec3) error {
	if m.HasMarker(name) {
		return fmt.Errorf("duplicate marker name %q", name)
	}
	j, ok := m.CoordinateIndex(joint)
	if !ok {
		return fmt.Errorf("marker %q: joint %q does not exist", name, joint)
	}
	m.markers = append(m.markers, Marker{Name: name, Joint: j, Local: local})
	return nil
}

// NumCoordinates returns the number of free generalized coordinates.
func (m *Model) NumCoordinates() int {
	return len(m.joints)
}

// CoordinateNames returns the coordinate names in chain order.
func (m *Model) CoordinateNames() []string {
	names := make([]string, len(m.joints))
	for i, j := range m.joints {
		names[i] = j.Name
	}
	return names
}

// CoordinateIndex returns the index of the named coordinate.
func (m *Model) CoordinateIndex(name string) (int, bool) {
	i := slices.IndexFunc(m.joints, func(j Joint) bool { return j.Name == name })
	return i, i >= 0
}

// MarkerNames returns the marker names in the order they were added.
func (m *Model) MarkerNames() []string {
	names := make([]string, len(m.markers))
	for i, mk := range m.markers {
		names[i] = mk.Name
	}
	return names
}

func (m *Model) HasMarker(name string) bool {
	return slices.IndexFunc(m.markers, func(mk Marker) bool { return mk.Name == name }) >= 0
}

func (m *Model) markerByName(name string) (Marker, bool) {
	i := slices.IndexFunc(m.markers, func(mk Marker) bool { return mk.Name == name })
	if i < 0 {
		return Marker{}, false
	}
	return m.markers[i], true
}

// frame holds the world placement of one joint frame for a given pose.
type frame struct {
	rot    Mat3 // World rotation of the joint frame
	origin Vec3 // World position of the joint center [m]
	axis   Vec3 // World direction of the rotation axis
}

// frames evaluates the forward kinematics for pose q and returns the world
// placement of every joint frame in chain order.
func (m *Model) frames(q []float64) []frame {
	fr := make([]frame, len(m.joints))
	rot := I3
	org := Vec3{}
	for i, j := range m.joints {
		org = org.Add(rot.MulVec(j.Offset))
		axis := rot.MulVec(j.Axis)
		rot = rot.Mul(RotAxis(j.Axis, q[i]))
		fr[i] = frame{rot: rot, origin: org, axis: axis}
	}
	return fr
}

// markerWorld returns the world position of a marker given evaluated frames.
func (m *Model) markerWorld(mk Marker, fr []frame) Vec3 {
	f := fr[mk.Joint]
	return f.origin.Add(f.rot.MulVec(mk.Local))
}

// markerJacobian returns dp/dq for a marker at world position p, one Vec3
// column per coordinate. Joints past the marker's frame do not move it.
// For a revolute joint with world axis a and center c, dp/dq = a x (p - c).
func (m *Model) markerJacobian(mk Marker, fr []frame, p Vec3) []Vec3 {
	cols := make([]Vec3, len(m.joints))
	for j := 0; j <= mk.Joint; j++ {
		cols[j] = fr[j].axis.Cross(p.Sub(fr[j].origin))
	}
	return cols
}

// PredictMarker returns the world position of the named marker for the pose
// in s.
func (m *Model) PredictMarker(name string, s *State) (Vec3, error) {
	mk, ok := m.markerByName(name)
	if !ok {
		return Vec3{}, fmt.Errorf("marker %q does not exist", name)
	}
	if len(s.Q) != len(m.joints) {
		return Vec3{}, fmt.Errorf("state has %d coordinates, model has %d", len(s.Q), len(m.joints))
	}
	return m.markerWorld(mk, m.frames(s.Q)), nil
}

// CoordinateValue returns the value of the named coordinate in s.
func (m *Model) CoordinateValue(name string, s *State) (float64, error) {
	i, ok := m.CoordinateIndex(name)
	if !ok {
		return 0, fmt.Errorf("coordinate %q does not exist", name)
	}
	return s.Q[i], nil
}

// MarkerJacobian assembles the Jacobian of the named marker positions with
// respect to the free coordinates: three rows (x, y, z) per marker, one
// column per coordinate.
func (m *Model) MarkerJacobian(names []string, s *State) (*mat.Dense, error) {
	nq := len(m.joints)
	J := mat.NewDense(3*len(names), nq, nil)
	fr := m.frames(s.Q)
	for i, name := range names {
		mk, ok := m.markerByName(name)
		if !ok {
			return nil, fmt.Errorf("marker %q does not exist", name)
		}
		p := m.markerWorld(mk, fr)
		for j, col := range m.markerJacobian(mk, fr, p) {
			J.Set(3*i, j, col.X)
			J.Set(3*i+1, j, col.Y)
			J.Set(3*i+2, j, col.Z)
		}
	}
	return J, nil
}
