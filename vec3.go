// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2026.5.18
//

package goik

import (
	"fmt"
	"math"
)

//-------------------------------------------------------------------
// Vec3
//-------------------------------------------------------------------

// Vec3 is a 3D position or direction in cartesian coordinates [m]
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(b Vec3) Vec3 {
	return Vec3{X: v.X + b.X, Y: v.Y + b.Y, Z: v.Z + b.Z}
}

func (v Vec3) Sub(b Vec3) Vec3 {
	return Vec3{X: v.X - b.X, Y: v.Y - b.Y, Z: v.Z - b.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: s * v.X, Y: s * v.Y, Z: s * v.Z}
}

func (v Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		X: v.Y*b.Z - v.Z*b.Y,
		Y: v.Z*b.X - v.X*b.Z,
		Z: v.X*b.Y - v.Y*b.X,
	}
}

func (v Vec3) Dot(b Vec3) float64 {
	return v.X*b.X + v.Y*b.Y + v.Z*b.Z
}

func (v Vec3) Norm() float64 {
	return math.Sqrt(SQ(v.X) + SQ(v.Y) + SQ(v.Z))
}

// Normalize returns a unit-length copy of v
func (v Vec3) Normalize() (Vec3, error) {
	n := v.Norm()
	if n == 0 {
		return Vec3{}, fmt.Errorf("cannot normalize a zero vector")
	}
	return v.Scale(1 / n), nil
}

// IsNaN reports whether any component of v is NaN. Reference tables use
// all-NaN samples to mark a marker absent at a frame.
func (v Vec3) IsNaN() bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// Distance between two points
func EucDist(a, b Vec3) float64 {
	return a.Sub(b).Norm()
}

//-------------------------------------------------------------------
// Mat3
//-------------------------------------------------------------------

// Mat3 is a 3x3 rotation matrix in row-major order
type Mat3 [9]float64

// Identity rotation
var I3 = Mat3{
	1, 0, 0,
	0, 1, 0,
	0, 0, 1,
}

// RotAxis builds the rotation matrix for an angle a [rad] around the unit
// axis u (Rodrigues formula)
func RotAxis(u Vec3, a float64) Mat3 {
	c := math.Cos(a)
	s := math.Sin(a)
	t := 1 - c
	return Mat3{
		t*u.X*u.X + c, t*u.X*u.Y - s*u.Z, t*u.X*u.Z + s*u.Y,
		t*u.X*u.Y + s*u.Z, t*u.Y*u.Y + c, t*u.Y*u.Z - s*u.X,
		t*u.X*u.Z - s*u.Y, t*u.Y*u.Z + s*u.X, t*u.Z*u.Z + c,
	}
}

func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		Z: m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

func (m Mat3) Mul(b Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[3*i+j] = m[3*i]*b[j] + m[3*i+1]*b[3+j] + m[3*i+2]*b[6+j]
		}
	}
	return r
}
