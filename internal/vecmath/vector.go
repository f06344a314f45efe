// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package vecmath holds the small set of 3D vector helpers used by the
// heading fusion code. Vectors are plain r3.Vector values.
package vecmath

import (
	"math"

	"github.com/golang/geo/r3"
)

// UnitEpsilon is the smallest magnitude a vector may have and still be
// given a direction by Unit.
const UnitEpsilon = 1e-6

// Vector3 is a 3D vector in sensor body coordinates.
type Vector3 = r3.Vector

// New returns the vector (x, y, z).
func New(x, y, z float64) Vector3 {
	return Vector3{X: x, Y: y, Z: z}
}

// Norm returns the Euclidean length of v.
func Norm(v Vector3) float64 {
	return v.Norm()
}

// Unit returns v scaled to length 1. The second result is false when v is
// shorter than UnitEpsilon, or is not finite, and so has no usable direction;
// the returned vector is then the zero value and must not be used.
//
// v is first divided by its largest component so the length of a vector
// near the float64 limits does not overflow or underflow.
func Unit(v Vector3) (Vector3, bool) {
	m := math.Max(math.Abs(v.X), math.Max(math.Abs(v.Y), math.Abs(v.Z)))
	if !(m > 0) || math.IsInf(m, 0) {
		return Vector3{}, false
	}
	s := Vector3{X: v.X / m, Y: v.Y / m, Z: v.Z / m}
	n := s.Norm() // in [1, √3]
	if !(n*m >= UnitEpsilon) {
		return Vector3{}, false
	}
	return s.Mul(1 / n), true
}

// Dot returns the scalar product a·b.
func Dot(a, b Vector3) float64 {
	return a.Dot(b)
}

// Cross returns the vector product a×b.
func Cross(a, b Vector3) Vector3 {
	return a.Cross(b)
}

// Add returns a+b.
func Add(a, b Vector3) Vector3 {
	return a.Add(b)
}

// Sub returns a-b.
func Sub(a, b Vector3) Vector3 {
	return a.Sub(b)
}

// Scale returns v multiplied by s.
func Scale(v Vector3, s float64) Vector3 {
	return v.Mul(s)
}

// Lerp interpolates linearly from a (t=0) to b (t=1): a*(1-t) + b*t.
// t is not clamped.
func Lerp(a, b Vector3, t float64) Vector3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}
