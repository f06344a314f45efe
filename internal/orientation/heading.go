// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"

	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

// ComputeHeading returns the tilt-compensated bearing of the magnetic field in
// degrees, in [0, 360).
//
// The field is first projected onto the plane perpendicular to up. The bearing
// is the angle from the body +X axis to that horizontal field, measured
// clockwise when looking down the up vector, so a field along +X reads 0 and a
// field along +Y reads 270. declinationDegrees is then added to move from a
// magnetic to a true reference.
//
// up must be a unit vector. ErrDegenerateInput is returned when the field has
// no horizontal component, i.e. it is parallel to up or zero.
func ComputeHeading(mag, up vecmath.Vector3, declinationDegrees float64) (float64, error) {
	horizontal := vecmath.Sub(mag, vecmath.Scale(up, vecmath.Dot(mag, up)))
	h, ok := vecmath.Unit(horizontal)
	if !ok {
		return 0, fmt.Errorf("heading of mag %v with up %v: %w", mag, up, ErrDegenerateInput)
	}

	bearing := math.Atan2(-h.Y, h.X) * 180.0 / math.Pi
	return NormalizeDegrees(bearing + declinationDegrees), nil
}

// NormalizeDegrees wraps an angle into [0, 360) by whole turns.
func NormalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return deg
	}
	if math.Abs(deg) >= 360*4 {
		deg = math.Mod(deg, 360)
	}
	for deg < 0 {
		deg += 360
	}
	for deg >= 360 {
		deg -= 360
	}
	return deg
}
