// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package orientation turns accelerometer, gyroscope and magnetometer samples
// into a tilt-compensated compass heading.
package orientation

import (
	"math"

	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

// Pose is the canonical representation of orientation for the app.
// All angles are in degrees.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// PoseFromUp computes roll and pitch from an up vector and uses heading as
// yaw.
//
//	roll  = atan2(up.y, up.z)
//	pitch = atan2(-up.x, sqrt(up.y² + up.z²))
func PoseFromUp(up vecmath.Vector3, heading float64) Pose {
	rollRad := math.Atan2(up.Y, up.Z)
	pitchRad := math.Atan2(-up.X, math.Sqrt(up.Y*up.Y+up.Z*up.Z))

	return Pose{
		Roll:  rollRad * 180.0 / math.Pi,
		Pitch: pitchRad * 180.0 / math.Pi,
		Yaw:   heading,
	}
}
