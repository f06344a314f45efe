// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"time"

	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

// Sample is one accelerometer + gyroscope + magnetometer reading in physical
// units, all in the same body frame.
type Sample struct {
	Source string `json:"source"` // magnetometer chip, "mock", ...

	Accel vecmath.Vector3 `json:"accel_g"`   // g
	Gyro  vecmath.Vector3 `json:"gyro_dps"`  // degrees per second
	Mag   vecmath.Vector3 `json:"mag_ut"`    // µT

	// Time is taken from the monotonic clock when the sample was read.
	Time time.Time `json:"time"`
}

// SampleSource is anything that can provide samples over time: the real
// sensors, the mock source, a replay.
type SampleSource interface {
	Next() (Sample, error)
}
