// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"time"

	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

// Earth field used by the mock source, in µT: horizontal toward magnetic
// north plus a downward dip component, roughly central Europe.
const (
	mockFieldHorizontal = 21.5
	mockFieldDown       = 43.0
)

type mockSource struct {
	start   time.Time
	now     func() time.Time
	yawRate float64 // deg/s
}

// NewMockSource creates a mock sample source for a level sensor turning
// about its up axis at yawRateDPS. The fused heading of its samples equals
// yawRateDPS times the elapsed seconds, wrapped into [0, 360).
func NewMockSource(yawRateDPS float64) SampleSource {
	return newMockSource(time.Now, yawRateDPS)
}

func newMockSource(now func() time.Time, yawRateDPS float64) *mockSource {
	return &mockSource{start: now(), now: now, yawRate: yawRateDPS}
}

func (m *mockSource) Next() (Sample, error) {
	t := m.now()
	yaw := m.yawRate * t.Sub(m.start).Seconds() * math.Pi / 180

	return Sample{
		Source: "mock",
		Accel:  vecmath.New(0, 0, -1),
		Gyro:   vecmath.New(0, 0, m.yawRate),
		Mag: vecmath.New(
			mockFieldHorizontal*math.Cos(yaw),
			-mockFieldHorizontal*math.Sin(yaw),
			-mockFieldDown,
		),
		Time: t,
	}, nil
}
