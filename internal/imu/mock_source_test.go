// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package imu

import (
	"math"
	"testing"
	"time"

	"go.viam.com/test"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestMockSource(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	src := newMockSource(clock.now, 30)

	s, err := src.Next()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Source, test.ShouldEqual, "mock")
	test.That(t, s.Accel.Z, test.ShouldEqual, -1.0)
	test.That(t, s.Gyro.Z, test.ShouldEqual, 30.0)
	test.That(t, s.Mag.X, test.ShouldAlmostEqual, mockFieldHorizontal)
	test.That(t, s.Mag.Y, test.ShouldAlmostEqual, 0.0)
	test.That(t, s.Mag.Z, test.ShouldEqual, -mockFieldDown)
	test.That(t, s.Time, test.ShouldEqual, clock.t)

	clock.t = clock.t.Add(3 * time.Second)
	s, err = src.Next()
	test.That(t, err, test.ShouldBeNil)
	// 90° of yaw puts magnetic north on the body -y side
	test.That(t, s.Mag.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, s.Mag.Y, test.ShouldAlmostEqual, -mockFieldHorizontal)
	test.That(t, math.Hypot(s.Mag.X, s.Mag.Y), test.ShouldAlmostEqual, mockFieldHorizontal)
}
