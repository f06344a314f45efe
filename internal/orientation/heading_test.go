// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"errors"
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

var level = vecmath.New(0, 0, 1)

func TestComputeHeadingReference(t *testing.T) {
	for _, tc := range []struct {
		name        string
		mag         vecmath.Vector3
		up          vecmath.Vector3
		declination float64
		want        float64
	}{
		{"field along +x", vecmath.New(1, 0, 0), level, 0, 0},
		{"field along +y", vecmath.New(0, 1, 0), level, 0, 270},
		{"field along -x", vecmath.New(-1, 0, 0), level, 0, 180},
		{"field along -y", vecmath.New(0, -1, 0), level, 0, 90},
		{"dip is ignored", vecmath.New(20, 0, -45), level, 0, 0},
		{"dip is ignored off axis", vecmath.New(0, 20, 45), level, 0, 270},
		{"declination added", vecmath.New(1, 0, 0), level, 12.5, 12.5},
		{"declination wraps", vecmath.New(0, 1, 0), level, 100, 10},
		{"scale independent", vecmath.New(0, -48, 0), level, 0, 90},
		{"huge field", vecmath.New(1e200, 1e200, 0), level, 0, 315},
		{"huge field with dip", vecmath.New(0, -1e300, -1e308), level, 0, 90},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ComputeHeading(tc.mag, tc.up, tc.declination)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, got, test.ShouldAlmostEqual, tc.want, 1e-9)
		})
	}
}

func TestComputeHeadingTilted(t *testing.T) {
	// Device rolled 30° about its x axis: gravity has a body y component.
	roll := 30 * math.Pi / 180
	up := vecmath.New(0, math.Sin(roll), math.Cos(roll))

	// A field along body x stays horizontal under a roll about x.
	got, err := ComputeHeading(vecmath.New(25, 0, 0), up, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angleBetween(got, 0), test.ShouldAlmostEqual, 0.0, 1e-9)

	// Adding any vertical component does not change the bearing.
	withDip := vecmath.Add(vecmath.New(25, 0, 0), vecmath.Scale(up, -40))
	got, err = ComputeHeading(withDip, up, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, angleBetween(got, 0), test.ShouldAlmostEqual, 0.0, 1e-9)
}

// angleBetween returns the unsigned angular distance between two headings.
func angleBetween(a, b float64) float64 {
	d := math.Abs(NormalizeDegrees(a) - NormalizeDegrees(b))
	if d > 180 {
		d = 360 - d
	}
	return d
}

func TestComputeHeadingDegenerate(t *testing.T) {
	for _, mag := range []vecmath.Vector3{
		vecmath.New(0, 0, 5),
		vecmath.New(0, 0, -5),
		{},
	} {
		_, err := ComputeHeading(mag, level, 0)
		test.That(t, errors.Is(err, ErrDegenerateInput), test.ShouldBeTrue)
	}
}

func TestComputeHeadingContinuity(t *testing.T) {
	prev := -1.0
	for step := 0; step <= 3600; step++ {
		theta := float64(step) / 10 * math.Pi / 180
		mag := vecmath.New(30*math.Cos(theta), 30*math.Sin(theta), -40)

		got, err := ComputeHeading(mag, level, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldBeGreaterThanOrEqualTo, 0.0)
		test.That(t, got, test.ShouldBeLessThan, 360.0)

		if prev >= 0 {
			// the only jump allowed is the wrap between 0 and 360
			test.That(t, angleBetween(got, prev), test.ShouldAlmostEqual, 0.1, 1e-6)
		}
		prev = got
	}
}

func TestNormalizeDegrees(t *testing.T) {
	for _, tc := range []struct {
		in, want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{-90, 270},
		{725, 5},
		{-725, 355},
		{1e6, math.Mod(1e6, 360)},
	} {
		test.That(t, NormalizeDegrees(tc.in), test.ShouldAlmostEqual, tc.want, 1e-9)
	}

	tiny := NormalizeDegrees(-1e-15)
	test.That(t, tiny, test.ShouldBeGreaterThanOrEqualTo, 0.0)
	test.That(t, tiny, test.ShouldBeLessThan, 360.0)
}

func TestPoseFromUp(t *testing.T) {
	p := PoseFromUp(level, 42)
	test.That(t, p.Roll, test.ShouldAlmostEqual, 0.0)
	test.That(t, p.Pitch, test.ShouldAlmostEqual, 0.0)
	test.That(t, p.Yaw, test.ShouldEqual, 42.0)

	p = PoseFromUp(vecmath.New(0, 1, 0), 0)
	test.That(t, p.Roll, test.ShouldAlmostEqual, 90.0)
	test.That(t, p.Pitch, test.ShouldAlmostEqual, 0.0)

	p = PoseFromUp(vecmath.New(-math.Sqrt2/2, 0, math.Sqrt2/2), 0)
	test.That(t, p.Roll, test.ShouldAlmostEqual, 0.0)
	test.That(t, p.Pitch, test.ShouldAlmostEqual, 45.0)
}
