// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"go.viam.com/test"

	"github.com/relabs-tech/inertial_compass/internal/orientation"
)

func TestParseDeclination(t *testing.T) {
	for _, tc := range []struct {
		payload string
		want    float64
	}{
		{`{"declination_deg": 4.25, "source": "gps"}`, 4.25},
		{"-3.5", -3.5},
		{" 12 \n", 12},
	} {
		got, err := parseDeclination([]byte(tc.payload))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, tc.want)
	}

	for _, bad := range []string{"", "east", `{"declination_deg": "x"}`} {
		_, err := parseDeclination([]byte(bad))
		test.That(t, err, test.ShouldNotBeNil)
	}
}

func TestFormatHeadingLine(t *testing.T) {
	line := formatHeadingLine(HeadingMessage{
		Heading:     271.5,
		Declination: 357,
		Pose:        orientation.Pose{Roll: 1.25, Pitch: -2, Yaw: 271.5},
		Source:      "AK09916",
	})
	test.That(t, line, test.ShouldContainSubstring, "271.50°")
	test.That(t, line, test.ShouldContainSubstring, "decl -3.00°")
	test.That(t, line, test.ShouldContainSubstring, "src=AK09916")

	test.That(t, signedDegrees(180), test.ShouldEqual, 180.0)
	test.That(t, signedDegrees(190), test.ShouldEqual, -170.0)
}
