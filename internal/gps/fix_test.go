// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package gps

import (
	"testing"

	"go.viam.com/test"
)

func TestParseRMCDeclination(t *testing.T) {
	for _, tc := range []struct {
		name   string
		line   string
		want   float64
		wantOK bool
	}{
		{"east", "$GNRMC,081836.00,A,3751.65,S,14507.36,E,000.0,360.0,130998,011.3,E,A,V*45\r\n", 11.3, true},
		{"west", "$GPRMC,123519.00,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W,A,V*53", -3.1, true},
		{"empty variation", "$GPRMC,123519.00,A,4807.038,N,01131.000,E,022.4,084.4,230394,,,A,V*28", 0, false},
		{"no fix", "$GPRMC,123519.00,V,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W,N,V*4B", 0, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, ok := ParseRMC(tc.line)
			test.That(t, ok, test.ShouldBeTrue)

			decl, ok := Declination(m)
			test.That(t, ok, test.ShouldEqual, tc.wantOK)
			test.That(t, decl, test.ShouldAlmostEqual, tc.want)
		})
	}
}

func TestParseRMCRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"garbage",
		"$GPRMC,123519.00,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W,A,V*00",
		"$GPGGA,172814.0,3723.46587704,N,12202.26957864,W,2,6,1.2,18.893,M,-25.669,M,2.0,0031*4F",
	} {
		_, ok := ParseRMC(line)
		test.That(t, ok, test.ShouldBeFalse)
	}
}

func TestFixFromRMC(t *testing.T) {
	m, ok := ParseRMC("$GNRMC,081836.00,A,3751.65,S,14507.36,E,000.0,360.0,130998,011.3,E,A,V*45")
	test.That(t, ok, test.ShouldBeTrue)

	f := FixFromRMC(m)
	test.That(t, f.Validity, test.ShouldEqual, "A")
	test.That(t, f.Latitude, test.ShouldAlmostEqual, -(37 + 51.65/60), 1e-9)
	test.That(t, f.Longitude, test.ShouldAlmostEqual, 145+7.36/60, 1e-9)
	test.That(t, f.CourseDeg, test.ShouldAlmostEqual, 360.0)
	test.That(t, f.HasVariation, test.ShouldBeTrue)
	test.That(t, f.VariationDeg, test.ShouldAlmostEqual, 11.3)
}
