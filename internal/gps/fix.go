// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package gps turns NMEA RMC sentences into position fixes and the magnetic
// declination the compass adds to its heading.
package gps

import (
	"strings"

	nmea "github.com/adrianmo/go-nmea"
)

// RMC field index of the magnetic variation value.
const rmcVariationField = 9

// Fix represents a single combined GPS fix suitable for JSON and MQTT.
type Fix struct {
	Time       string  `json:"time"`        // e.g. "12:34:56.0000"
	Date       string  `json:"date"`        // e.g. "13/09/98"
	Latitude   float64 `json:"lat"`         // decimal degrees
	Longitude  float64 `json:"lon"`         // decimal degrees
	SpeedKnots float64 `json:"speed_knots"` // speed over ground
	CourseDeg  float64 `json:"course_deg"`  // course over ground
	Validity   string  `json:"validity"`    // "A" (valid) / "V" (void)

	// Magnetic variation, east positive. Only meaningful if HasVariation.
	VariationDeg float64 `json:"variation_deg"`
	HasVariation bool    `json:"has_variation"`
}

// FixFromRMC copies the fields of an RMC sentence into a Fix.
func FixFromRMC(m nmea.RMC) Fix {
	decl, ok := Declination(m)
	return Fix{
		Time:         m.Time.String(),
		Date:         m.Date.String(),
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		SpeedKnots:   m.Speed,
		CourseDeg:    m.Course,
		Validity:     m.Validity,
		VariationDeg: decl,
		HasVariation: ok,
	}
}

// Declination returns the magnetic variation of a valid RMC sentence in
// degrees, east positive. ok is false when the receiver has no fix or left
// the variation field empty.
func Declination(m nmea.RMC) (degrees float64, ok bool) {
	if m.Validity != nmea.ValidRMC {
		return 0, false
	}
	if len(m.Fields) <= rmcVariationField || m.Fields[rmcVariationField] == "" {
		return 0, false
	}
	return m.Variation, true
}

// ParseRMC parses one line read from the receiver. Lines that are blank, not
// NMEA, malformed, or another sentence type yield ok == false.
func ParseRMC(line string) (nmea.RMC, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return nmea.RMC{}, false
	}
	sentence, err := nmea.Parse(line)
	if err != nil || sentence.DataType() != nmea.TypeRMC {
		return nmea.RMC{}, false
	}
	m, ok := sentence.(nmea.RMC)
	return m, ok
}
