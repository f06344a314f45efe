// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"github.com/relabs-tech/inertial_compass/internal/orientation"
	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

// HeadingMessage is published on TOPIC_HEADING once per accepted cycle.
type HeadingMessage struct {
	Heading     float64          `json:"heading_deg"`     // [0, 360), true north when declination is set
	Declination float64          `json:"declination_deg"` // already included in Heading
	Pose        orientation.Pose `json:"pose"`
	Up          vecmath.Vector3  `json:"up"`
	Source      string           `json:"source"`
	Time        string           `json:"time"` // RFC3339 with milliseconds
}

// DeclinationMessage is what TOPIC_DECLINATION carries, east positive.
type DeclinationMessage struct {
	Declination float64 `json:"declination_deg"`
	Source      string  `json:"source"` // "gps", "manual", ...
}

const timeFormat = "2006-01-02T15:04:05.000Z07:00"
