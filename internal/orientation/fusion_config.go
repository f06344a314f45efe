// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
)

const (
	// DefaultUpCorrectionRate pulls the up estimate 5% of the way toward the
	// accelerometer each accepted cycle.
	DefaultUpCorrectionRate = 0.05
	DefaultAccelMinG        = 0.85
	DefaultAccelMaxG        = 1.15

	// MaxUpCorrectionRate bounds the blend factor. Values above 1 overshoot
	// the accelerometer direction and are only useful for experiments.
	MaxUpCorrectionRate = 1.2
)

// FusionConfig holds the user-tunable parameters of the heading filter.
// Change it between updates, never during one.
type FusionConfig struct {
	// UpCorrectionRate is the lerp factor toward the accelerometer's up
	// direction, 0 disables correction.
	UpCorrectionRate float64 `json:"up_correction_rate"`

	// Accelerometer magnitude window, in g, inside which the reading is
	// trusted as a gravity measurement.
	AccelMinG float64 `json:"accel_min_g"`
	AccelMaxG float64 `json:"accel_max_g"`

	// DeclinationDegrees is added to the magnetic heading, kept in [0, 360).
	DeclinationDegrees float64 `json:"declination_deg"`
}

// DefaultFusionConfig returns a config suitable for a hand-held or
// vehicle-mounted sensor sampled at 10-100 Hz.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		UpCorrectionRate: DefaultUpCorrectionRate,
		AccelMinG:        DefaultAccelMinG,
		AccelMaxG:        DefaultAccelMaxG,
	}
}

// SetDeclination sets the magnetic declination in degrees, east positive.
// Any finite value is accepted and wrapped into [0, 360).
func (c *FusionConfig) SetDeclination(degrees float64) error {
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return fmt.Errorf("%w: declination %v", ErrInvalidConfig, degrees)
	}
	c.DeclinationDegrees = NormalizeDegrees(degrees)
	return nil
}

// SetUpCorrectionRate sets the accelerometer blend factor, 0..MaxUpCorrectionRate.
func (c *FusionConfig) SetUpCorrectionRate(rate float64) error {
	if !(rate >= 0 && rate <= MaxUpCorrectionRate) {
		return fmt.Errorf("%w: up correction rate %v outside [0, %v]", ErrInvalidConfig, rate, MaxUpCorrectionRate)
	}
	c.UpCorrectionRate = rate
	return nil
}

// SetAccelGate sets the accelerometer magnitude window in g.
func (c *FusionConfig) SetAccelGate(minG, maxG float64) error {
	if !(minG >= 0) || math.IsInf(maxG, 0) || !(maxG >= minG) {
		return fmt.Errorf("%w: accel gate [%v, %v]", ErrInvalidConfig, minG, maxG)
	}
	c.AccelMinG = minG
	c.AccelMaxG = maxG
	return nil
}

// Validate reports whether every field is inside the range its setter allows.
func (c FusionConfig) Validate() error {
	probe := FusionConfig{}
	if err := probe.SetUpCorrectionRate(c.UpCorrectionRate); err != nil {
		return err
	}
	if err := probe.SetAccelGate(c.AccelMinG, c.AccelMaxG); err != nil {
		return err
	}
	if !(c.DeclinationDegrees >= 0 && c.DeclinationDegrees < 360) {
		return fmt.Errorf("%w: declination %v outside [0, 360)", ErrInvalidConfig, c.DeclinationDegrees)
	}
	return nil
}

// accelTrusted reports whether an accelerometer magnitude is close enough to
// 1 g to be used as a gravity reference.
func (c FusionConfig) accelTrusted(magnitudeG float64) bool {
	return magnitudeG >= c.AccelMinG && magnitudeG <= c.AccelMaxG
}
