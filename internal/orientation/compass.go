// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

// FusedUpdate runs one filter cycle: it advances state with the accelerometer
// and gyro samples, then computes the heading of mag against the new up
// vector. The first error wins. If only the heading step fails, state keeps
// the accepted attitude update.
func FusedUpdate(state *AttitudeState, cfg FusionConfig, accel, gyroDegPerS, mag vecmath.Vector3, dtSeconds float64) (float64, error) {
	if err := state.Update(cfg, accel, gyroDegPerS, dtSeconds); err != nil {
		return 0, err
	}
	return ComputeHeading(mag, state.Up, cfg.DeclinationDegrees)
}

// Compass pairs one AttitudeState with its FusionConfig for the lifetime of a
// sensor session.
//
// Compass does no locking. Callers that share it between goroutines must
// serialize every call.
type Compass struct {
	state AttitudeState
	cfg   FusionConfig
}

// NewCompass returns an unseeded compass using cfg.
func NewCompass(cfg FusionConfig) (*Compass, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Compass{state: NewAttitudeState(), cfg: cfg}, nil
}

// Seed sets the up estimate from a resting accelerometer sample.
func (c *Compass) Seed(accel vecmath.Vector3) error {
	return c.state.Seed(accel)
}

func (c *Compass) SetDeclination(degrees float64) error {
	return c.cfg.SetDeclination(degrees)
}

func (c *Compass) SetUpCorrectionRate(rate float64) error {
	return c.cfg.SetUpCorrectionRate(rate)
}

func (c *Compass) SetAccelGate(minG, maxG float64) error {
	return c.cfg.SetAccelGate(minG, maxG)
}

// FusedUpdate runs one filter cycle and returns the heading in degrees.
func (c *Compass) FusedUpdate(accel, gyroDegPerS, mag vecmath.Vector3, dtSeconds float64) (float64, error) {
	return FusedUpdate(&c.state, c.cfg, accel, gyroDegPerS, mag, dtSeconds)
}

// Pose returns roll and pitch of the current up estimate with heading as yaw.
func (c *Compass) Pose(heading float64) Pose {
	return PoseFromUp(c.state.Up, heading)
}

// State returns a copy of the attitude state.
func (c *Compass) State() AttitudeState {
	return c.state
}

// Config returns a copy of the fusion config.
func (c *Compass) Config() FusionConfig {
	return c.cfg
}
