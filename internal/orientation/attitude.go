// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"

	"github.com/relabs-tech/inertial_compass/internal/vecmath"
)

const degToRad = math.Pi / 180.0

// AttitudeState tracks which way is up in sensor body coordinates.
//
// It starts unseeded with Up = (0, 0, 1). The first Seed, or the first
// Update of an unseeded state, sets Up from the accelerometer. After that
// Update propagates Up with the gyro and pulls it toward the accelerometer
// whenever the accelerometer reads close to 1 g.
//
// An AttitudeState is not safe for concurrent use.
type AttitudeState struct {
	// Up is a unit vector pointing away from gravity.
	Up vecmath.Vector3 `json:"up"`

	Seeded bool `json:"seeded"`

	// LastUpdateMicros is the session time of the last accepted update in
	// microseconds, advanced by every accepted time step.
	LastUpdateMicros int64 `json:"last_update_us"`
}

// NewAttitudeState returns an unseeded state.
func NewAttitudeState() AttitudeState {
	return AttitudeState{Up: vecmath.New(0, 0, 1)}
}

// Seed sets Up to the direction opposite the measured acceleration.
// On failure the state is left untouched and stays unseeded.
func (s *AttitudeState) Seed(accel vecmath.Vector3) error {
	up, ok := vecmath.Unit(accel.Mul(-1))
	if !ok {
		return fmt.Errorf("seed from accel %v: %w", accel, ErrDegenerateInput)
	}
	s.Up = up
	s.Seeded = true
	return nil
}

// Update advances the estimate by dtSeconds using an accelerometer sample in
// g and a gyro sample in degrees per second. Any error leaves the state
// exactly as it was before the call.
func (s *AttitudeState) Update(cfg FusionConfig, accel, gyroDegPerS vecmath.Vector3, dtSeconds float64) error {
	next := *s

	if !next.Seeded {
		if err := next.Seed(accel); err != nil {
			return err
		}
	}

	if !(dtSeconds > 0) || math.IsInf(dtSeconds, 1) {
		return fmt.Errorf("update with dt=%v s: %w", dtSeconds, ErrNonPositiveTimeDelta)
	}

	up, err := propagateUp(next.Up, gyroDegPerS, dtSeconds)
	if err != nil {
		return err
	}

	if cfg.accelTrusted(vecmath.Norm(accel)) {
		// A gate starting at 0 g lets a zero reading through, and a blend
		// of opposite vectors can cancel out. Either way keep the gyro-only
		// estimate.
		if upAccel, ok := vecmath.Unit(accel.Mul(-1)); ok {
			if blended, ok := vecmath.Unit(vecmath.Lerp(up, upAccel, cfg.UpCorrectionRate)); ok {
				up = blended
			}
		}
	}

	next.Up = up
	next.LastUpdateMicros += int64(math.Round(dtSeconds * 1e6))
	*s = next
	return nil
}

// propagateUp rotates up by the body angular rate over dt using the first
// order step up + (ω × up)·dt, then renormalizes.
func propagateUp(up, gyroDegPerS vecmath.Vector3, dtSeconds float64) (vecmath.Vector3, error) {
	omega := gyroDegPerS.Mul(degToRad)
	step := vecmath.Scale(vecmath.Cross(omega, up), dtSeconds)
	next, ok := vecmath.Unit(vecmath.Add(up, step))
	if !ok {
		return up, fmt.Errorf("propagate up %v with gyro %v: %w", up, gyroDegPerS, ErrDegenerateInput)
	}
	return next, nil
}
