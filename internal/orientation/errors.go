// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import "errors"

var (
	// ErrDegenerateInput is returned when a vector that must be normalized is
	// too short to have a direction: a zero accelerometer reading, a collapsed
	// up estimate, or a magnetic field parallel to vertical. Skip the cycle and
	// try again with the next sample.
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrNonPositiveTimeDelta is returned when the time step is zero, negative
	// or not a finite number.
	ErrNonPositiveTimeDelta = errors.New("non-positive time delta")

	// ErrInvalidConfig is returned by the FusionConfig setters.
	ErrInvalidConfig = errors.New("invalid fusion config")
)
