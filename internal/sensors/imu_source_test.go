// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"testing"

	"go.viam.com/test"
)

func TestCountsToG(t *testing.T) {
	test.That(t, countsToG(16384, 0), test.ShouldAlmostEqual, 1.0)
	test.That(t, countsToG(-8192, 1), test.ShouldAlmostEqual, -1.0)
	test.That(t, countsToG(2048, 3), test.ShouldAlmostEqual, 1.0)
	test.That(t, countsToG(0, 2), test.ShouldEqual, 0.0)
}

func TestCountsToDPS(t *testing.T) {
	test.That(t, countsToDPS(131, 0), test.ShouldAlmostEqual, 1.0)
	test.That(t, countsToDPS(-655, 1), test.ShouldAlmostEqual, -10.0)
	test.That(t, countsToDPS(164, 3), test.ShouldAlmostEqual, 10.0)
}

func TestGravityFromCounts(t *testing.T) {
	// flat and still: the chip reports +1 g on Z
	g := gravityFromCounts(0, 0, 16384, 0)
	test.That(t, g.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, g.Y, test.ShouldAlmostEqual, 0.0)
	test.That(t, g.Z, test.ShouldAlmostEqual, -1.0)

	g = gravityFromCounts(4096, 0, 0, 2)
	test.That(t, g.X, test.ShouldAlmostEqual, -1.0)
}
