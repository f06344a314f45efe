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

func TestFusionConfigSetters(t *testing.T) {
	cfg := DefaultFusionConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	test.That(t, cfg.SetDeclination(-5), test.ShouldBeNil)
	test.That(t, cfg.DeclinationDegrees, test.ShouldAlmostEqual, 355.0)
	test.That(t, cfg.SetDeclination(725), test.ShouldBeNil)
	test.That(t, cfg.DeclinationDegrees, test.ShouldAlmostEqual, 5.0)

	test.That(t, cfg.SetUpCorrectionRate(1.2), test.ShouldBeNil)
	test.That(t, cfg.UpCorrectionRate, test.ShouldEqual, 1.2)

	test.That(t, cfg.SetAccelGate(0.9, 1.1), test.ShouldBeNil)
	test.That(t, cfg.AccelMinG, test.ShouldEqual, 0.9)
	test.That(t, cfg.AccelMaxG, test.ShouldEqual, 1.1)
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestFusionConfigRejects(t *testing.T) {
	cfg := DefaultFusionConfig()
	before := cfg

	for _, err := range []error{
		cfg.SetDeclination(math.NaN()),
		cfg.SetDeclination(math.Inf(-1)),
		cfg.SetUpCorrectionRate(-0.1),
		cfg.SetUpCorrectionRate(1.5),
		cfg.SetUpCorrectionRate(math.NaN()),
		cfg.SetAccelGate(-0.1, 1),
		cfg.SetAccelGate(1.2, 0.8),
		cfg.SetAccelGate(0.8, math.Inf(1)),
		cfg.SetAccelGate(math.NaN(), 1),
	} {
		test.That(t, errors.Is(err, ErrInvalidConfig), test.ShouldBeTrue)
	}
	test.That(t, cfg, test.ShouldResemble, before)

	bad := DefaultFusionConfig()
	bad.DeclinationDegrees = 360
	test.That(t, errors.Is(bad.Validate(), ErrInvalidConfig), test.ShouldBeTrue)

	bad = DefaultFusionConfig()
	bad.AccelMaxG = 0.1
	test.That(t, errors.Is(bad.Validate(), ErrInvalidConfig), test.ShouldBeTrue)
}

func TestFusedUpdate(t *testing.T) {
	state := NewAttitudeState()
	cfg := DefaultFusionConfig()

	heading, err := FusedUpdate(&state, cfg, atRest, vecmath.Vector3{}, vecmath.New(22, 0, -40), 0.02)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, heading, test.ShouldAlmostEqual, 0.0)
	test.That(t, state.Seeded, test.ShouldBeTrue)

	heading, err = FusedUpdate(&state, cfg, atRest, vecmath.Vector3{}, vecmath.New(0, 22, -40), 0.02)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, heading, test.ShouldAlmostEqual, 270.0)
}

func TestFusedUpdateErrors(t *testing.T) {
	cfg := DefaultFusionConfig()

	t.Run("time delta checked before heading", func(t *testing.T) {
		state := NewAttitudeState()
		_, err := FusedUpdate(&state, cfg, atRest, vecmath.Vector3{}, vecmath.New(0, 0, 5), 0)
		test.That(t, errors.Is(err, ErrNonPositiveTimeDelta), test.ShouldBeTrue)
		test.That(t, state, test.ShouldResemble, NewAttitudeState())
	})

	t.Run("field parallel to up", func(t *testing.T) {
		state := NewAttitudeState()
		_, err := FusedUpdate(&state, cfg, atRest, vecmath.Vector3{}, vecmath.New(0, 0, 5), 0.02)
		test.That(t, errors.Is(err, ErrDegenerateInput), test.ShouldBeTrue)
		// the attitude step itself was valid and is kept
		test.That(t, state.Seeded, test.ShouldBeTrue)
		test.That(t, vecmath.Norm(state.Up), test.ShouldAlmostEqual, 1.0, 1e-9)
	})

	t.Run("zero accel while unseeded", func(t *testing.T) {
		state := NewAttitudeState()
		_, err := FusedUpdate(&state, cfg, vecmath.Vector3{}, vecmath.Vector3{}, vecmath.New(1, 0, 0), 0.02)
		test.That(t, errors.Is(err, ErrDegenerateInput), test.ShouldBeTrue)
		test.That(t, state.Seeded, test.ShouldBeFalse)
	})
}

func TestCompass(t *testing.T) {
	_, err := NewCompass(FusionConfig{UpCorrectionRate: 3})
	test.That(t, errors.Is(err, ErrInvalidConfig), test.ShouldBeTrue)

	c, err := NewCompass(DefaultFusionConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.State().Seeded, test.ShouldBeFalse)

	test.That(t, c.Seed(vecmath.Vector3{}), test.ShouldNotBeNil)
	test.That(t, c.Seed(atRest), test.ShouldBeNil)
	test.That(t, c.State().Seeded, test.ShouldBeTrue)

	test.That(t, c.SetDeclination(3.5), test.ShouldBeNil)
	test.That(t, c.SetUpCorrectionRate(0.1), test.ShouldBeNil)
	test.That(t, c.SetAccelGate(0.9, 1.1), test.ShouldBeNil)
	test.That(t, c.SetAccelGate(2, 1), test.ShouldNotBeNil)
	test.That(t, c.Config(), test.ShouldResemble, FusionConfig{
		UpCorrectionRate:   0.1,
		AccelMinG:          0.9,
		AccelMaxG:          1.1,
		DeclinationDegrees: 3.5,
	})

	heading, err := c.FusedUpdate(atRest, vecmath.Vector3{}, vecmath.New(0, -30, 10), 0.05)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, heading, test.ShouldAlmostEqual, 93.5)

	pose := c.Pose(heading)
	test.That(t, pose.Yaw, test.ShouldEqual, heading)
	test.That(t, pose.Roll, test.ShouldAlmostEqual, 0.0)
	test.That(t, pose.Pitch, test.ShouldAlmostEqual, 0.0)

	_, err = c.FusedUpdate(atRest, vecmath.Vector3{}, vecmath.New(0, -30, 10), -1)
	test.That(t, errors.Is(err, ErrNonPositiveTimeDelta), test.ShouldBeTrue)
	test.That(t, c.State().LastUpdateMicros, test.ShouldEqual, int64(50000))
}
