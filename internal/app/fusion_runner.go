// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"sync"
	"time"

	"github.com/relabs-tech/inertial_compass/internal/imu"
	"github.com/relabs-tech/inertial_compass/internal/orientation"
)

// errSeeding is returned for the first sample of a session, which only seeds
// the attitude estimate.
var errSeeding = errors.New("seeding attitude, no heading yet")

// fusionRunner feeds samples through a Compass. It owns the time base for dt
// and serializes the sample loop with declination changes arriving from MQTT.
type fusionRunner struct {
	mu       sync.Mutex
	compass  *orientation.Compass
	lastTime time.Time
}

func newFusionRunner(cfg orientation.FusionConfig) (*fusionRunner, error) {
	c, err := orientation.NewCompass(cfg)
	if err != nil {
		return nil, err
	}
	return &fusionRunner{compass: c}, nil
}

// process runs one filter cycle for s and returns the message to publish.
func (r *fusionRunner) process(s imu.Sample) (HeadingMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.lastTime.IsZero() {
		if err := r.compass.Seed(s.Accel); err != nil {
			observeRejection(err)
			return HeadingMessage{}, err
		}
		r.lastTime = s.Time
		return HeadingMessage{}, errSeeding
	}

	dt := s.Time.Sub(r.lastTime).Seconds()
	if dt > 0 {
		r.lastTime = s.Time
	}

	heading, err := r.compass.FusedUpdate(s.Accel, s.Gyro, s.Mag, dt)
	if err != nil {
		observeRejection(err)
		return HeadingMessage{}, err
	}

	cfg := r.compass.Config()
	state := r.compass.State()
	observeHeading(heading, cfg.DeclinationDegrees)

	return HeadingMessage{
		Heading:     heading,
		Declination: cfg.DeclinationDegrees,
		Pose:        r.compass.Pose(heading),
		Up:          state.Up,
		Source:      s.Source,
		Time:        s.Time.Format(timeFormat),
	}, nil
}

func (r *fusionRunner) setDeclination(degrees float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.compass.SetDeclination(degrees)
}

func (r *fusionRunner) state() orientation.AttitudeState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.compass.State()
}
