// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/relabs-tech/inertial_compass/internal/imu"
	"github.com/relabs-tech/inertial_compass/internal/orientation"
)

// RunMockConsole runs the mock source through the heading filter and prints
// every heading, without sensors or MQTT.
func RunMockConsole(yawRateDPS float64) error {
	runner, err := newFusionRunner(orientation.DefaultFusionConfig())
	if err != nil {
		return err
	}
	src := imu.NewMockSource(yawRateDPS)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		sample, err := src.Next()
		if err != nil {
			return err
		}

		msg, err := runner.process(sample)
		if errors.Is(err, errSeeding) {
			continue
		}
		if err != nil {
			fmt.Printf("skipped: %v\n", err)
			continue
		}
		fmt.Println(formatHeadingLine(msg))
	}
	return nil
}
