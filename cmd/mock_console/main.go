// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/inertial_compass/internal/app"
)

func main() {
	yawRate := flag.Float64("yaw-rate", 15, "simulated turn rate in degrees per second")
	flag.Parse()

	log.Println("starting inertial-compass (mock console)")

	if err := app.RunMockConsole(*yawRate); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
