// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"math"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/inertial_compass/internal/config"
	"github.com/relabs-tech/inertial_compass/internal/gps"
)

// Declination changes smaller than this are not republished.
const declinationResolution = 0.05

type publishFunc func(topic string, v any) error

// relayGPS reads NMEA lines from r until it fails, publishing every RMC fix
// on gpsTopic and each significant magnetic variation change on declTopic.
func relayGPS(r io.Reader, publish publishFunc, gpsTopic, declTopic string) error {
	reader := bufio.NewReader(r)
	var (
		lastDecl float64
		haveDecl bool
	)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("GPS read error: %w", err)
		}

		m, ok := gps.ParseRMC(line)
		if !ok {
			continue
		}

		fix := gps.FixFromRMC(m)
		if err := publish(gpsTopic, fix); err != nil {
			log.Printf("gps: %v", err)
		}

		if !fix.HasVariation {
			continue
		}
		if haveDecl && math.Abs(fix.VariationDeg-lastDecl) < declinationResolution {
			continue
		}
		if err := publish(declTopic, DeclinationMessage{Declination: fix.VariationDeg, Source: "gps"}); err != nil {
			log.Printf("gps: %v", err)
			continue
		}
		lastDecl, haveDecl = fix.VariationDeg, true
		log.Printf("gps: published declination %+.2f°", fix.VariationDeg)
	}
}

// RunGPSDeclination opens the GPS serial port and relays fixes and magnetic
// variation to MQTT.
func RunGPSDeclination() error {
	cfg := config.Get()
	if cfg.GPSSerialPort == "" {
		return fmt.Errorf("GPS_SERIAL_PORT is required")
	}

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDGPS)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("gps: connected to MQTT broker at %s", cfg.MQTTBroker)

	// ---- 2) Open GPS serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPSSerialPort,
		BaudRate:              uint(cfg.GPSBaudRate),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Printf("gps: serial port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)

	return relayGPS(port, func(topic string, v any) error {
		return publishJSON(client, topic, v)
	}, cfg.TopicGPS, cfg.TopicDeclination)
}
