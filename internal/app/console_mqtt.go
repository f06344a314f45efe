// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_compass/internal/config"
	"github.com/relabs-tech/inertial_compass/internal/gps"
)

func formatHeadingLine(m HeadingMessage) string {
	return fmt.Sprintf("[HDG ]  %6.2f° (decl %+.2f°)  ROLL=%6.2f  PITCH=%6.2f  src=%s",
		m.Heading, signedDegrees(m.Declination), m.Pose.Roll, m.Pose.Pitch, m.Source)
}

// signedDegrees maps [0, 360) to (-180, 180] for display.
func signedDegrees(deg float64) float64 {
	if deg > 180 {
		return deg - 360
	}
	return deg
}

func subscribePrint(client mqtt.Client, topic string, handle func([]byte) (string, error)) error {
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		line, err := handle(msg.Payload())
		if err != nil {
			log.Printf("console: %s unmarshal error: %v", topic, err)
			return
		}
		fmt.Println(line)
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", topic)
	return nil
}

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	if err := subscribePrint(client, cfg.TopicHeading, func(p []byte) (string, error) {
		var m HeadingMessage
		if err := json.Unmarshal(p, &m); err != nil {
			return "", err
		}
		return formatHeadingLine(m), nil
	}); err != nil {
		return err
	}

	if err := subscribePrint(client, cfg.TopicDeclination, func(p []byte) (string, error) {
		decl, err := parseDeclination(p)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[DECL]  %+.2f°", decl), nil
	}); err != nil {
		return err
	}

	if err := subscribePrint(client, cfg.TopicGPS, func(p []byte) (string, error) {
		var f gps.Fix
		if err := json.Unmarshal(p, &f); err != nil {
			return "", err
		}
		return fmt.Sprintf("[GPS ]  time=%s lat=%.6f lon=%.6f course=%.1f° var=%+.1f° validity=%s",
			f.Time, f.Latitude, f.Longitude, f.CourseDeg, f.VariationDeg, f.Validity), nil
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
