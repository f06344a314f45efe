// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/inertial_compass/internal/config"
	"github.com/relabs-tech/inertial_compass/internal/imu"
	"github.com/relabs-tech/inertial_compass/internal/sensors"
)

// parseDeclination accepts a DeclinationMessage or a bare number of degrees.
func parseDeclination(payload []byte) (float64, error) {
	text := strings.TrimSpace(string(payload))
	if strings.HasPrefix(text, "{") {
		var m DeclinationMessage
		if err := json.Unmarshal([]byte(text), &m); err != nil {
			return 0, fmt.Errorf("declination payload: %w", err)
		}
		return m.Declination, nil
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("declination payload %q: %w", text, err)
	}
	return v, nil
}

// openSampleSource returns the configured source and a cleanup func.
func openSampleSource(cfg *config.Config) (imu.SampleSource, func(), error) {
	if cfg.SampleSource == config.SourceMock {
		log.Printf("compass: using mock source yawing at %.1f°/s", cfg.MockYawRate)
		return imu.NewMockSource(cfg.MockYawRate), func() {}, nil
	}

	src, err := sensors.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return src, func() {
		if err := src.Close(); err != nil {
			log.Printf("compass: closing sensors: %v", err)
		}
	}, nil
}

func publishJSON(client mqtt.Client, topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("json marshal (%s): %w", topic, err)
	}
	if token := client.Publish(topic, 0, true, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT publish (%s): %w", topic, token.Error())
	}
	return nil
}

// RunCompassProducer samples the sensors every SAMPLE_INTERVAL, fuses them
// into a heading and publishes heading, pose and raw sample to MQTT.
func RunCompassProducer() error {
	log.Println("starting inertial-compass heading producer")

	cfg := config.Get()
	fusionCfg, err := cfg.FusionConfig()
	if err != nil {
		return err
	}
	runner, err := newFusionRunner(fusionCfg)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSampleSource(cfg)
	if err != nil {
		return fmt.Errorf("failed to open sample source: %w", err)
	}
	defer closeSrc()

	serveMetrics(cfg.MetricsPort)

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)
	log.Printf("compass: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicDeclination, 0, func(_ mqtt.Client, msg mqtt.Message) {
		decl, err := parseDeclination(msg.Payload())
		if err != nil {
			log.Printf("compass: %v", err)
			return
		}
		if err := runner.setDeclination(decl); err != nil {
			log.Printf("compass: rejected declination: %v", err)
			return
		}
		log.Printf("compass: declination set to %.2f°", decl)
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT subscribe (%s): %w", cfg.TopicDeclination, token.Error())
	}
	log.Printf("compass: subscribed to %s", cfg.TopicDeclination)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(time.Duration(cfg.SampleInterval) * time.Millisecond)
	defer ticker.Stop()
	logEvery := time.Duration(cfg.ConsoleLogInterval) * time.Millisecond
	var lastLog time.Time

	for {
		select {
		case <-sigCh:
			log.Println("compass: shutting down")
			return nil
		case t := <-ticker.C:
			sample, err := src.Next()
			if err != nil {
				sampleErrors.Inc()
				log.Printf("compass: sample error: %v", err)
				continue
			}
			if err := publishJSON(client, cfg.TopicIMU, sample); err != nil {
				log.Printf("compass: %v", err)
			}

			msg, err := runner.process(sample)
			if errors.Is(err, errSeeding) {
				log.Printf("compass: attitude seeded, up=%v", runner.state().Up)
				continue
			}
			if err != nil {
				// skip this cycle, the next sample retries
				log.Printf("compass: cycle skipped: %v", err)
				continue
			}

			if err := publishJSON(client, cfg.TopicHeading, msg); err != nil {
				log.Printf("compass: %v", err)
				continue
			}
			if err := publishJSON(client, cfg.TopicPose, msg.Pose); err != nil {
				log.Printf("compass: %v", err)
			}

			if t.Sub(lastLog) >= logEvery {
				lastLog = t
				log.Printf("compass: heading=%6.2f° decl=%.2f° roll=%6.2f pitch=%6.2f |B|=%.1fµT",
					msg.Heading, msg.Declination, msg.Pose.Roll, msg.Pose.Pitch, sample.Mag.Norm())
			}
		}
	}
}
