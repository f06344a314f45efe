// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/relabs-tech/inertial_compass/internal/orientation"
)

var (
	headingDegrees = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "compass_heading_degrees",
		Help: "Last fused heading.",
	})
	declinationDegrees = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "compass_declination_degrees",
		Help: "Declination added to the magnetic heading.",
	})
	acceptedUpdates = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compass_updates_total",
		Help: "Filter cycles that produced a heading.",
	})
	rejectedUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "compass_rejected_updates_total",
			Help: "Filter cycles skipped, by reason.",
		},
		[]string{"reason"},
	)
	sampleErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "compass_sample_errors_total",
		Help: "Sensor reads that failed.",
	})

	registerOnce sync.Once
)

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(headingDegrees)
		prometheus.MustRegister(declinationDegrees)
		prometheus.MustRegister(acceptedUpdates)
		prometheus.MustRegister(rejectedUpdates)
		prometheus.MustRegister(sampleErrors)
	})
}

// serveMetrics exposes /metrics on port in the background. Port 0 disables it.
func serveMetrics(port int) {
	if port == 0 {
		return
	}
	registerMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	go func() {
		log.Printf("metrics: listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics: server stopped: %v", err)
		}
	}()
}

func observeHeading(heading, declination float64) {
	headingDegrees.Set(heading)
	declinationDegrees.Set(declination)
	acceptedUpdates.Inc()
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, orientation.ErrDegenerateInput):
		return "degenerate_input"
	case errors.Is(err, orientation.ErrNonPositiveTimeDelta):
		return "time_delta"
	}
	return "other"
}

func observeRejection(err error) {
	rejectedUpdates.With(prometheus.Labels{"reason": rejectionReason(err)}).Inc()
}
