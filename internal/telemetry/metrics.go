/*
Copyright (C) 2026 AmbRadio

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry holds the Prometheus collectors and the
// OpenTelemetry tracing setup.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ambradio"

var (
	// APIRequestsTotal counts HTTP requests by method, route and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total HTTP requests handled.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes request latency in seconds.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections tracks in-flight HTTP requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "active_connections",
		Help:      "In-flight HTTP requests.",
	})

	// APIWebSocketConnections tracks open event feed connections.
	APIWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "websocket_connections",
		Help:      "Open WebSocket event feed connections.",
	})

	// IcecastUp is 1 while the last status poll reached the server.
	IcecastUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "icecast",
		Name:      "up",
		Help:      "Whether the last status poll found the server online.",
	})

	// IcecastTotalListeners mirrors the summed listener count of the
	// last snapshot.
	IcecastTotalListeners = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "icecast",
		Name:      "total_listeners",
		Help:      "Listeners summed across all sources in the last snapshot.",
	})

	// IcecastSources counts connected sources in the last snapshot.
	IcecastSources = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "icecast",
		Name:      "sources",
		Help:      "Connected sources in the last snapshot.",
	})

	// PollCyclesTotal counts status poll cycles by result.
	PollCyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "poller",
		Name:      "cycles_total",
		Help:      "Status poll cycles by result.",
	}, []string{"result"})

	// PollDuration observes the wall time of a poll cycle.
	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "poller",
		Name:      "cycle_duration_seconds",
		Help:      "Wall time of a status poll cycle.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	// ControlActionsTotal counts dispatched operator actions.
	ControlActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "icecast",
		Name:      "control_actions_total",
		Help:      "Operator control actions by action and outcome.",
	}, []string{"action", "outcome"})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
