// Nodeflow
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package prometheus provides functions that are useful to control and manage
// the built-in prometheus instance which counts connection decisions.
package prometheus

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/purpleidea/nodeflow/graph"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultPrometheusListen is the default listen address of the metrics server.
const DefaultPrometheusListen = "127.0.0.1:9233"

// Prometheus is the struct that contains information about the prometheus
// instance. Run Init() on it.
type Prometheus struct {
	Listen string // the listen specification for the net/http server

	// Registry is where the metrics are registered. If nil, a new one is
	// made, so that more than one instance can exist in a process.
	Registry *prometheus.Registry

	connectTotal            *prometheus.CounterVec // total of connection decisions
	processStartTimeSeconds prometheus.Gauge       // process start time in seconds since unix epoch

	listener net.Listener
	server   *http.Server
}

// Init registers the metrics.
func (obj *Prometheus) Init() error {
	if len(obj.Listen) == 0 {
		obj.Listen = DefaultPrometheusListen
	}
	if obj.Registry == nil {
		obj.Registry = prometheus.NewRegistry()
	}
	obj.connectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodeflow_connect_total",
			Help: "Number of connection decisions that have been made.",
		},
		// Labels for this metric.
		// kind: port kind: control, data, or nil if lookup failed
		// accepted: if the wire was added
		// reason: why, which is accepted for every accepted wire
		[]string{"kind", "accepted", "reason"},
	)
	if err := obj.Registry.Register(obj.connectTotal); err != nil {
		return err
	}

	obj.processStartTimeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodeflow_process_start_time_seconds",
			Help: "Start time of the process since unix epoch in seconds.",
		},
	)
	if err := obj.Registry.Register(obj.processStartTimeSeconds); err != nil {
		return err
	}
	// directly set the processStartTimeSeconds
	obj.processStartTimeSeconds.SetToCurrentTime()

	return nil
}

// InitConnectMetrics creates every possible decision series at zero, so that
// they show up before the first connection is made.
func (obj *Prometheus) InitConnectMetrics() {
	obj.connectTotal.With(labels(graph.KindNil.String(), false, graph.ReasonLookup))
	obj.connectTotal.With(labels(graph.KindNil.String(), false, graph.ReasonKind))
	obj.connectTotal.With(labels(graph.KindControl.String(), true, graph.ReasonAccepted))
	for _, reason := range []graph.Reason{graph.ReasonUnresolved, graph.ReasonMismatch, graph.ReasonResolution} {
		obj.connectTotal.With(labels(graph.KindData.String(), false, reason))
	}
	obj.connectTotal.With(labels(graph.KindData.String(), true, graph.ReasonAccepted))
}

func labels(kind string, accepted bool, reason graph.Reason) prometheus.Labels {
	return prometheus.Labels{"kind": kind, "accepted": strconv.FormatBool(accepted), "reason": string(reason)}
}

// Start runs a http server in a go routine, that responds to /metrics as
// prometheus would expect.
func (obj *Prometheus) Start() error {
	listener, err := net.Listen("tcp", obj.Listen)
	if err != nil {
		return err
	}
	obj.listener = listener
	mux := http.NewServeMux()
	mux.Handle("/metrics", obj.Handler())
	obj.server = &http.Server{Handler: mux}
	go obj.server.Serve(listener) // returns ErrServerClosed on Stop
	return nil
}

// Handler returns the http handler which serves the registered metrics.
func (obj *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(obj.Registry, promhttp.HandlerOpts{})
}

// Addr returns the address the server is listening on, once it has started.
func (obj *Prometheus) Addr() string {
	if obj.listener == nil {
		return ""
	}
	return obj.listener.Addr().String()
}

// Stop the http server.
func (obj *Prometheus) Stop() error {
	if obj.server == nil {
		return nil
	}
	return obj.server.Shutdown(context.Background())
}

// UpdateConnectTotal counts one connection decision. This implements the
// graph.Observer interface.
func (obj *Prometheus) UpdateConnectTotal(kind string, accepted bool, reason string) error {
	metric := obj.connectTotal.With(labels(kind, accepted, graph.Reason(reason)))
	metric.Inc()
	return nil
}

// Totals returns the current value of every counter series, keyed by its name
// and sorted labels, as in `nodeflow_connect_total{accepted="true",...}`.
func (obj *Prometheus) Totals() (map[string]float64, error) {
	families, err := obj.Registry.Gather()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			pairs := []string{}
			for _, label := range metric.GetLabel() {
				pairs = append(pairs, fmt.Sprintf("%s=%q", label.GetName(), label.GetValue()))
			}
			sort.Strings(pairs)
			key := fmt.Sprintf("%s{%s}", family.GetName(), strings.Join(pairs, ","))
			totals[key] = metric.GetCounter().GetValue()
		}
	}
	return totals, nil
}
