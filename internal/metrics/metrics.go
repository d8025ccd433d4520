// Package metrics exposes the aggregator's prometheus instrumentation:
// frame/drop counters for the upstream listener, tick duration and
// overview size gauges for the aggregator, and a connected-client gauge
// for the broadcast fanout.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "votewatch",
		Subsystem: "listener",
		Name:      "frames_total",
		Help:      "Upstream event frames received.",
	})

	UpstreamDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "votewatch",
		Subsystem: "listener",
		Name:      "dropped_frames_total",
		Help:      "Events dropped from the bounded event queue under backpressure.",
	})

	MalformedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "votewatch",
		Subsystem: "listener",
		Name:      "malformed_events_total",
		Help:      "Frames that failed to decode and were skipped.",
	})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "votewatch",
		Subsystem: "overview",
		Name:      "tick_duration_seconds",
		Help:      "Wall-clock duration of one aggregator tick.",
		Buckets:   prometheus.DefBuckets,
	})

	OverviewConfirmed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "votewatch",
		Subsystem: "overview",
		Name:      "confirmed_entries",
		Help:      "Entries currently in the confirmed overview group.",
	})

	OverviewUnconfirmed = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "votewatch",
		Subsystem: "overview",
		Name:      "unconfirmed_entries",
		Help:      "Entries currently in the unconfirmed overview group.",
	})

	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "votewatch",
		Subsystem: "broadcast",
		Name:      "connected_clients",
		Help:      "Currently connected broadcast-fanout clients.",
	})

	ClientsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "votewatch",
		Subsystem: "broadcast",
		Name:      "clients_evicted_total",
		Help:      "Clients evicted due to send errors, deadline overruns, or disconnects.",
	})
)
