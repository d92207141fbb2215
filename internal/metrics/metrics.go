// Package metrics exposes Prometheus collectors for sessions and device traffic.
//
// A nil *Metrics is valid and records nothing, so callers that do not care
// about metrics can pass nil.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "phonepad"

// Message results.
const (
	ResultApplied   = "applied"
	ResultMalformed = "malformed"
	ResultError     = "error"
)

// Device operations.
const (
	OpCreate = "create"
	OpApply  = "apply"
	OpReset  = "reset"
	OpClose  = "close"
)

// Metrics holds the server's collectors.
type Metrics struct {
	sessionsActive prometheus.Gauge
	sessionsTotal  prometheus.Counter
	messagesTotal  *prometheus.CounterVec
	watchdogResets prometheus.Counter
	deviceErrors   *prometheus.CounterVec
}

// New registers the collectors on reg. A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of connected controller sessions",
		}),
		sessionsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of controller sessions accepted",
		}),
		messagesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Client messages by result",
		}, []string{"result"}),
		watchdogResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watchdog_resets_total",
			Help:      "Number of idle watchdog resets to neutral",
		}),
		deviceErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "device_errors_total",
			Help:      "Virtual device errors by operation",
		}, []string{"op"}),
	}
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
	m.sessionsTotal.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

func (m *Metrics) Message(result string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) WatchdogReset() {
	if m == nil {
		return
	}
	m.watchdogResets.Inc()
}

func (m *Metrics) DeviceError(op string) {
	if m == nil {
		return
	}
	m.deviceErrors.WithLabelValues(op).Inc()
}
