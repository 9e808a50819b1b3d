// Package metrics holds the assistant's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voxassist"

var Registry = prometheus.NewRegistry()

var (
	Captures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "captures_total",
		Help:      "Speech capture attempts by outcome",
	}, []string{"outcome"})

	Searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Web searches by outcome",
	}, []string{"outcome"})

	Reminders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reminders_total",
		Help:      "Reminders by lifecycle event (scheduled, rejected, fired)",
	}, []string{"event"})

	Emails = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_total",
		Help:      "Email dispatch attempts by outcome",
	}, []string{"outcome"})

	PendingReminders = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reminders_pending",
		Help:      "Reminders waiting for their fire time",
	})
)

func init() {
	Registry.MustRegister(Captures, Searches, Reminders, Emails, PendingReminders)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
