package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "standup"

// Registry holds every collector exported at /metrics
var Registry = prometheus.NewRegistry()

var (
	callsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calls_total",
		Help:      "Standup calls by terminal status.",
	}, []string{"status"})

	callsInFlight = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "calls_in_flight",
		Help:      "Standup calls currently running.",
	})

	callDuration = promauto.With(Registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "call_duration_seconds",
		Help:      "Wall time of a standup call from start to completion.",
		Buckets:   []float64{30, 60, 120, 300, 600, 900, 1800, 3600},
	})

	classifications = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "classifications_total",
		Help:      "Classified responses by outcome.",
	}, []string{"outcome"})

	fallbacks = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lenient_fallbacks_total",
		Help:      "Model replies that could not be parsed and were replaced with defaults.",
	}, []string{"component"})

	escalations = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blocker_escalations_total",
		Help:      "Blocker side effects by kind and result.",
	}, []string{"kind", "result"})

	responseWaits = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "response_waits_total",
		Help:      "Participant response waits by how they ended.",
	}, []string{"outcome"})

	stateErrors = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "state_store_errors_total",
		Help:      "Soft failures of the shared call state store.",
	}, []string{"op"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus exposition format
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func CallStarted() {
	callsInFlight.Inc()
}

// CallFinished records a terminal status and the call's duration
func CallFinished(status string, seconds float64) {
	callsInFlight.Dec()
	callsTotal.WithLabelValues(status).Inc()
	callDuration.Observe(seconds)
}

func Classified(outcome string) {
	classifications.WithLabelValues(outcome).Inc()
}

func Fallback(component string) {
	fallbacks.WithLabelValues(component).Inc()
}

// Escalation records a blocker side effect such as "ticket" or "email"
func Escalation(kind string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	escalations.WithLabelValues(kind, result).Inc()
}

func ResponseWait(outcome string) {
	responseWaits.WithLabelValues(outcome).Inc()
}

func StateError(op string) {
	stateErrors.WithLabelValues(op).Inc()
}
