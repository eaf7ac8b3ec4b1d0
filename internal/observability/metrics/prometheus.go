// Package metrics provides Prometheus metrics for the kiosk service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all application metrics
type Metrics struct {
	VisitsIdentified      *prometheus.CounterVec
	TicketsIssued         *prometheus.CounterVec
	SelectionsServed      prometheus.Counter
	PaymentsRecorded      prometheus.Counter
	CertificatesAssembled *prometheus.CounterVec
	CertificatesFailed    prometheus.Counter
	AssistantRequests     prometheus.Counter
	StageDuration         prometheus.Histogram
}

// New creates and registers all metrics
func New() *Metrics {
	m := &Metrics{
		VisitsIdentified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_visits_identified_total",
			Help: "Total identifications, by method (scan/manual) and outcome",
		}, []string{"method", "outcome"}),
		TicketsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_tickets_issued_total",
			Help: "Total queue tickets issued, by department",
		}, []string{"department"}),
		SelectionsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_fee_selections_total",
			Help: "Total payment-stage fee selections served",
		}),
		PaymentsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_payments_recorded_total",
			Help: "Total payments appended to the ledger",
		}),
		CertificatesAssembled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_certificates_assembled_total",
			Help: "Total certificate payloads assembled, by document kind",
		}, []string{"kind"}),
		CertificatesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_certificates_failed_total",
			Help: "Total certificate generations that failed",
		}),
		AssistantRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_assistant_requests_total",
			Help: "Total chat assistant requests",
		}),
		StageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kiosk_stage_duration_seconds",
			Help:    "Workflow stage handling duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}

	prometheus.MustRegister(
		m.VisitsIdentified,
		m.TicketsIssued,
		m.SelectionsServed,
		m.PaymentsRecorded,
		m.CertificatesAssembled,
		m.CertificatesFailed,
		m.AssistantRequests,
		m.StageDuration,
	)

	return m
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
