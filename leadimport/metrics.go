package leadimport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_import_attempts_total",
			Help: "Total number of lead import attempts by terminal phase",
		},
		[]string{"phase"},
	)

	leadsImported = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_imported_total",
			Help: "Total number of leads saved by the import pipeline",
		},
	)

	rowsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_import_rows_rejected_total",
			Help: "Total number of CSV rows rejected for missing name, phone and email",
		},
	)

	notifyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_import_notify_failures_total",
			Help: "Total number of failed automation notifications",
		},
	)
)

func record(a Attempt, notifyErr error) {
	importAttempts.WithLabelValues(a.Phase.String()).Inc()
	rowsRejected.Add(float64(len(a.Parsed.Diagnostics)))

	if a.Phase == NotifyResult {
		leadsImported.Add(float64(a.Outcome.Imported))
		if notifyErr != nil {
			notifyFailures.Inc()
		}
	}
}
